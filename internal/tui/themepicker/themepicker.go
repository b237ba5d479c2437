// ABOUTME: Theme selection menu for the theme command
// ABOUTME: Lists every palette with a dark/light marker and returns the chosen name

package themepicker

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/rerng-addicted/rerng-admin/internal/theme"
)

type option struct {
	label string
	name  string
}

// Picker represents the theme selection menu
type Picker struct {
	options  []option
	selected string
}

// New creates a picker with current preselected
func New(current string) *Picker {
	names := theme.Names()
	p := &Picker{options: make([]option, 0, len(names)), selected: current}
	for _, name := range names {
		p.options = append(p.options, option{label: Label(name, current), name: name})
	}
	return p
}

// Run displays the menu and returns the selected theme name
func (p *Picker) Run() (string, error) {
	options := make([]huh.Option[string], 0, len(p.options))
	for _, opt := range p.options {
		options = append(options, huh.NewOption(opt.label, opt.name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select theme").
				Options(options...).
				Value(&p.selected),
		),
	).WithTheme(huh.ThemeBase())

	if err := form.Run(); err != nil {
		return "", err
	}
	if _, ok := theme.Lookup(p.selected); !ok {
		return "", fmt.Errorf("unknown theme %q", p.selected)
	}
	return p.selected, nil
}

// Label renders the menu text for one palette
func Label(name, current string) string {
	p, ok := theme.Lookup(name)
	if !ok {
		return name
	}
	mode := "light"
	if p.Dark {
		mode = "dark"
	}
	label := fmt.Sprintf("%s (%s)", name, mode)
	if name == current {
		label += " *"
	}
	return label
}
