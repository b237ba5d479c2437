// ABOUTME: Named colour palettes and the persisted active-theme selection
// ABOUTME: The theme name is an opaque string stored under the "theme" key

package theme

import (
	"fmt"
	"sort"

	"github.com/rerng-addicted/rerng-admin/internal/storage"
)

// DefaultName is used when no theme has been persisted or the stored one is unknown
const DefaultName = "lightBlue"

// Palette is the colour set for one theme
type Palette struct {
	Name       string
	Dark       bool
	Primary    string
	Secondary  string
	Thirdary   string
	Background string
	TextA      string
	TextB      string
	BorderA    string
	Accent     string
	TextHover  string
}

var palettes = map[string]Palette{
	"lightBlue": {
		Name: "lightBlue", Primary: "#00b4d8", Secondary: "#48cae4", Thirdary: "#ade8f4",
		Background: "#e3f7fc", TextA: "#03045e", TextB: "#023e8a", BorderA: "#0077b6",
		Accent: "#0077b6", TextHover: "#0077b6",
	},
	"lightYellow": {
		Name: "lightYellow", Primary: "#ffd60a", Secondary: "#fef08a", Thirdary: "#fcd34d",
		Background: "#fff9c4", TextA: "#d97706", TextB: "#b45309", BorderA: "#f59e0b",
		Accent: "#f59e0b", TextHover: "#fbbf24",
	},
	"lightPink": {
		Name: "lightPink", Primary: "#ff80ab", Secondary: "#ffb2dd", Thirdary: "#ffc1e3",
		Background: "#fff0f5", TextA: "#f50057", TextB: "#d50046", BorderA: "#ff4081",
		Accent: "#f50057", TextHover: "#ff4081",
	},
	"darkBlue": {
		Name: "darkBlue", Dark: true, Primary: "#003c6c", Secondary: "#0277bd", Thirdary: "#0288d1",
		Background: "#1e1e1e", TextA: "#e0f7fa", TextB: "#b3e5fc", BorderA: "#4fc3f7",
		Accent: "#4fc3f7", TextHover: "#4fc3f7",
	},
	"darkYellow": {
		Name: "darkYellow", Dark: true, Primary: "#f9a825", Secondary: "#f57f17", Thirdary: "#fbc02d",
		Background: "#212121", TextA: "#fff59d", TextB: "#fff176", BorderA: "#fdd835",
		Accent: "#fdd835", TextHover: "#fdd835",
	},
	"darkPink": {
		Name: "darkPink", Dark: true, Primary: "#d81b60", Secondary: "#e91e63", Thirdary: "#f06292",
		Background: "#2c2c2c", TextA: "#f8bbd0", TextB: "#f48fb1", BorderA: "#f06292",
		Accent: "#f50057", TextHover: "#f50057",
	},
}

// Names returns all known theme names in sorted order
func Names() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the palette for name
func Lookup(name string) (Palette, bool) {
	p, ok := palettes[name]
	return p, ok
}

// Current returns the persisted palette, falling back to DefaultName
func Current(store storage.Store) Palette {
	if name, ok := store.Get(storage.KeyTheme); ok {
		if p, ok := palettes[name]; ok {
			return p
		}
	}
	return palettes[DefaultName]
}

// Set persists name as the active theme. Unknown names are rejected.
func Set(store storage.Store, name string) (Palette, error) {
	p, ok := palettes[name]
	if !ok {
		return Palette{}, fmt.Errorf("unknown theme %q", name)
	}
	if err := store.Set(storage.KeyTheme, name); err != nil {
		return Palette{}, fmt.Errorf("persist theme: %w", err)
	}
	return p, nil
}
