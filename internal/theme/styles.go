// ABOUTME: lipgloss styles derived from the active palette
// ABOUTME: Shared by TUI screens and CLI notification output

package theme

import "github.com/charmbracelet/lipgloss"

// Status colours are fixed across palettes so errors always read as errors
var (
	Success = lipgloss.Color("#10B981") // Green
	Warning = lipgloss.Color("#F59E0B") // Amber
	Danger  = lipgloss.Color("#EF4444") // Red
	Info    = lipgloss.Color("#3B82F6") // Blue
	Muted   = lipgloss.Color("#6B7280") // Gray
)

// Styles holds the rendered styles for one palette
type Styles struct {
	Palette Palette

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Text     lipgloss.Style
	Key      lipgloss.Style
	Value    lipgloss.Style
	Help     lipgloss.Style

	StatusOK       lipgloss.Style
	StatusWarning  lipgloss.Style
	StatusCritical lipgloss.Style
	StatusInfo     lipgloss.Style

	Panel       lipgloss.Style
	ActivePanel lipgloss.Style
	Border      lipgloss.Style
}

// NewStyles builds the style set for p
func NewStyles(p Palette) Styles {
	primary := lipgloss.Color(p.Primary)
	accent := lipgloss.Color(p.Accent)
	text := lipgloss.Color(p.TextA)

	return Styles{
		Palette: p,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(Muted).
			MarginBottom(1),
		Text: lipgloss.NewStyle().
			Foreground(text),
		Key: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		Value: lipgloss.NewStyle().
			Foreground(text).
			Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(Muted).
			MarginTop(1),

		StatusOK: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),
		StatusWarning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),
		StatusCritical: lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(Info).
			Bold(true),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(1, 2),
		ActivePanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.BorderA)).
			Padding(1, 2),
		Border: lipgloss.NewStyle().
			Foreground(Muted),
	}
}
