// ABOUTME: Status badge widgets for quick visual status indication
// ABOUTME: Renders notification levels and series airing status as coloured inline badges

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rerng-addicted/rerng-admin/internal/notify"
	"github.com/rerng-addicted/rerng-admin/internal/tui/icons"
)

// StatusLevel represents the severity of a status
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

// Badge colors
var (
	BadgeOKBg      = lipgloss.Color("#10B981")
	BadgeOKFg      = lipgloss.Color("#FFFFFF")
	BadgeWarnBg    = lipgloss.Color("#F59E0B")
	BadgeWarnFg    = lipgloss.Color("#000000")
	BadgeCritBg    = lipgloss.Color("#EF4444")
	BadgeCritFg    = lipgloss.Color("#FFFFFF")
	BadgeInfoBg    = lipgloss.Color("#3B82F6")
	BadgeInfoFg    = lipgloss.Color("#FFFFFF")
	BadgeNeutralBg = lipgloss.Color("#6B7280")
	BadgeNeutralFg = lipgloss.Color("#FFFFFF")
)

func colors(level StatusLevel) (bg, fg lipgloss.Color) {
	switch level {
	case StatusOK:
		return BadgeOKBg, BadgeOKFg
	case StatusWarning:
		return BadgeWarnBg, BadgeWarnFg
	case StatusCritical:
		return BadgeCritBg, BadgeCritFg
	case StatusInfo:
		return BadgeInfoBg, BadgeInfoFg
	default:
		return BadgeNeutralBg, BadgeNeutralFg
	}
}

// Badge renders a colored status badge
func Badge(text string, level StatusLevel) string {
	bg, fg := colors(level)

	style := lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true)

	return style.Render(text)
}

// LevelFromNotification maps a notification level onto a badge level
func LevelFromNotification(level notify.Level) StatusLevel {
	switch level {
	case notify.LevelSuccess:
		return StatusOK
	case notify.LevelWarning:
		return StatusWarning
	case notify.LevelError:
		return StatusCritical
	default:
		return StatusInfo
	}
}

// LevelFromSeriesStatus maps the backend airing status onto a badge level
func LevelFromSeriesStatus(status string) StatusLevel {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed":
		return StatusOK
	case "ongoing":
		return StatusInfo
	case "upcoming":
		return StatusWarning
	default:
		return StatusNeutral
	}
}

// SeriesStatusBadge renders the airing status of a series
func SeriesStatusBadge(status string) string {
	if strings.TrimSpace(status) == "" {
		return Badge("--", StatusNeutral)
	}
	return Badge(status, LevelFromSeriesStatus(status))
}

// StatusIcon returns the appropriate icon for a status level
func StatusIcon(level StatusLevel) string {
	bg, _ := colors(level)
	style := lipgloss.NewStyle().Foreground(bg)

	switch level {
	case StatusOK:
		return style.Render(icons.CheckOK.String())
	case StatusWarning:
		return style.Render(icons.Warning.String())
	case StatusCritical:
		return style.Render(icons.Critical.String())
	case StatusInfo:
		return style.Render(icons.Info.String())
	default:
		return style.Render("•")
	}
}

// StatusText returns styled status text with icon
func StatusText(text string, level StatusLevel) string {
	bg, _ := colors(level)
	textStyle := lipgloss.NewStyle().Foreground(bg)
	return fmt.Sprintf("%s %s", StatusIcon(level), textStyle.Render(text))
}

// NotificationText renders a notification as a single status line
func NotificationText(n notify.Notification) string {
	return StatusText(n.Message, LevelFromNotification(n.Level))
}
