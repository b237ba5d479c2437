// ABOUTME: Progress bar widget for long-running scrape jobs
// ABOUTME: Parses the backend's "[███░░] 60%" progress lines and renders them in palette colours

package widgets

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var percentPattern = regexp.MustCompile(`(\d{1,3})%\s*$`)

// ParseProgress extracts the percentage from a progress line
func ParseProgress(line string) (float64, bool) {
	m := percentPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return clamp(float64(v)), true
}

// ProgressBar renders a basic colored bar
func ProgressBar(percent float64, width int, filledColor, emptyColor lipgloss.Color) string {
	if width <= 0 {
		width = 20
	}
	percent = clamp(percent)

	filled := int(percent / 100.0 * float64(width))

	var bar strings.Builder
	bar.WriteString("[")

	filledStyle := lipgloss.NewStyle().Foreground(filledColor)
	emptyStyle := lipgloss.NewStyle().Foreground(emptyColor)

	for i := 0; i < width; i++ {
		if i < filled {
			bar.WriteString(filledStyle.Render("█"))
		} else {
			bar.WriteString(emptyStyle.Render("░"))
		}
	}

	bar.WriteString("]")
	return bar.String()
}

// ProgressBarWithLabel renders the bar followed by the percentage
func ProgressBarWithLabel(percent float64, width int, filledColor, emptyColor lipgloss.Color) string {
	label := strconv.Itoa(int(clamp(percent))) + "%"
	return ProgressBar(percent, width, filledColor, emptyColor) + " " +
		lipgloss.NewStyle().Foreground(filledColor).Render(label)
}

func clamp(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
