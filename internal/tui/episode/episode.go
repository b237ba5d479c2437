// ABOUTME: Episode screen showing one series detail and its episode list
// ABOUTME: Merges resolved sources from a deep detail scrape when one has run

package episode

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rerng-addicted/rerng-admin/internal/client"
	"github.com/rerng-addicted/rerng-admin/internal/theme"
	"github.com/rerng-addicted/rerng-admin/internal/tui/icons"
	"github.com/rerng-addicted/rerng-admin/internal/tui/widgets"
)

// View displays a series detail
type View struct {
	styles   theme.Styles
	detail   *client.SerieDetail
	deep     *client.SerieDeepDetail
	progress float64
	scraping bool
	offset   int
	width    int
	height   int
}

// New creates an empty episode view
func New(styles theme.Styles, width, height int) *View {
	return &View{
		styles: styles,
		width:  width,
		height: height,
	}
}

// SetDetail replaces the series shown and drops any previous deep result
func (v *View) SetDetail(detail *client.SerieDetail) {
	if v.detail == nil || detail == nil || v.detail.ID != detail.ID {
		v.deep = nil
		v.offset = 0
	}
	v.detail = detail
}

// Detail returns the series shown
func (v *View) Detail() *client.SerieDetail {
	return v.detail
}

// StartScrape marks a deep detail scrape as running
func (v *View) StartScrape() {
	v.scraping = true
	v.progress = 0
}

// SetProgress records a progress line from the scrape stream
func (v *View) SetProgress(line string) {
	if p, ok := widgets.ParseProgress(line); ok {
		v.progress = p
	}
}

// SetDeep stores the deep detail result and ends the scrape
func (v *View) SetDeep(deep *client.SerieDeepDetail) {
	v.deep = deep
	v.scraping = false
	v.progress = 100
}

// StopScrape ends a scrape without a result
func (v *View) StopScrape() {
	v.scraping = false
}

// Scraping reports whether a deep detail scrape is running
func (v *View) Scraping() bool {
	return v.scraping
}

// SetSize updates the view dimensions
func (v *View) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// SetStyles swaps the palette styles
func (v *View) SetStyles(styles theme.Styles) {
	v.styles = styles
}

// Update scrolls the episode list
func (v *View) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok || v.detail == nil {
		return nil
	}
	switch key.String() {
	case "up", "k":
		if v.offset > 0 {
			v.offset--
		}
	case "down", "j":
		if v.offset < len(v.detail.Episodes)-1 {
			v.offset++
		}
	case "home", "g":
		v.offset = 0
	}
	return nil
}

// Render renders the view
func (v *View) Render() string {
	if v.detail == nil {
		return v.styles.Panel.Width(max(v.width-4, 20)).Render("Loading series detail...")
	}

	d := v.detail
	var sb strings.Builder

	sb.WriteString(v.styles.Title.Render(icons.Series.String() + " " + d.Title))
	sb.WriteString("\n")
	sb.WriteString(widgets.SeriesStatusBadge(d.Status))
	if meta := joinNonEmpty(" · ", d.Type, d.Country, d.ReleaseDate); meta != "" {
		sb.WriteString("  " + v.styles.Subtitle.UnsetMarginBottom().Render(meta))
	}
	sb.WriteString("\n\n")

	if desc := strings.TrimSpace(d.Description); desc != "" {
		width := max(v.width-4, 40)
		sb.WriteString(v.styles.Text.Width(width).Render(desc))
		sb.WriteString("\n\n")
	}

	if v.scraping {
		sb.WriteString(v.styles.Key.Render("Scraping sources "))
		sb.WriteString(widgets.ProgressBarWithLabel(v.progress, 20, theme.Info, theme.Muted))
		sb.WriteString("\n\n")
	}

	sb.WriteString(v.styles.Key.Render(fmt.Sprintf("Episodes (%d)", d.EpisodesCount)))
	sb.WriteString("\n")
	sb.WriteString(v.renderEpisodes())

	return lipgloss.NewStyle().Width(v.width).Render(sb.String())
}

func (v *View) renderEpisodes() string {
	episodes := v.detail.Episodes
	if len(episodes) == 0 {
		return v.styles.Help.UnsetMarginTop().Render("  No episodes yet") + "\n"
	}

	sources := make(map[int]client.EpisodeDeep)
	if v.deep != nil {
		for _, ep := range v.deep.Episodes {
			sources[ep.ID] = ep
		}
	}

	rows := v.visibleRows()
	end := min(v.offset+rows, len(episodes))

	var sb strings.Builder
	for _, ep := range episodes[v.offset:end] {
		line := fmt.Sprintf("  %s Ep %-6s", icons.Episode, FormatNumber(ep.Number))
		if ep.Sub > 0 {
			line += " " + v.styles.StatusInfo.Render("SUB")
		}
		if deep, ok := sources[ep.ID]; ok {
			line += "  " + v.renderSource(deep)
		}
		sb.WriteString(line + "\n")
	}
	if end < len(episodes) {
		sb.WriteString(v.styles.Help.UnsetMarginTop().Render(fmt.Sprintf("  … %d more", len(episodes)-end)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (v *View) renderSource(ep client.EpisodeDeep) string {
	if ep.Source == "" {
		return v.styles.StatusWarning.Render(icons.Warning.String() + " no source")
	}
	out := v.styles.StatusOK.Render(icons.CheckOK.String()) + " " + SourceHost(ep.Source)
	if len(ep.Subtitles) > 0 {
		langs := make([]string, 0, len(ep.Subtitles))
		for _, s := range ep.Subtitles {
			langs = append(langs, firstNonEmpty(s.Lang, s.Label))
		}
		out += " " + v.styles.Help.UnsetMarginTop().Render(icons.Subtitle.String()+" "+strings.Join(langs, ","))
	}
	return out
}

func (v *View) visibleRows() int {
	if v.height <= 0 {
		return 20
	}
	return max(v.height-12, 5)
}

// FormatNumber prints an episode number without a trailing .0
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// SourceHost returns the host of a media source, or the raw value if it is not a URL
func SourceHost(src string) string {
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return src
	}
	return u.Host
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return "?"
}
