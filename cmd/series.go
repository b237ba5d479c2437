// ABOUTME: Series lookup commands for rerng-admin
// ABOUTME: search, detail and deep-detail call the protected scraping endpoints

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rerng-addicted/rerng-admin/internal/client"
	"github.com/rerng-addicted/rerng-admin/internal/theme"
	"github.com/rerng-addicted/rerng-admin/internal/tui/episode"
	"github.com/rerng-addicted/rerng-admin/internal/tui/widgets"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search series by keyword",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		exit(withStack(out, out, func(ctx context.Context, st *stack) int {
			return runSearch(ctx, st, out, strings.Join(args, " "))
		}))
	},
}

var detailCmd = &cobra.Command{
	Use:   "detail <key>",
	Short: "Show one series and its episodes",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		exit(withStack(out, out, func(ctx context.Context, st *stack) int {
			return runDetail(ctx, st, out, args[0])
		}))
	},
}

var deepDetailCmd = &cobra.Command{
	Use:   "deep-detail <key>",
	Short: "Scrape one series with episode sources and subtitles",
	Long: `Scrape one series including the media source and subtitles of every episode.
The backend streams progress while it works; progress is drawn on stderr.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		exit(withStack(out, out, func(ctx context.Context, st *stack) int {
			return runDeepDetail(ctx, st, out, cmd.ErrOrStderr(), args[0])
		}))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd, detailCmd, deepDetailCmd)
}

// runSearch prints the series matching keyword and returns the exit code
func runSearch(ctx context.Context, st *stack, w io.Writer, keyword string) int {
	if !requireSession(w, st) {
		return exitRejected
	}

	resp, err := st.api.Search(ctx, keyword)
	if err != nil {
		reportError(w, err)
		return exitCodeFor(err)
	}

	if IsJSONOutput() {
		printJSON(w, resp)
		return exitOK
	}
	fmt.Fprintln(w, formatSearchHuman(keyword, resp.Series))
	return exitOK
}

// formatSearchHuman formats search hits as aligned rows
func formatSearchHuman(keyword string, series []client.Serie) string {
	if len(series) == 0 {
		return fmt.Sprintf("No series found for %q", keyword)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d result(s) for %q\n\n", len(series), keyword)
	fmt.Fprintf(&sb, "%-8s %-40s %8s  %s\n", "ID", "TITLE", "EPISODES", "LABEL")
	for _, s := range series {
		fmt.Fprintf(&sb, "%-8d %-40s %8d  %s\n", s.ID, truncate(s.Title, 40), s.EpisodesCount, s.Label)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// runDetail prints one series and returns the exit code
func runDetail(ctx context.Context, st *stack, w io.Writer, key string) int {
	if !requireSession(w, st) {
		return exitRejected
	}

	resp, err := st.api.Detail(ctx, key)
	if err != nil {
		reportError(w, err)
		return exitCodeFor(err)
	}
	if len(resp.SeriesDetails) == 0 {
		fmt.Fprintf(w, "Error: series %s not found\n", key)
		return exitError
	}

	if IsJSONOutput() {
		printJSON(w, resp)
		return exitOK
	}
	fmt.Fprintln(w, formatDetailHuman(&resp.SeriesDetails[0]))
	return exitOK
}

// formatDetailHuman formats a series detail for human readability
func formatDetailHuman(d *client.SerieDetail) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", d.Title, widgets.SeriesStatusBadge(d.Status))
	fmt.Fprintf(&sb, "Type:     %s\n", dash(d.Type))
	fmt.Fprintf(&sb, "Country:  %s\n", dash(d.Country))
	fmt.Fprintf(&sb, "Released: %s\n", dash(d.ReleaseDate))
	if desc := strings.TrimSpace(d.Description); desc != "" {
		fmt.Fprintf(&sb, "\n%s\n", desc)
	}

	fmt.Fprintf(&sb, "\nEpisodes (%d):", d.EpisodesCount)
	for _, ep := range d.Episodes {
		sub := ""
		if ep.Sub > 0 {
			sub = " [sub]"
		}
		fmt.Fprintf(&sb, "\n  Ep %s%s", episode.FormatNumber(ep.Number), sub)
	}
	return sb.String()
}

// runDeepDetail streams a deep scrape, drawing progress on progressOut
func runDeepDetail(ctx context.Context, st *stack, w, progressOut io.Writer, key string) int {
	if !requireSession(w, st) {
		return exitRejected
	}

	onProgress := func(line string) {
		if p, ok := widgets.ParseProgress(line); ok {
			fmt.Fprintf(progressOut, "\r%s", widgets.ProgressBarWithLabel(p, 30, lipgloss.Color(st.palette.Primary), theme.Muted))
		}
	}

	resp, err := st.api.DeepDetail(ctx, key, onProgress)
	fmt.Fprintln(progressOut)
	if err != nil {
		reportError(w, err)
		return exitCodeFor(err)
	}
	if len(resp.SeriesDeepDetails) == 0 {
		fmt.Fprintf(w, "Error: series %s not found\n", key)
		return exitError
	}

	if IsJSONOutput() {
		printJSON(w, resp)
		return exitOK
	}
	fmt.Fprintln(w, formatDeepDetailHuman(&resp.SeriesDeepDetails[0]))
	return exitOK
}

// formatDeepDetailHuman formats resolved sources per episode
func formatDeepDetailHuman(d *client.SerieDeepDetail) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d episodes)\n", d.Title, d.EpisodesCount)
	for _, ep := range d.Episodes {
		src := ep.Source
		if src == "" {
			src = "no source"
		}
		fmt.Fprintf(&sb, "\n  Ep %-6s %s", episode.FormatNumber(ep.Number), src)
		for _, s := range ep.Subtitles {
			fmt.Fprintf(&sb, "\n           subtitle %s: %s", dash(s.Lang), s.Src)
		}
	}
	return sb.String()
}

func printJSON(w io.Writer, v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
