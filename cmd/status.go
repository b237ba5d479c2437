// ABOUTME: Status and open commands for rerng-admin
// ABOUTME: Show the stored session and where a navigation would land

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rerng-addicted/rerng-admin/internal/router"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long: `Display whether a session token is stored, the last session message, and the
active locale and theme. Exits 1 when not signed in.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		exit(withStack(out, out, func(ctx context.Context, st *stack) int {
			return runStatus(st, out)
		}))
	},
}

var openCmd = &cobra.Command{
	Use:   "open <target>",
	Short: "Resolve a route through the navigation guard",
	Long: `Run a navigation such as "/", "/login" or "/?auth_key=KEY" through the guard
and print where it lands. A one-time auth key is exchanged for a session token.

Exits 1 when a protected route redirects to the login screen.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		exit(withStack(out, out, func(ctx context.Context, st *stack) int {
			return runOpen(ctx, st, out, args[0])
		}))
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, openCmd)
}

// runStatus prints the session snapshot and returns the exit code
func runStatus(st *stack, w io.Writer) int {
	view := newSessionView(st, st.sessions.Snapshot())

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(view, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, formatStatusHuman(view))
	}

	if !view.Authenticated {
		return exitRejected
	}
	return exitOK
}

// formatStatusHuman formats a session view for human readability
func formatStatusHuman(v sessionView) string {
	state := "signed out"
	if v.Authenticated {
		state = "signed in"
	}
	message := v.Message
	if message == "" {
		message = "-"
	}

	return fmt.Sprintf(`Session:    %s
Message:    %s
Locale:     %s
Theme:      %s
API:        %s
Config dir: %s`,
		state,
		message,
		v.Locale,
		v.Theme,
		v.APIURL,
		v.ConfigDir)
}

// openView is the printable form of a resolution
type openView struct {
	Requested     string   `json:"requested"`
	Route         string   `json:"route"`
	Path          string   `json:"path"`
	Redirects     []string `json:"redirects"`
	Authenticated bool     `json:"authenticated"`
}

// runOpen navigates to target and returns the exit code
func runOpen(ctx context.Context, st *stack, w io.Writer, target string) int {
	res, err := st.router.Navigate(ctx, target)
	if err != nil {
		reportError(w, err)
		return exitError
	}

	view := openView{
		Requested:     target,
		Route:         res.Name(),
		Path:          res.Target.String(),
		Redirects:     res.Redirects,
		Authenticated: st.sessions.IsAuthenticated(),
	}
	if view.Redirects == nil {
		view.Redirects = []string{}
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(view, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, formatOpenHuman(view))
	}

	if res.Name() == "login" && requestedProtected(target) {
		return exitRejected
	}
	return exitOK
}

// requestedProtected reports whether target names a route behind the login
func requestedProtected(target string) bool {
	t, err := router.ParseTarget(target)
	if err != nil {
		return false
	}
	m, ok := router.Lookup(t.Path)
	return ok && m.RequiresAuth()
}

// formatOpenHuman formats a resolution for human readability
func formatOpenHuman(v openView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Requested:  %s\n", v.Requested)
	fmt.Fprintf(&sb, "Landed on:  %s (%s)", v.Route, v.Path)
	if len(v.Redirects) > 0 {
		fmt.Fprintf(&sb, "\nRedirects:  %s", strings.Join(v.Redirects, " -> "))
	}
	return sb.String()
}
