// ABOUTME: UI command launching the full-screen terminal interface
// ABOUTME: Starts at the home route, or exchanges a one-time auth key first

package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/rerng-addicted/rerng-admin/internal/router"
	"github.com/rerng-addicted/rerng-admin/internal/tui"
	"github.com/rerng-addicted/rerng-admin/internal/tui/recentsearches"
	"github.com/spf13/cobra"
)

var uiAuthKey string

// runTUI starts the interactive program; tests replace it
var runTUI = tui.Run

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the full-screen interface. Every screen change passes through the
navigation guard: without a session the login form opens first.

Logs are written to debug.log in the config directory.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		errOut := cmd.ErrOrStderr()
		// Notifications go to the status bar, not the terminal
		exit(withStack(errOut, nil, func(ctx context.Context, st *stack) int {
			return runUI(st, errOut, uiAuthKey)
		}))
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
	uiCmd.Flags().StringVar(&uiAuthKey, "auth-key", "", "One-time auth key to exchange before the first screen")
}

// startTarget returns the first route the UI navigates to
func startTarget(authKey string) string {
	if authKey == "" {
		return router.RootPath
	}
	return router.RootPath + "?" + url.Values{router.AuthKeyParam: {authKey}}.Encode()
}

// runUI runs the TUI and returns the exit code
func runUI(st *stack, w io.Writer, authKey string) int {
	err := runTUI(tui.Deps{
		Client:   st.api,
		Sessions: st.sessions,
		Router:   st.router,
		Persist:  st.persist,
		Recorder: st.recorder,
		Notifier: st.notifier,
		Recent:   recentsearches.New(st.cfg.ConfigDir),
		Logger:   st.logger,
		Start:    startTarget(authKey),
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}
