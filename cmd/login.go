// ABOUTME: Login and logout commands for rerng-admin
// ABOUTME: Signs in with credentials from flags, stdin, or an interactive form

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rerng-addicted/rerng-admin/internal/session"
	"github.com/rerng-addicted/rerng-admin/internal/theme"
	"github.com/rerng-addicted/rerng-admin/internal/tui/loginform"
	"github.com/spf13/cobra"
)

var (
	loginUser     string
	passwordStdin bool
)

// promptLogin collects credentials interactively; tests replace it
var promptLogin = loginform.Prompt

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the admin API",
	Long: `Sign in with a username (or email) and password. The session token is stored
in the config directory and attached to every later request.

Without --password-stdin an interactive form asks for the missing values.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		exit(withStack(out, out, func(ctx context.Context, st *stack) int {
			return runLogin(ctx, st, out, cmd.InOrStdin())
		}))
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		exit(withStack(out, out, func(ctx context.Context, st *stack) int {
			return runLogout(st, out)
		}))
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)
	loginCmd.Flags().StringVarP(&loginUser, "user", "u", "", "Username or email")
	loginCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
}

// runLogin signs in and returns the exit code
func runLogin(ctx context.Context, st *stack, w io.Writer, in io.Reader) int {
	creds, err := collectCredentials(st.palette, in)
	if err != nil {
		if errors.Is(err, loginform.ErrCancelled) {
			fmt.Fprintln(w, "Login cancelled.")
			return exitRejected
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	sess := st.sessions.Login(ctx, creds)

	if IsJSONOutput() {
		fmt.Fprintln(w, formatSessionJSON(st, sess))
	}
	if !sess.IsAuthenticated() {
		return exitRejected
	}
	return exitOK
}

// collectCredentials reads what flags and stdin provide and prompts for the rest
func collectCredentials(p theme.Palette, in io.Reader) (session.Credentials, error) {
	if passwordStdin {
		if strings.TrimSpace(loginUser) == "" {
			return session.Credentials{}, errors.New("--password-stdin requires --user")
		}
		secret, err := readSecret(in)
		if err != nil {
			return session.Credentials{}, err
		}
		return session.Credentials{Identifier: strings.TrimSpace(loginUser), Secret: secret}, nil
	}
	return promptLogin(p, loginUser)
}

// readSecret returns the first line of in without its line ending
func readSecret(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	secret := strings.TrimRight(line, "\r\n")
	if secret == "" {
		return "", errors.New("empty password on stdin")
	}
	return secret, nil
}

// runLogout clears the session and returns the exit code
func runLogout(st *stack, w io.Writer) int {
	st.sessions.Logout()
	st.api.PurgeCache()

	if IsJSONOutput() {
		fmt.Fprintln(w, formatSessionJSON(st, st.sessions.Snapshot()))
		return exitOK
	}
	fmt.Fprintln(w, session.MessageLoggedOut)
	return exitOK
}

// sessionView is the printable form of a session
type sessionView struct {
	Authenticated bool   `json:"authenticated"`
	Message       string `json:"message,omitempty"`
	IsLogout      bool   `json:"is_logout"`
	Locale        string `json:"locale"`
	Theme         string `json:"theme"`
	APIURL        string `json:"api_url"`
	ConfigDir     string `json:"config_dir"`
}

func newSessionView(st *stack, sess session.Session) sessionView {
	return sessionView{
		Authenticated: sess.IsAuthenticated(),
		Message:       sess.Message,
		IsLogout:      sess.IsLogout,
		Locale:        st.locales.Locale(),
		Theme:         st.palette.Name,
		APIURL:        st.cfg.APIURL,
		ConfigDir:     st.cfg.ConfigDir,
	}
}

// formatSessionJSON formats a session snapshot as JSON
func formatSessionJSON(st *stack, sess session.Session) string {
	data, _ := json.MarshalIndent(newSessionView(st, sess), "", "  ")
	return string(data)
}
