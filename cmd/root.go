// ABOUTME: Root command for the rerng-admin CLI
// ABOUTME: Handles global flags and wires config, logging, session, and router for subcommands

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rerng-addicted/rerng-admin/internal/client"
	"github.com/rerng-addicted/rerng-admin/internal/config"
	"github.com/rerng-addicted/rerng-admin/internal/locale"
	"github.com/rerng-addicted/rerng-admin/internal/logger"
	"github.com/rerng-addicted/rerng-admin/internal/notify"
	"github.com/rerng-addicted/rerng-admin/internal/router"
	"github.com/rerng-addicted/rerng-admin/internal/session"
	"github.com/rerng-addicted/rerng-admin/internal/storage"
	"github.com/rerng-addicted/rerng-admin/internal/theme"
	"github.com/rerng-addicted/rerng-admin/internal/transport"
	"github.com/spf13/cobra"
)

// Exit codes shared by every command
const (
	exitOK       = 0
	exitRejected = 1
	exitError    = 2
)

var (
	apiURL     string
	configDir  string
	jsonOutput bool
	ephemeral  bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "rerng-admin",
	Short: "Terminal client for the Rerng Addicted admin API",
	Long: `rerng-admin signs in to the Rerng Addicted admin API and browses scraped series
from the terminal, either with single commands or the full-screen "ui".

Exit codes:
  0 - Success
  1 - Rejected (not signed in, login refused, session expired)
  2 - Error (connectivity, invalid input, configuration)

Environment Variables:
  RERNG_API_URL           Backend API URL (default: http://localhost:8080/api/v1)
  RERNG_CONFIG_DIR        Directory for the session file and debug.log
  RERNG_TIMEOUT           Request timeout (default: 30s)
  RERNG_DETAIL_CACHE_TTL  Series detail cache lifetime, 0 disables (default: 60s)
  LOG_LEVEL               debug, info, warn, error (default: info)
  LOG_FORMAT              text, json (default: text)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides RERNG_API_URL)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (overrides RERNG_CONFIG_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep the session in memory only; nothing is written to state.json")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// loadConfig reads env and .env, then applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// stack is the wired client stack one command runs against
type stack struct {
	cfg      *config.Config
	logger   *slog.Logger
	logFile  io.Closer
	persist  storage.Store
	locales  locale.Resolver
	palette  theme.Palette
	recorder *notify.Recorder
	notifier notify.Notifier
	authAPI  *client.Client
	api      *client.Client
	sessions *session.Store
	router   *router.Router
}

// newStack wires the stack. Notifications are recorded and, when echo is
// non-nil and JSON output is off, printed to echo.
func newStack(cfg *config.Config, echo io.Writer) (*stack, error) {
	st := &stack{cfg: cfg, recorder: &notify.Recorder{}}

	var logSink io.Writer = io.Discard
	if f, err := logger.Open(cfg.ConfigDir); err == nil {
		st.logFile = f
		logSink = f
	}
	st.logger = logger.Init(logSink, cfg.LogLevel, cfg.LogFormat)

	if ephemeral {
		st.persist = storage.NewMemoryStore(nil)
	} else {
		st.persist = storage.NewFileStore(cfg.ConfigDir, st.logger)
	}
	st.locales = locale.Resolver{Store: st.persist}
	st.palette = theme.Current(st.persist)

	st.notifier = st.recorder
	if echo != nil && !IsJSONOutput() {
		st.notifier = notify.Multi(st.recorder, notify.NewWriter(echo, theme.NewStyles(st.palette)))
	}

	// Auth endpoints go through their own client so the session can depend on it
	st.authAPI = client.New(cfg.APIURL,
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(st.logger),
	)
	st.sessions = session.New(st.persist, st.authAPI,
		session.WithNotifier(st.notifier),
		session.WithLogger(st.logger),
	)
	st.api = client.New(cfg.APIURL,
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(st.logger),
		client.WithCache(cfg.DetailCacheTTL),
		client.WithInterceptors(
			transport.ExpireOnReject(st.sessions),
			transport.Credentials(st.sessions, st.locales),
		),
	)

	guard := router.NewGuard(st.sessions, st.persist, st.notifier, st.logger)
	st.router = router.New(guard, st.logger)

	st.logger.Debug("Client stack ready", "api_url", cfg.APIURL, "config_dir", cfg.ConfigDir, "ephemeral", ephemeral)
	return st, nil
}

// Close releases the clients and the log file
func (st *stack) Close() {
	st.api.Close()
	st.authAPI.Close()
	if st.logFile != nil {
		st.logFile.Close()
	}
}

// withStack loads config, wires the stack and runs fn, reporting setup errors
// to w and echoing notifications to echo
func withStack(w, echo io.Writer, fn func(ctx context.Context, st *stack) int) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	st, err := newStack(cfg, echo)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer st.Close()

	return fn(ctx, st)
}

// exitCodeFor maps a data request error onto an exit code
func exitCodeFor(err error) int {
	if client.IsUnauthorized(err) {
		return exitRejected
	}
	return exitError
}

// reportError prints err, using the backend message when it has one
func reportError(w io.Writer, err error) {
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, "Error: cancelled")
		return
	}
	if msg := client.ServerMessage(err); msg != "" {
		fmt.Fprintf(w, "Error: %s\n", msg)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// requireSession prints a hint and reports false when nobody is signed in
func requireSession(w io.Writer, st *stack) bool {
	if st.sessions.IsAuthenticated() {
		return true
	}
	fmt.Fprintln(w, "Not signed in. Run \"rerng-admin login\" first.")
	return false
}

// exit terminates with code when it is non-zero
func exit(code int) {
	if code != exitOK {
		os.Exit(code)
	}
}
