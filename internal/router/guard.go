// ABOUTME: Navigation guard deciding whether a route transition proceeds or redirects
// ABOUTME: Evaluates auth-key exchange, protected-route and login-route branches in order

package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/rerng-addicted/rerng-admin/internal/notify"
	"github.com/rerng-addicted/rerng-admin/internal/storage"
)

// MessageEmptyToken is shown when the persisted token is present but empty
const MessageEmptyToken = "Your session token is empty. Please log in again."

// Action is the outcome of a guard evaluation
type Action int

const (
	Allow Action = iota
	Redirect
)

// String returns the string representation of an Action
func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict for one navigation
type Decision struct {
	Action Action
	Path   string
}

func allow() Decision { return Decision{Action: Allow} }
func redirect(path string) Decision { return Decision{Action: Redirect, Path: path} }

// Sessions is the part of the session store the guard relies on
type Sessions interface {
	IsAuthenticated() bool
	Exchange(ctx context.Context, authKey string) bool
	Logout()
}

// Guard is stateless; all state lives in the session and persistence surface
type Guard struct {
	sessions Sessions
	persist  storage.Store
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewGuard creates a Guard. A nil notifier or logger falls back to a no-op or slog.Default.
func NewGuard(sessions Sessions, persist storage.Store, notifier notify.Notifier, logger *slog.Logger) *Guard {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		sessions: sessions,
		persist:  persist,
		notifier: notifier,
		logger:   logger,
	}
}

// Resolve evaluates the guard for target. The first matching branch wins.
func (g *Guard) Resolve(ctx context.Context, target Target) Decision {
	if key := target.AuthKey(); key != "" {
		if g.sessions.Exchange(ctx, key) {
			g.logger.Debug("Guard exchanged auth key", "path", target.Path)
			return redirect(RootPath)
		}
		g.logger.Debug("Guard auth key rejected", "path", target.Path)
		return redirect(LoginPath)
	}

	authenticated := g.sessions.IsAuthenticated()

	if m, ok := Lookup(target.Path); ok && m.RequiresAuth() && !authenticated {
		g.logger.Debug("Guard blocked protected route", "path", target.Path)
		return redirect(LoginPath)
	}

	if target.Path == LoginPath {
		raw, present := g.persist.Get(storage.KeyAuthToken)
		emptyToken := present && raw == ""

		if authenticated || emptyToken {
			if emptyToken {
				g.logger.Warn("Persisted session token is empty")
				g.notifier.Notify(notify.Notification{
					Level:   notify.LevelError,
					Message: MessageEmptyToken,
					At:      time.Now(),
				})
				g.sessions.Logout()
				return redirect(LoginPath)
			}
			return redirect(RootPath)
		}
	}

	return allow()
}
