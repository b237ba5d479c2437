// ABOUTME: Session store holding the bearer token, status message and loading flag
// ABOUTME: Exposes Login, Exchange, Logout, Expire and the IsAuthenticated predicate

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rerng-addicted/rerng-admin/internal/client"
	"github.com/rerng-addicted/rerng-admin/internal/notify"
	"github.com/rerng-addicted/rerng-admin/internal/storage"
	"golang.org/x/sync/singleflight"
)

// User-facing status messages
const (
	MessageLoginFailed  = "Login failed. Please try again."
	MessageLoginError   = "An error occurred during login. Please try again later."
	MessageLoggedOut    = "Logged out successfully."
	MessageLoginSuccess = "Login successful."
)

// Session is a snapshot of the locally-held authentication state
type Session struct {
	Token    string `json:"-"`
	Message  string `json:"message"`
	Loading  bool   `json:"loading"`
	IsLogout bool   `json:"is_logout"`
}

// IsAuthenticated reports whether the snapshot carries a token
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// Credentials are the identifier/secret pair submitted to the login endpoint
type Credentials struct {
	Identifier string
	Secret     string
}

// Authenticator performs the credential and one-time-key exchanges
type Authenticator interface {
	Login(ctx context.Context, req client.LoginRequest) (*client.AuthResult, error)
	ExchangeAuthKey(ctx context.Context, key string) (*client.AuthResult, error)
}

// Store owns the session. All methods are safe for concurrent use.
type Store struct {
	persist  storage.Store
	auth     Authenticator
	notifier notify.Notifier
	logger   *slog.Logger

	mu    sync.RWMutex
	state Session

	flight sync.Mutex
	group  singleflight.Group
}

// Option configures a Store
type Option func(*Store)

// WithNotifier sets the notification side channel
func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithLogger sets the logger used for diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a Store hydrated from the persisted authToken key
func New(persist storage.Store, auth Authenticator, opts ...Option) *Store {
	s := &Store{
		persist:  persist,
		auth:     auth,
		notifier: notify.Discard,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	token, _ := persist.Get(storage.KeyAuthToken)
	s.state = Session{
		Token:    token,
		IsLogout: token == "",
	}
	return s
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the current bearer token, or "" when logged out
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// IsAuthenticated reports whether a token is held
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Login exchanges credentials for a token. It never returns an error: the
// outcome is visible through the returned snapshot and exactly one notification.
//
// Identical concurrent calls share one round trip that runs detached from every
// caller's cancellation and is bounded by the client timeout. If ctx ends first,
// Login returns the current snapshot and the shared call finishes in the background.
func (s *Store) Login(ctx context.Context, creds Credentials) Session {
	key := "login\x00" + creds.Identifier + "\x00" + creds.Secret
	ch := s.group.DoChan(key, func() (any, error) {
		callCtx := context.WithoutCancel(ctx)
		s.flight.Lock()
		defer s.flight.Unlock()
		return s.login(callCtx, creds), nil
	})

	select {
	case res := <-ch:
		return res.Val.(Session)
	case <-ctx.Done():
		s.logger.Debug("Stopped waiting for login", "user", creds.Identifier, "error", ctx.Err())
		return s.Snapshot()
	}
}

func (s *Store) login(ctx context.Context, creds Credentials) Session {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Message = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state.Loading = false
		s.mu.Unlock()
	}()

	res, err := s.auth.Login(ctx, client.LoginRequest{
		UserName: creds.Identifier,
		Password: creds.Secret,
	})

	switch {
	case err == nil:
		message := res.Message
		if message == "" {
			message = MessageLoginSuccess
		}
		s.setToken(res.Token, message)
		s.logger.Info("Login succeeded", "user", creds.Identifier)
		s.notify(notify.LevelSuccess, message)

	case errors.Is(err, client.ErrMissingToken):
		message := MessageLoginFailed
		if res != nil && res.Message != "" {
			message = res.Message
		}
		s.clearToken(message, false)
		s.logger.Warn("Login response carried no token", "user", creds.Identifier)
		s.notify(notify.LevelError, message)

	default:
		message := client.ServerMessage(err)
		if message == "" {
			message = MessageLoginError
		}
		s.clearToken(message, false)
		s.logger.Error("Login failed", "user", creds.Identifier, "error", err)
		s.notify(notify.LevelError, message)
	}

	snap := s.Snapshot()
	snap.Loading = false
	return snap
}

// Exchange trades a one-time auth key for a token and persists it.
// It reports whether a token was obtained; failures leave the session unchanged.
// Sharing and cancellation follow Login; a caller whose ctx ends first gets false.
func (s *Store) Exchange(ctx context.Context, authKey string) bool {
	ch := s.group.DoChan("exchange\x00"+authKey, func() (any, error) {
		callCtx := context.WithoutCancel(ctx)
		s.flight.Lock()
		defer s.flight.Unlock()
		return s.exchange(callCtx, authKey), nil
	})

	select {
	case res := <-ch:
		return res.Val.(bool)
	case <-ctx.Done():
		s.logger.Debug("Stopped waiting for auth key exchange", "error", ctx.Err())
		return false
	}
}

func (s *Store) exchange(ctx context.Context, authKey string) bool {
	res, err := s.auth.ExchangeAuthKey(ctx, authKey)
	if err != nil {
		s.logger.Warn("Auth key exchange failed", "error", err)
		return false
	}
	s.setToken(res.Token, res.Message)
	s.logger.Info("Auth key exchanged for token")
	return true
}

// Logout clears the token and its persisted copy. Calling it again is a no-op
// apart from resetting the message.
func (s *Store) Logout() {
	s.clearToken(MessageLoggedOut, true)
}

// Expire forces a logout because the backend rejected the credential and
// replaces the message with the supplied notice.
func (s *Store) Expire(message string) {
	s.clearToken(message, true)
	s.logger.Info("Session expired", "message", message)
	s.notify(notify.LevelError, message)
}

func (s *Store) setToken(token, message string) {
	s.mu.Lock()
	s.state.Token = token
	s.state.IsLogout = false
	s.state.Message = message
	s.mu.Unlock()

	if err := s.persist.Set(storage.KeyAuthToken, token); err != nil {
		s.logger.Warn("Failed to persist token", "error", err)
	}
}

func (s *Store) clearToken(message string, isLogout bool) {
	s.mu.Lock()
	s.state.Token = ""
	s.state.Message = message
	if isLogout {
		s.state.IsLogout = true
	}
	s.mu.Unlock()

	if err := s.persist.Remove(storage.KeyAuthToken); err != nil {
		s.logger.Warn("Failed to remove persisted token", "error", err)
	}
}

func (s *Store) notify(level notify.Level, message string) {
	s.notifier.Notify(notify.Notification{
		Level:   level,
		Message: message,
		At:      time.Now(),
	})
}
