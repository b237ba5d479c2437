// ABOUTME: Tests for the session store
// ABOUTME: Covers hydration, login outcomes, exchange, logout idempotence, expiry and serialization

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rerng-addicted/rerng-admin/internal/client"
	"github.com/rerng-addicted/rerng-admin/internal/notify"
	"github.com/rerng-addicted/rerng-admin/internal/storage"
)

type fakeAuth struct {
	mu       sync.Mutex
	result   *client.AuthResult
	err      error
	calls    int
	inflight int
	maxIn    int
	lastReq  client.LoginRequest
	lastKey  string
	delay    time.Duration
}

func (f *fakeAuth) enter() {
	f.mu.Lock()
	f.calls++
	f.inflight++
	if f.inflight > f.maxIn {
		f.maxIn = f.inflight
	}
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
}

func (f *fakeAuth) leave() {
	f.mu.Lock()
	f.inflight--
	f.mu.Unlock()
}

func (f *fakeAuth) Login(_ context.Context, req client.LoginRequest) (*client.AuthResult, error) {
	f.enter()
	defer f.leave()
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()
	return f.result, f.err
}

func (f *fakeAuth) ExchangeAuthKey(_ context.Context, key string) (*client.AuthResult, error) {
	f.enter()
	defer f.leave()
	f.mu.Lock()
	f.lastKey = key
	f.mu.Unlock()
	return f.result, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(seed map[string]string, auth *fakeAuth) (*Store, *storage.MemoryStore, *notify.Recorder) {
	persist := storage.NewMemoryStore(seed)
	rec := &notify.Recorder{}
	s := New(persist, auth, WithNotifier(rec), WithLogger(quietLogger()))
	return s, persist, rec
}

func TestNew_Hydration(t *testing.T) {
	tests := []struct {
		name     string
		seed     map[string]string
		wantAuth bool
	}{
		{"nothing persisted", nil, false},
		{"token persisted", map[string]string{storage.KeyAuthToken: "abc"}, true},
		{"empty token persisted", map[string]string{storage.KeyAuthToken: ""}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, _, _ := newTestStore(tc.seed, &fakeAuth{})
			if got := s.IsAuthenticated(); got != tc.wantAuth {
				t.Errorf("IsAuthenticated() = %t, want %t", got, tc.wantAuth)
			}
			snap := s.Snapshot()
			if snap.Loading {
				t.Error("expected loading false after construction")
			}
			if snap.IsLogout == tc.wantAuth {
				t.Errorf("IsLogout = %t with authenticated = %t", snap.IsLogout, tc.wantAuth)
			}
		})
	}
}

func TestLogin_Success(t *testing.T) {
	auth := &fakeAuth{result: &client.AuthResult{Token: "abc", Message: "Welcome back"}}
	s, persist, rec := newTestStore(nil, auth)

	snap := s.Login(context.Background(), Credentials{Identifier: "admin", Secret: "secret"})

	if snap.Token != "abc" || !snap.IsAuthenticated() {
		t.Errorf("expected token abc, got %q", snap.Token)
	}
	if snap.IsLogout {
		t.Error("expected IsLogout false after login")
	}
	if snap.Loading {
		t.Error("expected Loading false after login")
	}
	if snap.Message != "Welcome back" {
		t.Errorf("expected server message, got %q", snap.Message)
	}
	if v, ok := persist.Get(storage.KeyAuthToken); !ok || v != "abc" {
		t.Errorf("expected persisted token abc, got %q (present=%t)", v, ok)
	}
	if auth.lastReq.UserName != "admin" || auth.lastReq.Password != "secret" {
		t.Errorf("unexpected request %+v", auth.lastReq)
	}
	if rec.Count(notify.LevelSuccess) != 1 || len(rec.All()) != 1 {
		t.Errorf("expected exactly one success notification, got %+v", rec.All())
	}
}

func TestLogin_MissingToken(t *testing.T) {
	tests := []struct {
		name        string
		result      *client.AuthResult
		wantMessage string
	}{
		{"server message", &client.AuthResult{Message: "Invalid credentials"}, "Invalid credentials"},
		{"no message", &client.AuthResult{}, MessageLoginFailed},
		{"nil result", nil, MessageLoginFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			auth := &fakeAuth{result: tc.result, err: client.ErrMissingToken}
			s, persist, rec := newTestStore(map[string]string{storage.KeyAuthToken: "old"}, auth)

			snap := s.Login(context.Background(), Credentials{Identifier: "admin", Secret: "bad"})

			if snap.Token != "" {
				t.Errorf("expected no token, got %q", snap.Token)
			}
			if snap.Message != tc.wantMessage {
				t.Errorf("expected message %q, got %q", tc.wantMessage, snap.Message)
			}
			if _, ok := persist.Get(storage.KeyAuthToken); ok {
				t.Error("expected persisted token removed")
			}
			if rec.Count(notify.LevelError) != 1 || len(rec.All()) != 1 {
				t.Errorf("expected exactly one error notification, got %+v", rec.All())
			}
		})
	}
}

func TestLogin_TransportError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantMessage string
	}{
		{"network failure", errors.New("connection refused"), MessageLoginError},
		{"status without message", &client.StatusError{StatusCode: http.StatusInternalServerError}, MessageLoginError},
		{"status with message", &client.StatusError{StatusCode: http.StatusBadRequest, Message: "Account locked"}, "Account locked"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			auth := &fakeAuth{err: tc.err}
			s, _, rec := newTestStore(nil, auth)

			snap := s.Login(context.Background(), Credentials{Identifier: "admin", Secret: "x"})

			if snap.IsAuthenticated() {
				t.Error("expected unauthenticated after failure")
			}
			if snap.Message != tc.wantMessage {
				t.Errorf("expected message %q, got %q", tc.wantMessage, snap.Message)
			}
			if snap.Loading {
				t.Error("expected Loading cleared after failure")
			}
			last, ok := rec.Last()
			if !ok || last.Level != notify.LevelError {
				t.Errorf("expected error notification, got %+v", last)
			}
		})
	}
}

func TestLogin_LoadingVisibleDuringCall(t *testing.T) {
	var s *Store
	var during Session
	auth := &loadingProbe{probe: func() { during = s.Snapshot() }}
	s = New(storage.NewMemoryStore(nil), auth, WithLogger(quietLogger()))

	after := s.Login(context.Background(), Credentials{Identifier: "a", Secret: "b"})

	if !during.Loading {
		t.Error("expected Loading true while the call is in flight")
	}
	if after.Loading || s.Snapshot().Loading {
		t.Error("expected Loading false after completion")
	}
}

type loadingProbe struct {
	probe func()
}

func (l *loadingProbe) Login(context.Context, client.LoginRequest) (*client.AuthResult, error) {
	l.probe()
	return &client.AuthResult{Token: "t"}, nil
}

func (l *loadingProbe) ExchangeAuthKey(context.Context, string) (*client.AuthResult, error) {
	l.probe()
	return &client.AuthResult{Token: "t"}, nil
}

func TestExchange_LeavesLoadingAlone(t *testing.T) {
	var s *Store
	var during Session
	auth := &loadingProbe{probe: func() { during = s.Snapshot() }}
	s = New(storage.NewMemoryStore(nil), auth, WithLogger(quietLogger()))

	if !s.Exchange(context.Background(), "XYZ") {
		t.Fatal("expected exchange to succeed")
	}
	if during.Loading {
		t.Error("expected Loading false during an auth key exchange")
	}
}

func TestExchange(t *testing.T) {
	t.Run("success persists token", func(t *testing.T) {
		auth := &fakeAuth{result: &client.AuthResult{Token: "abc"}}
		s, persist, _ := newTestStore(nil, auth)

		if !s.Exchange(context.Background(), "XYZ") {
			t.Fatal("expected exchange to succeed")
		}
		if auth.lastKey != "XYZ" {
			t.Errorf("expected key XYZ, got %q", auth.lastKey)
		}
		if v, _ := persist.Get(storage.KeyAuthToken); v != "abc" {
			t.Errorf("expected persisted abc, got %q", v)
		}
		if !s.IsAuthenticated() {
			t.Error("expected authenticated")
		}
	})

	t.Run("failure leaves state unchanged", func(t *testing.T) {
		auth := &fakeAuth{err: client.ErrMissingToken, result: &client.AuthResult{}}
		s, persist, rec := newTestStore(nil, auth)

		if s.Exchange(context.Background(), "bad") {
			t.Fatal("expected exchange to fail")
		}
		if _, ok := persist.Get(storage.KeyAuthToken); ok {
			t.Error("expected nothing persisted")
		}
		if s.IsAuthenticated() {
			t.Error("expected unauthenticated")
		}
		if len(rec.All()) != 0 {
			t.Errorf("expected no notification, got %+v", rec.All())
		}
	})
}

func TestLogout_Idempotent(t *testing.T) {
	s, persist, rec := newTestStore(map[string]string{storage.KeyAuthToken: "abc"}, &fakeAuth{})

	s.Logout()
	first := s.Snapshot()
	s.Logout()
	second := s.Snapshot()

	if first != second {
		t.Errorf("expected identical state, got %+v then %+v", first, second)
	}
	if first.Token != "" || !first.IsLogout {
		t.Errorf("expected logged out state, got %+v", first)
	}
	if first.Message != MessageLoggedOut {
		t.Errorf("expected %q, got %q", MessageLoggedOut, first.Message)
	}
	if _, ok := persist.Get(storage.KeyAuthToken); ok {
		t.Error("expected persisted token removed")
	}
	if len(rec.All()) != 0 {
		t.Error("expected logout to be silent")
	}
}

func TestExpire(t *testing.T) {
	s, persist, rec := newTestStore(map[string]string{storage.KeyAuthToken: "abc"}, &fakeAuth{})

	s.Expire("Login session expired")

	snap := s.Snapshot()
	if snap.IsAuthenticated() {
		t.Error("expected unauthenticated after expiry")
	}
	if snap.Message != "Login session expired" {
		t.Errorf("expected expiry message, got %q", snap.Message)
	}
	if _, ok := persist.Get(storage.KeyAuthToken); ok {
		t.Error("expected persisted token removed")
	}
	if rec.Count(notify.LevelError) != 1 {
		t.Errorf("expected one error notification, got %+v", rec.All())
	}
}

func TestStore_SerializesNetworkCalls(t *testing.T) {
	auth := &fakeAuth{
		result: &client.AuthResult{Token: "abc"},
		delay:  5 * time.Millisecond,
	}
	s, _, _ := newTestStore(nil, auth)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.Exchange(context.Background(), fmt.Sprintf("key-%d", i))
			} else {
				s.Login(context.Background(), Credentials{Identifier: fmt.Sprintf("u%d", i), Secret: "x"})
			}
		}(i)
	}
	wg.Wait()

	if auth.maxIn != 1 {
		t.Errorf("expected at most one call in flight, saw %d", auth.maxIn)
	}
	if !s.IsAuthenticated() {
		t.Error("expected authenticated after concurrent logins")
	}
	if s.Snapshot().Loading {
		t.Error("expected Loading false once all calls finish")
	}
}

// gatedAuth holds every call until release is closed or the call's ctx ends
type gatedAuth struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newGatedAuth() *gatedAuth {
	return &gatedAuth{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedAuth) wait(ctx context.Context) (*client.AuthResult, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
	}
	select {
	case <-g.release:
		return &client.AuthResult{Token: "shared", Message: "Welcome back"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedAuth) Login(ctx context.Context, _ client.LoginRequest) (*client.AuthResult, error) {
	return g.wait(ctx)
}

func (g *gatedAuth) ExchangeAuthKey(ctx context.Context, _ string) (*client.AuthResult, error) {
	return g.wait(ctx)
}

func TestLogin_SharedCallSurvivesFirstCallerCancel(t *testing.T) {
	auth := newGatedAuth()
	rec := &notify.Recorder{}
	s := New(storage.NewMemoryStore(nil), auth, WithNotifier(rec), WithLogger(quietLogger()))
	creds := Credentials{Identifier: "admin", Secret: "pass"}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()
	first := make(chan Session, 1)
	go func() { first <- s.Login(firstCtx, creds) }()
	<-auth.started

	second := make(chan Session, 1)
	go func() { second <- s.Login(context.Background(), creds) }()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("cancelled caller still waiting")
	}

	close(auth.release)
	select {
	case got := <-second:
		if !got.IsAuthenticated() {
			t.Errorf("expected second caller to get the shared token, got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("second caller never returned")
	}

	if n := auth.calls.Load(); n != 1 {
		t.Errorf("expected one shared call, got %d", n)
	}
	if rec.Count(notify.LevelSuccess) != 1 || rec.Count(notify.LevelError) != 0 {
		t.Errorf("expected a single success notification, got %+v", rec.All())
	}
}

func TestExchange_WaiterHonoursOwnContext(t *testing.T) {
	auth := newGatedAuth()
	s := New(storage.NewMemoryStore(nil), auth, WithLogger(quietLogger()))

	login := make(chan Session, 1)
	go func() { login <- s.Login(context.Background(), Credentials{Identifier: "admin", Secret: "pass"}) }()
	<-auth.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	if s.Exchange(ctx, "XYZ") {
		t.Error("expected exchange to report false once its context ended")
	}
	if waited := time.Since(start); waited > time.Second {
		t.Errorf("expected exchange to stop waiting promptly, waited %s", waited)
	}

	close(auth.release)
	if got := <-login; !got.IsAuthenticated() {
		t.Errorf("expected login to complete, got %+v", got)
	}
}
