// ABOUTME: Integration tests for the TUI app
// ABOUTME: Drives screen transitions through the real router, session store, and a fake backend

package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rerng-addicted/rerng-admin/internal/client"
	"github.com/rerng-addicted/rerng-admin/internal/locale"
	"github.com/rerng-addicted/rerng-admin/internal/notify"
	"github.com/rerng-addicted/rerng-admin/internal/router"
	"github.com/rerng-addicted/rerng-admin/internal/session"
	"github.com/rerng-addicted/rerng-admin/internal/storage"
	"github.com/rerng-addicted/rerng-admin/internal/theme"
	"github.com/rerng-addicted/rerng-admin/internal/transport"
	"github.com/rerng-addicted/rerng-admin/internal/tui/loginform"
	"github.com/rerng-addicted/rerng-admin/internal/tui/recentsearches"
	"github.com/rerng-addicted/rerng-admin/internal/tui/search"
)

const goblinDetail = `{"message":"ok","data":{"series_details":[{"id":101,"title":"Goblin","status":"Completed","episodesCount":2,"episodes":[{"id":1,"number":1},{"id":2,"number":2}]}]}}`

type testEnv struct {
	app      *App
	persist  *storage.MemoryStore
	sessions *session.Store
	recorder *notify.Recorder
	recent   *recentsearches.RecentSearches
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBackend accepts admin/pass, exchanges key XYZ, and serves series 101.
// Series 999 always answers 401.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	authorized := func(r *http.Request) bool {
		h := r.Header.Get("Authorization")
		return h == "Bearer tok" || h == "Bearer exchanged"
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/admin/auth/login":
			var req client.LoginRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.UserName == "admin" && req.Password == "pass" {
				fmt.Fprint(w, `{"message":"Welcome back","data":{"auth":{"token":"tok"}}}`)
				return
			}
			fmt.Fprint(w, `{"message":"Invalid credentials","data":null}`)
		case r.URL.Path == "/auth/login/XYZ":
			fmt.Fprint(w, `{"data":{"auth":{"token":"exchanged"}}}`)
		case !authorized(r) || r.URL.Path == "/admin/scraping/detail/999":
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"Unauthenticated"}`)
		case r.URL.Path == "/admin/scraping/search":
			fmt.Fprint(w, `{"data":{"series":[{"id":101,"title":"Goblin","episodesCount":2}]}}`)
		case r.URL.Path == "/admin/scraping/detail/101":
			fmt.Fprint(w, goblinDetail)
		case r.URL.Path == "/admin/scraping/deep/detail/101":
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, "data: [█░] 50%\n\n")
			fmt.Fprint(w, `data: {"data":{"series_deep_details":[{"id":101,"episodes":[{"id":1,"src":"https://cdn.test/1.m3u8"}]}]}}`+"\n\n")
			fmt.Fprint(w, "event: done\ndata: complete\n\n")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestEnv(t *testing.T, seed map[string]string, start string) *testEnv {
	t.Helper()
	server := fakeBackend(t)
	logger := quietLogger()

	persist := storage.NewMemoryStore(seed)
	recorder := &notify.Recorder{}

	authAPI := client.New(server.URL, client.WithLogger(logger))
	sessions := session.New(persist, authAPI, session.WithNotifier(recorder), session.WithLogger(logger))
	api := client.New(server.URL,
		client.WithLogger(logger),
		client.WithCache(0),
		client.WithInterceptors(
			transport.ExpireOnReject(sessions),
			transport.Credentials(sessions, locale.Resolver{Store: persist}),
		),
	)
	t.Cleanup(authAPI.Close)
	t.Cleanup(api.Close)

	guard := router.NewGuard(sessions, persist, recorder, logger)
	recent := recentsearches.New(t.TempDir())

	app := New(Deps{
		Client:   api,
		Sessions: sessions,
		Router:   router.New(guard, logger),
		Persist:  persist,
		Recorder: recorder,
		Recent:   recent,
		Logger:   logger,
		Start:    start,
	})
	return &testEnv{app: app, persist: persist, sessions: sessions, recorder: recorder, recent: recent}
}

// send feeds msg to the app and runs the returned command chain, skipping
// batches and ticks, until a message the app does not react to
func (e *testEnv) send(t *testing.T, msg tea.Msg) {
	t.Helper()
	for i := 0; msg != nil && i < 10; i++ {
		_, cmd := e.app.Update(msg)
		msg = run(cmd)
	}
}

func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case navigatedMsg, loginDoneMsg, searchDoneMsg, detailLoadedMsg, deepDoneMsg,
		loginform.SubmittedMsg, search.SubmittedMsg, search.SelectedMsg:
		return msg
	}
	return nil
}

func TestAppInitialState(t *testing.T) {
	env := newTestEnv(t, nil, "")

	if env.app.screen != ScreenLoading {
		t.Errorf("expected initial screen to be ScreenLoading, got %d", env.app.screen)
	}
	if env.app.deps.Start != router.RootPath {
		t.Errorf("expected default start %q, got %q", router.RootPath, env.app.deps.Start)
	}
	if !strings.Contains(env.app.View(), "Loading") {
		t.Error("expected loading view before the first navigation")
	}
}

func TestAppAnonymousLandsOnLogin(t *testing.T) {
	env := newTestEnv(t, nil, "")

	env.send(t, env.app.navigate("/")())

	if env.app.screen != ScreenLogin {
		t.Fatalf("expected ScreenLogin, got %d", env.app.screen)
	}
	if env.app.loginScreen == nil {
		t.Error("expected login form to be created")
	}
}

func TestAppPersistedTokenLandsOnHome(t *testing.T) {
	env := newTestEnv(t, map[string]string{storage.KeyAuthToken: "tok"}, "")

	env.send(t, env.app.navigate("/login")())

	if env.app.screen != ScreenHome {
		t.Errorf("expected authenticated /login to land on ScreenHome, got %d", env.app.screen)
	}
}

func TestAppAuthKeyExchange(t *testing.T) {
	env := newTestEnv(t, nil, "/?auth_key=XYZ")

	env.send(t, env.app.navigate(env.app.deps.Start)())

	if env.app.screen != ScreenHome {
		t.Fatalf("expected ScreenHome after exchange, got %d", env.app.screen)
	}
	if token, _ := env.persist.Get(storage.KeyAuthToken); token != "exchanged" {
		t.Errorf("expected exchanged token persisted, got %q", token)
	}
}

func TestAppLoginSuccess(t *testing.T) {
	env := newTestEnv(t, nil, "")
	env.send(t, env.app.navigate("/")())

	env.send(t, loginform.SubmittedMsg{Credentials: session.Credentials{Identifier: "admin", Secret: "pass"}})

	if env.app.screen != ScreenHome {
		t.Fatalf("expected ScreenHome after login, got %d", env.app.screen)
	}
	if env.app.loading {
		t.Error("expected loading cleared after login")
	}
	last, ok := env.recorder.Last()
	if !ok || last.Message != "Welcome back" {
		t.Errorf("expected success notification, got %+v", last)
	}
}

func TestAppLoginFailureStaysOnLogin(t *testing.T) {
	env := newTestEnv(t, nil, "")
	env.send(t, env.app.navigate("/")())

	env.send(t, loginform.SubmittedMsg{Credentials: session.Credentials{Identifier: "admin", Secret: "wrong"}})

	if env.app.screen != ScreenLogin {
		t.Fatalf("expected ScreenLogin after failed login, got %d", env.app.screen)
	}
	if env.app.identifier != "admin" {
		t.Errorf("expected identifier remembered, got %q", env.app.identifier)
	}
	if !strings.Contains(env.app.View(), "Invalid credentials") {
		t.Error("expected failure message in status bar")
	}
}

func TestAppSearchAndOpenEpisode(t *testing.T) {
	env := newTestEnv(t, map[string]string{storage.KeyAuthToken: "tok"}, "")
	env.send(t, env.app.navigate("/")())

	env.send(t, search.SubmittedMsg{Keyword: "goblin"})

	if got := env.app.searchView.Results(); len(got) != 1 || got[0].ID != 101 {
		t.Fatalf("expected one result, got %+v", got)
	}
	if recent := env.recent.List(); len(recent) != 1 || recent[0] != "goblin" {
		t.Errorf("expected keyword remembered, got %v", recent)
	}

	env.send(t, search.SelectedMsg{Serie: env.app.searchView.Results()[0]})

	if env.app.screen != ScreenEpisode {
		t.Fatalf("expected ScreenEpisode, got %d", env.app.screen)
	}
	if d := env.app.episodeView.Detail(); d == nil || d.Title != "Goblin" {
		t.Fatalf("expected Goblin detail loaded, got %+v", d)
	}
	if env.app.route != "/episode?id=101" {
		t.Errorf("expected route /episode?id=101, got %q", env.app.route)
	}
}

func TestAppDeepDetail(t *testing.T) {
	env := newTestEnv(t, map[string]string{storage.KeyAuthToken: "tok"}, "")
	env.send(t, env.app.navigate("/episode?id=101")())

	cmd := env.app.startDeep("101")
	if !env.app.episodeView.Scraping() {
		t.Fatal("expected scrape marked as running")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok || len(batch) != 2 {
		t.Fatalf("expected a batch of runner and listener, got %T", cmd())
	}

	env.send(t, batch[0]())

	if env.app.episodeView.Scraping() {
		t.Error("expected scrape finished")
	}
	last, _ := env.recorder.Last()
	if last.Message != "Resolved sources for 1 episode(s)" {
		t.Errorf("unexpected notification %q", last.Message)
	}
	if !strings.Contains(env.app.View(), "cdn.test") {
		t.Error("expected resolved source in view")
	}
}

func TestAppRejectionReturnsToLogin(t *testing.T) {
	env := newTestEnv(t, map[string]string{storage.KeyAuthToken: "tok"}, "")
	env.send(t, env.app.navigate("/")())

	env.send(t, env.app.navigate("/episode?id=999")())

	if env.app.screen != ScreenLogin {
		t.Fatalf("expected ScreenLogin after 401, got %d", env.app.screen)
	}
	if env.sessions.IsAuthenticated() {
		t.Error("expected session expired")
	}
	last, _ := env.recorder.Last()
	if last.Message != transport.ExpiredMessage {
		t.Errorf("expected expiry notification, got %q", last.Message)
	}
}

func TestAppLogout(t *testing.T) {
	env := newTestEnv(t, map[string]string{storage.KeyAuthToken: "tok"}, "")
	env.send(t, env.app.navigate("/")())

	env.send(t, run(func() tea.Msg {
		_, cmd := env.app.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
		return cmd()
	}))

	if env.app.screen != ScreenLogin {
		t.Fatalf("expected ScreenLogin after logout, got %d", env.app.screen)
	}
	if _, ok := env.persist.Get(storage.KeyAuthToken); ok {
		t.Error("expected token removed")
	}
	last, _ := env.recorder.Last()
	if last.Message != session.MessageLoggedOut {
		t.Errorf("expected logout notification, got %q", last.Message)
	}
}

func TestAppEmptyTokenNotice(t *testing.T) {
	env := newTestEnv(t, map[string]string{storage.KeyAuthToken: ""}, "")

	env.send(t, env.app.navigate("/login")())

	if env.app.screen != ScreenLogin {
		t.Fatalf("expected ScreenLogin, got %d", env.app.screen)
	}
	if env.recorder.Count(notify.LevelError) != 1 {
		t.Errorf("expected one error notification, got %d", env.recorder.Count(notify.LevelError))
	}
	if _, ok := env.persist.Get(storage.KeyAuthToken); ok {
		t.Error("expected empty token cleaned up")
	}
}

func TestAppUnknownRouteFallsBackToLogin(t *testing.T) {
	env := newTestEnv(t, nil, "/nowhere")

	env.send(t, env.app.navigate(env.app.deps.Start)())

	if env.app.screen != ScreenLogin {
		t.Errorf("expected fallback to ScreenLogin, got %d", env.app.screen)
	}
}

func TestAppCycleTheme(t *testing.T) {
	env := newTestEnv(t, nil, "")
	before := env.app.palette.Name

	env.app.Update(tea.KeyMsg{Type: tea.KeyCtrlT})

	if env.app.palette.Name == before {
		t.Fatal("expected palette to change")
	}
	stored, _ := env.persist.Get(storage.KeyTheme)
	if stored != env.app.palette.Name {
		t.Errorf("expected theme %q persisted, got %q", env.app.palette.Name, stored)
	}
	if _, ok := theme.Lookup(stored); !ok {
		t.Errorf("persisted theme %q is unknown", stored)
	}
}

func TestEpisodeTarget(t *testing.T) {
	if got := episodeTarget(101); got != "/episode?id=101" {
		t.Errorf("episodeTarget(101) = %q", got)
	}
}
