// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Routes every screen change through the navigation guard and renders the frame

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rerng-addicted/rerng-admin/internal/client"
	"github.com/rerng-addicted/rerng-admin/internal/notify"
	"github.com/rerng-addicted/rerng-admin/internal/router"
	"github.com/rerng-addicted/rerng-admin/internal/session"
	"github.com/rerng-addicted/rerng-admin/internal/storage"
	"github.com/rerng-addicted/rerng-admin/internal/theme"
	"github.com/rerng-addicted/rerng-admin/internal/tui/episode"
	"github.com/rerng-addicted/rerng-admin/internal/tui/icons"
	"github.com/rerng-addicted/rerng-admin/internal/tui/loginform"
	"github.com/rerng-addicted/rerng-admin/internal/tui/recentsearches"
	"github.com/rerng-addicted/rerng-admin/internal/tui/search"
	"github.com/rerng-addicted/rerng-admin/internal/tui/widgets"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenLogin
	ScreenHome
	ScreenEpisode
)

// Layout constants
const (
	minTerminalWidth = 80
	episodeParam     = "id"
)

// navigatedMsg is sent when a navigation has been resolved by the router
type navigatedMsg struct {
	res router.Resolution
	err error
}

// loginDoneMsg is sent when a login attempt finishes
type loginDoneMsg struct {
	session session.Session
}

// searchDoneMsg is sent when a keyword search returns
type searchDoneMsg struct {
	keyword string
	series  []client.Serie
	err     error
}

// detailLoadedMsg is sent when a series detail is loaded
type detailLoadedMsg struct {
	key    string
	detail *client.SerieDetail
	err    error
}

// deepProgressMsg carries one progress line from a running deep scrape
type deepProgressMsg struct {
	line string
	ch   <-chan string
}

// deepDoneMsg is sent when a deep scrape finishes
type deepDoneMsg struct {
	key  string
	deep *client.SerieDeepDetail
	err  error
}

// Deps are the collaborators the TUI drives
type Deps struct {
	Client   *client.Client
	Sessions *session.Store
	Router   *router.Router
	Persist  storage.Store
	Recorder *notify.Recorder
	Notifier notify.Notifier
	Recent   *recentsearches.RecentSearches
	Logger   *slog.Logger

	// Start is the first navigation target, e.g. "/?auth_key=..."
	Start string
}

// App is the root model for the TUI
type App struct {
	deps    Deps
	logger  *slog.Logger
	palette theme.Palette
	styles  theme.Styles

	screen     Screen
	route      string
	width      int
	height     int
	err        error
	loading    bool
	lastUpdate time.Time
	identifier string
	cancelDeep context.CancelFunc

	spinner     spinner.Model
	loginScreen *loginform.Form
	searchView  *search.Search
	episodeView *episode.View
}

// New creates a new TUI application
func New(deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Recorder == nil {
		deps.Recorder = &notify.Recorder{}
	}
	if deps.Notifier == nil {
		deps.Notifier = deps.Recorder
	}
	if deps.Persist == nil {
		deps.Persist = storage.NewMemoryStore(nil)
	}
	if deps.Start == "" {
		deps.Start = router.RootPath
	}

	palette := theme.Current(deps.Persist)
	styles := theme.NewStyles(palette)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Primary))

	var recent []string
	if deps.Recent != nil {
		recent = deps.Recent.List()
	}

	return &App{
		deps:        deps,
		logger:      deps.Logger,
		palette:     palette,
		styles:      styles,
		screen:      ScreenLoading,
		spinner:     sp,
		searchView:  search.New(recent),
		episodeView: episode.New(styles, 0, 0),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.navigate(a.deps.Start))
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.episodeView.SetSize(a.contentWidth(), a.contentHeight())
		a.searchView.Update(msg)
		if a.loginScreen != nil {
			_, cmd := a.loginScreen.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		// Handle global keys
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "ctrl+t":
			return a, a.cycleTheme()
		case "ctrl+l":
			if a.screen == ScreenHome || a.screen == ScreenEpisode {
				return a, a.logout()
			}
		}

		a.err = nil

		// Route to current screen
		switch a.screen {
		case ScreenLogin:
			return a.updateLogin(msg)
		case ScreenHome:
			return a.updateHome(msg)
		case ScreenEpisode:
			return a.updateEpisode(msg)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case navigatedMsg:
		return a.handleNavigated(msg)

	case loginform.SubmittedMsg:
		a.identifier = msg.Credentials.Identifier
		a.loading = true
		return a, a.login(msg.Credentials)

	case loginform.CancelledMsg:
		return a, tea.Quit

	case loginDoneMsg:
		a.loading = false
		if msg.session.IsAuthenticated() {
			return a, a.navigate(router.RootPath)
		}
		if a.loginScreen != nil {
			return a, a.loginScreen.Reset()
		}
		return a, nil

	case search.SubmittedMsg:
		a.rememberSearch(msg.Keyword)
		a.loading = true
		return a, a.runSearch(msg.Keyword)

	case search.SelectedMsg:
		return a, a.navigate(episodeTarget(msg.Serie.ID))

	case searchDoneMsg:
		a.loading = false
		if msg.err != nil {
			return a, a.handleDataError(msg.err)
		}
		a.lastUpdate = time.Now()
		a.searchView.SetResults(msg.keyword, msg.series)
		return a, nil

	case detailLoadedMsg:
		a.loading = false
		if msg.err != nil {
			return a, a.handleDataError(msg.err)
		}
		a.lastUpdate = time.Now()
		a.episodeView.SetDetail(msg.detail)
		return a, nil

	case deepProgressMsg:
		a.episodeView.SetProgress(msg.line)
		return a, listenProgress(msg.ch)

	case deepDoneMsg:
		if msg.key != a.episodeKey() {
			return a, nil
		}
		a.cancelDeep = nil
		if msg.err != nil {
			a.episodeView.StopScrape()
			return a, a.handleDataError(msg.err)
		}
		a.lastUpdate = time.Now()
		a.episodeView.SetDeep(msg.deep)
		a.notify(notify.LevelSuccess, fmt.Sprintf("Resolved sources for %d episode(s)", len(msg.deep.Episodes)))
		return a, nil
	}

	// Forward component-internal messages (cursor blink, huh focus) to the active screen
	switch a.screen {
	case ScreenLogin:
		if a.loginScreen != nil {
			_, cmd := a.loginScreen.Update(msg)
			return a, cmd
		}
	case ScreenHome:
		_, cmd := a.searchView.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.loading || a.loginScreen == nil {
		return a, nil
	}
	_, cmd := a.loginScreen.Update(msg)
	return a, cmd
}

func (a *App) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !a.searchView.Typing() && msg.String() == "q" {
		return a, tea.Quit
	}
	_, cmd := a.searchView.Update(msg)
	return a, cmd
}

func (a *App) updateEpisode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "b", "esc":
		a.stopDeep()
		return a, a.navigate(router.RootPath)
	case "r":
		if key := a.episodeKey(); key != "" {
			a.deps.Client.PurgeCache()
			a.loading = true
			return a, a.loadDetail(key)
		}
	case "d":
		if key := a.episodeKey(); key != "" && !a.episodeView.Scraping() {
			return a, a.startDeep(key)
		}
	}
	return a, a.episodeView.Update(msg)
}

// handleNavigated switches screens to wherever the guard let the navigation land
func (a *App) handleNavigated(msg navigatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.logger.Warn("Navigation failed", "error", msg.err)
		a.err = msg.err
		if a.screen == ScreenLoading {
			return a, a.navigate(router.LoginPath)
		}
		return a, nil
	}

	a.route = msg.res.Target.String()
	switch msg.res.Name() {
	case "login":
		a.screen = ScreenLogin
		a.loginScreen = loginform.New(a.palette, a.identifier)
		if a.width > 0 {
			a.loginScreen.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		}
		return a, a.loginScreen.Init()

	case "episode":
		a.screen = ScreenEpisode
		key := msg.res.Target.Query.Get(episodeParam)
		if key == "" {
			a.err = errors.New("no series selected")
			return a, a.navigate(router.RootPath)
		}
		a.loading = true
		return a, a.loadDetail(key)

	default:
		a.screen = ScreenHome
		a.loginScreen = nil
		return a, a.searchView.Init()
	}
}

// handleDataError reacts to a failed data request. A rejected credential has
// already expired the session, so navigating home lets the guard pick the login screen.
func (a *App) handleDataError(err error) tea.Cmd {
	a.loading = false
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if client.IsUnauthorized(err) {
		a.deps.Client.PurgeCache()
		return a.navigate(router.RootPath)
	}
	a.err = err
	a.logger.Error("Request failed", "error", err)
	if msg := client.ServerMessage(err); msg != "" {
		a.notify(notify.LevelError, msg)
	}
	return nil
}

func (a *App) logout() tea.Cmd {
	a.stopDeep()
	a.deps.Sessions.Logout()
	a.deps.Client.PurgeCache()
	a.notify(notify.LevelInfo, session.MessageLoggedOut)
	return a.navigate(router.RootPath)
}

func (a *App) cycleTheme() tea.Cmd {
	names := theme.Names()
	next := names[0]
	for i, name := range names {
		if name == a.palette.Name {
			next = names[(i+1)%len(names)]
			break
		}
	}
	p, err := theme.Set(a.deps.Persist, next)
	if err != nil {
		a.logger.Warn("Failed to persist theme", "theme", next, "error", err)
		return nil
	}
	a.palette = p
	a.styles = theme.NewStyles(p)
	a.episodeView.SetStyles(a.styles)
	a.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Primary))
	if a.loginScreen != nil {
		a.loginScreen.SetPalette(p)
	}
	return nil
}

func (a *App) rememberSearch(keyword string) {
	if a.deps.Recent == nil {
		return
	}
	if err := a.deps.Recent.Add(keyword); err != nil {
		a.logger.Warn("Failed to save recent search", "error", err)
	}
	a.searchView.SetRecent(a.deps.Recent.List())
}

func (a *App) episodeKey() string {
	if d := a.episodeView.Detail(); d != nil {
		return strconv.Itoa(d.ID)
	}
	return ""
}

func (a *App) stopDeep() {
	if a.cancelDeep != nil {
		a.cancelDeep()
		a.cancelDeep = nil
	}
	a.episodeView.StopScrape()
}

func (a *App) notify(level notify.Level, message string) {
	a.deps.Notifier.Notify(notify.Notification{Level: level, Message: message})
}

func episodeTarget(id int) string {
	return router.EpisodePath + "?" + url.Values{episodeParam: {strconv.Itoa(id)}}.Encode()
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLogin:
		content = a.viewLogin()
	case ScreenHome:
		content = a.searchView.View()
	case ScreenEpisode:
		content = a.episodeView.Render()
	default:
		content = a.spinner.View() + " Loading..."
	}

	return a.wrapWithFrame(content + "\n" + a.renderStatus())
}

func (a *App) viewLogin() string {
	if a.loginScreen == nil {
		return ""
	}
	if a.loading {
		return a.spinner.View() + " Signing in..."
	}
	return a.loginScreen.View()
}

// renderStatus shows the spinner, the latest error, or the latest notification
func (a *App) renderStatus() string {
	switch {
	case a.loading || a.episodeView.Scraping():
		return a.spinner.View() + " " + a.styles.Help.UnsetMarginTop().Render("Working...")
	case a.err != nil:
		return widgets.StatusText(a.err.Error(), widgets.StatusCritical)
	}
	if n, ok := a.deps.Recorder.Last(); ok {
		return widgets.NotificationText(n)
	}
	return ""
}

func (a *App) contentWidth() int {
	return max(a.width, minTerminalWidth) - 4
}

// contentHeight is the height left after header, footer and status line
func (a *App) contentHeight() int {
	return a.height - 4
}

// renderHeader creates the header bar with app branding and session state
func (a *App) renderHeader() string {
	// Guard against zero/small width before WindowSizeMsg is received
	width := max(a.width, minTerminalWidth)

	borderStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(a.palette.Primary)).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(a.palette.Accent))

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Rerng Admin"))

	rightText := ""
	if a.deps.Sessions != nil && a.screen != ScreenLoading {
		state := icons.Lock.String() + " signed out"
		if a.deps.Sessions.IsAuthenticated() {
			state = icons.User.String() + " signed in"
		}
		if a.route != "" {
			state = a.route + "  " + state
		}
		rightText = " " + contextStyle.Render(state) + " "
	}

	fillWidth := max(width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText), 0)
	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"

	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := max(a.width, minTerminalWidth)

	borderStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(a.palette.Primary))
	labelStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(a.palette.Accent))

	var shortcuts []string
	switch a.screen {
	case ScreenLogin:
		shortcuts = []string{"Tab Next", "Enter Submit", "Esc Quit"}
	case ScreenHome:
		shortcuts = []string{"Enter Search", "Tab Results", "^L Logout", "^T Theme"}
	case ScreenEpisode:
		shortcuts = []string{"↑↓ Scroll", "d Sources", "r Reload", "b Back", "^L Logout"}
	default:
		shortcuts = []string{"^C Quit"}
	}

	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
	}
	leftText := " " + strings.Join(styled, "  ") + " "

	rightText := ""
	if !a.lastUpdate.IsZero() && a.screen != ScreenLogin {
		rightText = " " + statusStyle.Render("Updated "+formatTimeSince(a.lastUpdate)) + " "
	}

	fillWidth := max(width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText), 0)
	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"

	return borderStyle.Render(footer)
}

// formatTimeSince formats a duration since the given time in human-readable form
func formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}

	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// navigate creates a command that runs target through the router
func (a *App) navigate(target string) tea.Cmd {
	return func() tea.Msg {
		res, err := a.deps.Router.Navigate(context.Background(), target)
		return navigatedMsg{res: res, err: err}
	}
}

// login creates a command that runs one login attempt
func (a *App) login(creds session.Credentials) tea.Cmd {
	return func() tea.Msg {
		return loginDoneMsg{session: a.deps.Sessions.Login(context.Background(), creds)}
	}
}

// runSearch creates a command that searches series by keyword
func (a *App) runSearch(keyword string) tea.Cmd {
	return func() tea.Msg {
		resp, err := a.deps.Client.Search(context.Background(), keyword)
		if err != nil {
			return searchDoneMsg{keyword: keyword, err: err}
		}
		return searchDoneMsg{keyword: keyword, series: resp.Series}
	}
}

// loadDetail creates a command that fetches one series detail
func (a *App) loadDetail(key string) tea.Cmd {
	return func() tea.Msg {
		resp, err := a.deps.Client.Detail(context.Background(), key)
		if err != nil {
			return detailLoadedMsg{key: key, err: err}
		}
		if len(resp.SeriesDetails) == 0 {
			return detailLoadedMsg{key: key, err: fmt.Errorf("series %s not found", key)}
		}
		return detailLoadedMsg{key: key, detail: &resp.SeriesDetails[0]}
	}
}

// startDeep launches a deep scrape and a listener relaying its progress lines
func (a *App) startDeep(key string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelDeep = cancel
	a.episodeView.StartScrape()

	progress := make(chan string, 16)
	run := func() tea.Msg {
		defer close(progress)
		resp, err := a.deps.Client.DeepDetail(ctx, key, func(line string) {
			select {
			case progress <- line:
			default:
			}
		})
		if err != nil {
			return deepDoneMsg{key: key, err: err}
		}
		if len(resp.SeriesDeepDetails) == 0 {
			return deepDoneMsg{key: key, err: fmt.Errorf("series %s not found", key)}
		}
		return deepDoneMsg{key: key, deep: &resp.SeriesDeepDetails[0]}
	}
	return tea.Batch(run, listenProgress(progress))
}

func listenProgress(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-ch
		if !ok {
			return nil
		}
		return deepProgressMsg{line: line, ch: ch}
	}
}

// Run starts the TUI
func Run(deps Deps) error {
	p := tea.NewProgram(
		New(deps),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
