// ABOUTME: Login form as a bubbletea model built on huh
// ABOUTME: Collects the identifier and secret and hands them to the session store

package loginform

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rerng-addicted/rerng-admin/internal/session"
	"github.com/rerng-addicted/rerng-admin/internal/theme"
	"github.com/rerng-addicted/rerng-admin/internal/tui/icons"
)

// SubmittedMsg is sent when the form completes
type SubmittedMsg struct {
	Credentials session.Credentials
}

// CancelledMsg is sent when the form is cancelled
type CancelledMsg struct{}

// Form manages the login form flow
type Form struct {
	palette   theme.Palette
	form      *huh.Form
	width     int
	submitted bool

	identifier string
	secret     string
}

// createTheme returns a huh theme built from the active palette
func createTheme(p theme.Palette) *huh.Theme {
	t := huh.ThemeBase()

	primary := lipgloss.Color(p.Primary)
	accent := lipgloss.Color(p.Accent)
	text := lipgloss.Color(p.TextA)
	gray := lipgloss.Color("#9CA3AF")
	red := lipgloss.Color("#F87171")
	slate := lipgloss.Color("#334155")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(primary).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(primary)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(accent).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(primary)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(primary)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(text)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(accent).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(slate).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

// New creates a login form prefilled with identifier
func New(p theme.Palette, identifier string) *Form {
	f := &Form{palette: p, identifier: identifier}
	f.form = f.createForm()
	return f
}

func (f *Form) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(icons.User.String()+" Username or email").
				Placeholder("admin").
				CharLimit(128).
				Value(&f.identifier).
				Validate(validateRequired("username")),
			huh.NewInput().
				Title(icons.Lock.String()+" Password").
				EchoMode(huh.EchoModePassword).
				CharLimit(128).
				Value(&f.secret).
				Validate(validateRequired("password")),
		).Title("Sign in").
			Description("Enter your admin credentials"),
	).WithTheme(createTheme(f.palette)).
		WithShowHelp(false)
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return f, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted && !f.submitted {
		f.submitted = true
		return f, f.complete()
	}

	return f, cmd
}

func (f *Form) complete() tea.Cmd {
	creds := f.Credentials()
	return func() tea.Msg { return SubmittedMsg{Credentials: creds} }
}

// Credentials returns the values entered so far
func (f *Form) Credentials() session.Credentials {
	return session.Credentials{
		Identifier: strings.TrimSpace(f.identifier),
		Secret:     f.secret,
	}
}

// Reset rebuilds the form for another attempt, keeping the identifier
func (f *Form) Reset() tea.Cmd {
	f.secret = ""
	f.submitted = false
	f.form = f.createForm()
	return f.form.Init()
}

// SetPalette rebuilds the form theme for p
func (f *Form) SetPalette(p theme.Palette) {
	f.palette = p
	f.form = f.form.WithTheme(createTheme(p))
}

// View implements tea.Model
func (f *Form) View() string {
	return f.form.View()
}

// Prompt runs a blocking login form outside the full-screen UI
func Prompt(p theme.Palette, identifier string) (session.Credentials, error) {
	f := New(p, identifier)
	if err := f.form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return session.Credentials{}, ErrCancelled
		}
		return session.Credentials{}, err
	}
	return f.Credentials(), nil
}

// ErrCancelled is returned by Prompt when the user aborts the form
var ErrCancelled = errors.New("login cancelled")

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}
