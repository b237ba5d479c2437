// ABOUTME: Home screen component for searching series by keyword
// ABOUTME: Shows a keyword input, recent searches, and the result list

package search

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rerng-addicted/rerng-admin/internal/client"
	"github.com/rerng-addicted/rerng-admin/internal/tui/icons"
)

type state int

const (
	stateInput state = iota
	stateBrowse
)

// SubmittedMsg is sent when the user asks for a keyword search
type SubmittedMsg struct {
	Keyword string
}

// SelectedMsg is sent when a series is picked from the results
type SelectedMsg struct {
	Serie client.Serie
}

// Search is the keyword search component
type Search struct {
	recent    []string
	results   []client.Serie
	keyword   string
	searched  bool
	cursor    int
	state     state
	textInput textinput.Model
	err       string
	width     int
	height    int
}

// Styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	dividerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// New creates a search component seeded with recent keywords
func New(recent []string) *Search {
	ti := textinput.New()
	ti.Placeholder = "series title..."
	ti.CharLimit = 128
	ti.Width = 50
	ti.Focus()

	return &Search{
		recent:    recent,
		state:     stateInput,
		textInput: ti,
	}
}

// Init implements tea.Model
func (s *Search) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (s *Search) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s, nil

	case tea.KeyMsg:
		s.err = ""

		switch s.state {
		case stateInput:
			return s.updateInput(msg)
		case stateBrowse:
			return s.updateBrowse(msg)
		}
	}

	if s.state == stateInput {
		var cmd tea.Cmd
		s.textInput, cmd = s.textInput.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Search) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		keyword := strings.TrimSpace(s.textInput.Value())
		if keyword == "" {
			s.err = "Please enter a keyword"
			return s, nil
		}
		return s, submit(keyword)
	case "tab", "down":
		if s.itemCount() > 0 {
			s.state = stateBrowse
			s.cursor = 0
			s.textInput.Blur()
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.textInput, cmd = s.textInput.Update(msg)
	return s, cmd
}

func (s *Search) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
			return s, nil
		}
		return s.focusInput()
	case "down", "j":
		if s.cursor < s.itemCount()-1 {
			s.cursor++
		}
	case "enter":
		return s.selectItem()
	case "/", "tab", "esc":
		return s.focusInput()
	}

	return s, nil
}

func (s *Search) focusInput() (tea.Model, tea.Cmd) {
	s.state = stateInput
	s.textInput.Focus()
	return s, textinput.Blink
}

// itemCount is the number of browsable rows: results once a search ran,
// recent keywords before that
func (s *Search) itemCount() int {
	if s.searched {
		return len(s.results)
	}
	return len(s.recent)
}

func (s *Search) selectItem() (tea.Model, tea.Cmd) {
	if s.cursor < 0 || s.cursor >= s.itemCount() {
		return s, nil
	}
	if s.searched {
		serie := s.results[s.cursor]
		return s, func() tea.Msg { return SelectedMsg{Serie: serie} }
	}
	keyword := s.recent[s.cursor]
	s.textInput.SetValue(keyword)
	return s, submit(keyword)
}

func submit(keyword string) tea.Cmd {
	return func() tea.Msg { return SubmittedMsg{Keyword: keyword} }
}

// SetResults replaces the result list for keyword
func (s *Search) SetResults(keyword string, series []client.Serie) {
	s.keyword = keyword
	s.results = series
	s.searched = true
	s.cursor = 0
	if len(series) > 0 {
		s.state = stateBrowse
		s.textInput.Blur()
	}
}

// SetRecent replaces the recent keyword list
func (s *Search) SetRecent(recent []string) {
	s.recent = recent
}

// SetError sets an error message to display
func (s *Search) SetError(msg string) {
	s.err = msg
}

// Results returns the current result list
func (s *Search) Results() []client.Serie {
	return s.results
}

// Typing reports whether the keyword input has focus
func (s *Search) Typing() bool {
	return s.state == stateInput
}

// View implements tea.Model
func (s *Search) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(icons.Search.String() + " Search series"))
	b.WriteString("\n\n")
	b.WriteString(s.textInput.View())
	b.WriteString("\n\n")

	dividerWidth := min(40, s.width-4)
	if dividerWidth < 1 {
		dividerWidth = 40
	}
	b.WriteString(dividerStyle.Render(strings.Repeat("─", dividerWidth)))
	b.WriteString("\n")

	if s.searched {
		s.viewResults(&b)
	} else {
		s.viewRecent(&b)
	}

	if s.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + s.err))
	}

	return b.String()
}

func (s *Search) viewRecent(b *strings.Builder) {
	if len(s.recent) == 0 {
		b.WriteString(helpStyle.Render("No recent searches"))
		b.WriteString("\n")
		return
	}
	b.WriteString(helpStyle.Render("Recent searches:"))
	b.WriteString("\n")
	for i, kw := range s.recent {
		b.WriteString(s.row(i, kw))
	}
}

func (s *Search) viewResults(b *strings.Builder) {
	if len(s.results) == 0 {
		b.WriteString(helpStyle.Render(fmt.Sprintf("No series found for %q", s.keyword)))
		b.WriteString("\n")
		return
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("%d result(s) for %q:", len(s.results), s.keyword)))
	b.WriteString("\n")
	for i, serie := range s.results {
		line := fmt.Sprintf("%s (%d eps)", serie.Title, serie.EpisodesCount)
		if serie.Label != "" {
			line += " [" + serie.Label + "]"
		}
		b.WriteString(s.row(i, s.truncate(line)))
	}
}

func (s *Search) row(i int, text string) string {
	cursor := "  "
	style := normalStyle
	if s.state == stateBrowse && i == s.cursor {
		cursor = "> "
		style = selectedStyle
	}
	return cursor + style.Render(text) + "\n"
}

func (s *Search) truncate(text string) string {
	limit := s.width - 10
	if s.width <= 20 || len([]rune(text)) <= limit {
		return text
	}
	r := []rune(text)
	return string(r[:limit-3]) + "..."
}
