// ABOUTME: User-facing notification side channel for authentication events
// ABOUTME: Provides Notifier implementations for the TUI status bar, CLI output, and tests

package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rerng-addicted/rerng-admin/internal/theme"
)

// Level classifies a notification
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// String returns the string representation of a Level
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is one transient user-visible message
type Notification struct {
	Level   Level
	Title   string
	Message string
	At      time.Time
}

// Notifier receives notifications. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to Notifier
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification
var Discard Notifier = Func(func(Notification) {})

// Multi fans a notification out to every notifier in order
func Multi(notifiers ...Notifier) Notifier {
	return Func(func(n Notification) {
		for _, nt := range notifiers {
			if nt != nil {
				nt.Notify(n)
			}
		}
	})
}

// Recorder keeps every notification it receives
type Recorder struct {
	mu      sync.Mutex
	history []Notification
}

// Notify implements Notifier
func (r *Recorder) Notify(n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	r.mu.Lock()
	r.history = append(r.history, n)
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.history))
	copy(out, r.history)
	return out
}

// Last returns the most recent notification, if any
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return Notification{}, false
	}
	return r.history[len(r.history)-1], true
}

// Count returns how many notifications of level were recorded
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, h := range r.history {
		if h.Level == level {
			n++
		}
	}
	return n
}

// Writer renders notifications as single styled lines
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	styles theme.Styles
}

// NewWriter creates a Writer using the given palette styles
func NewWriter(w io.Writer, styles theme.Styles) *Writer {
	return &Writer{w: w, styles: styles}
}

// Notify implements Notifier
func (w *Writer) Notify(n Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()

	label := w.styleFor(n.Level).Render(n.Level.String())
	if n.Title != "" {
		fmt.Fprintf(w.w, "[%s] %s: %s\n", label, n.Title, n.Message)
		return
	}
	fmt.Fprintf(w.w, "[%s] %s\n", label, n.Message)
}

func (w *Writer) styleFor(level Level) lipgloss.Style {
	switch level {
	case LevelSuccess:
		return w.styles.StatusOK
	case LevelWarning:
		return w.styles.StatusWarning
	case LevelError:
		return w.styles.StatusCritical
	default:
		return w.styles.StatusInfo
	}
}
