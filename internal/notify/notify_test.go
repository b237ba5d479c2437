// ABOUTME: Tests for notification fan-out and recording
// ABOUTME: Validates Recorder history, Multi ordering, and Writer output

package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rerng-addicted/rerng-admin/internal/theme"
)

func TestRecorder(t *testing.T) {
	var r Recorder

	if _, ok := r.Last(); ok {
		t.Error("expected no notification on empty recorder")
	}

	r.Notify(Notification{Level: LevelSuccess, Message: "ok"})
	r.Notify(Notification{Level: LevelError, Message: "bad"})

	last, ok := r.Last()
	if !ok || last.Message != "bad" {
		t.Errorf("expected last message 'bad', got %+v", last)
	}
	if last.At.IsZero() {
		t.Error("expected timestamp to be filled in")
	}
	if r.Count(LevelError) != 1 || r.Count(LevelSuccess) != 1 {
		t.Errorf("unexpected counts: %+v", r.All())
	}
}

func TestMulti(t *testing.T) {
	var a, b Recorder
	n := Multi(&a, nil, &b)

	n.Notify(Notification{Level: LevelInfo, Message: "hi"})

	if len(a.All()) != 1 || len(b.All()) != 1 {
		t.Error("expected both recorders to receive the notification")
	}
}

func TestWriter(t *testing.T) {
	p, _ := theme.Lookup(theme.DefaultName)
	var buf bytes.Buffer
	w := NewWriter(&buf, theme.NewStyles(p))

	w.Notify(Notification{Level: LevelError, Message: "Login session expired"})

	out := buf.String()
	if !strings.Contains(out, "Login session expired") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "error") {
		t.Errorf("expected level label in output, got %q", out)
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelInfo, "info"},
		{LevelSuccess, "success"},
		{LevelWarning, "warning"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.level.String(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
