package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/serisow/studio/apierror"
	"github.com/serisow/studio/job"
	"github.com/serisow/studio/prefs"
	"github.com/serisow/studio/timeline"
)

type fixedSource struct {
	status timeline.Status
}

func (f *fixedSource) Status() timeline.Status {
	return f.status
}

func TestJobViewKeepsPollingWhileBusy(t *testing.T) {
	source := &fixedSource{status: timeline.Status{
		State:    job.StatePolling,
		Progress: job.Estimate(30*time.Second, 120*time.Second),
	}}
	view := NewJobView(source, "a fox in snow", prefs.ThemeLight)

	model, cmd := view.Update(statusMsg(source.Status()))
	m := model.(JobView)
	if m.Settled() {
		t.Fatal("Expected job to be in flight")
	}
	if cmd == nil {
		t.Fatal("Expected a follow-up tick")
	}
	out := m.View()
	if !strings.Contains(out, "Analyzing prompt") {
		t.Errorf("Expected stage label in view, got:\n%s", out)
	}
	if !strings.Contains(out, "about 1m 30s remaining") {
		t.Errorf("Expected remaining time in view, got:\n%s", out)
	}
}

func TestJobViewQuitsWhenSettled(t *testing.T) {
	tests := []struct {
		name     string
		status   timeline.Status
		contains string
	}{
		{
			name:     "Done",
			status:   timeline.Status{State: job.StateDone, Progress: job.Complete()},
			contains: "Your video is ready!",
		},
		{
			name: "Failed",
			status: timeline.Status{
				State: job.StateFailed,
				Error: &apierror.Classification{Category: apierror.CategoryQuotaExceeded, Message: apierror.QuotaMessage},
			},
			contains: "exceeded your API usage quota",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := NewJobView(&fixedSource{status: tt.status}, "scene", prefs.ThemeDark)
			model, cmd := view.Update(statusMsg(tt.status))
			m := model.(JobView)
			if !m.Settled() {
				t.Fatal("Expected job to be settled")
			}
			if cmd == nil {
				t.Fatal("Expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("Expected tea.QuitMsg")
			}
			if !strings.Contains(m.View(), tt.contains) {
				t.Errorf("Expected %q in view", tt.contains)
			}
		})
	}
}

func TestJobViewQuitKey(t *testing.T) {
	view := NewJobView(&fixedSource{}, "scene", prefs.ThemeLight)
	model, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !model.(JobView).quitting || cmd == nil {
		t.Fatal("Expected q to quit")
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in       time.Duration
		expected string
	}{
		{0, "almost done"},
		{-time.Second, "almost done"},
		{42 * time.Second, "about 42s remaining"},
		{125 * time.Second, "about 2m 05s remaining"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.in); got != tt.expected {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}
