package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/msto63/diktat/internal/session"
	"golang.design/x/hotkey"
)

func TestForwardKeydowns(t *testing.T) {
	events := make(chan hotkey.Event, 2)
	done := make(chan struct{})
	var got []tea.Msg

	events <- hotkey.Event{}
	events <- hotkey.Event{}
	close(events)
	forwardKeydowns(events, done, func(msg tea.Msg) { got = append(got, msg) })

	if len(got) != 2 {
		t.Fatalf("forwarded %d messages, want 2", len(got))
	}
	if _, ok := got[0].(hotkeyMsg); !ok {
		t.Errorf("message type = %T, want hotkeyMsg", got[0])
	}
}

func TestForwardKeydowns_Done(t *testing.T) {
	events := make(chan hotkey.Event)
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		forwardKeydowns(events, done, func(tea.Msg) {})
		close(finished)
	}()
	close(done)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("forwardKeydowns did not return after done")
	}
}

func TestModel_HotkeyTogglesRecording(t *testing.T) {
	m, s, _ := newTestModel(t)
	next, _ := m.Update(bootMsg{})
	m = next.(Model)

	next, cmd := m.Update(hotkeyMsg{})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("hotkeyMsg returned no command")
	}
	next, _ = m.Update(cmd())
	m = next.(Model)
	if s.State() != session.StateRecording {
		t.Fatalf("State() = %v, want recording", s.State())
	}

	_, cmd = m.Update(hotkeyMsg{})
	if cmd == nil {
		t.Fatal("second hotkeyMsg returned no command")
	}
	cmd()
	if s.State() != session.StateIdle {
		t.Errorf("State() = %v, want idle", s.State())
	}
}
