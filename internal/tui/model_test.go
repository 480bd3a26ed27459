package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/msto63/diktat/internal/audio"
	"github.com/msto63/diktat/internal/history"
	"github.com/msto63/diktat/internal/session"
	"github.com/msto63/diktat/internal/stt"
)

type fakeTranscriber struct{ text string }

func (f *fakeTranscriber) Transcribe(ctx context.Context, samples []float32, opts stt.Options) (string, error) {
	return f.text, nil
}
func (f *fakeTranscriber) Name() string { return "fake" }
func (f *fakeTranscriber) Close() error { return nil }

type memClipboard struct{ text string }

func (c *memClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

func newTestModel(t *testing.T) (Model, *session.Session, *history.Store) {
	t.Helper()
	store := history.NewStore(history.NewMemory(), "")
	s, err := session.New(session.Config{
		Source:    &audio.SliceSource{Rate: 16000, Frames: [][]float32{make([]float32, 160)}},
		Deep:      stt.NewReadyOrchestrator(stt.ModeDeep, &fakeTranscriber{text: "deep transcription of the recording"}, nil),
		Fast:      stt.NewReadyOrchestrator(stt.ModeFast, &fakeTranscriber{text: "fast"}, nil),
		History:   store,
		Clipboard: &memClipboard{},
	})
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	m := New(s)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), s, store
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs the returned command once, feeding its message back
func press(m Model, k string) Model {
	next, cmd := m.Update(key(k))
	m = next.(Model)
	if cmd != nil {
		if msg := cmd(); msg != nil {
			next, _ = m.Update(msg)
			m = next.(Model)
		}
	}
	return m
}

func TestModel_Status(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, cmd := m.Update(statusMsg(session.StatusReady))
	m = next.(Model)
	if m.line != session.StatusReady {
		t.Errorf("line = %q, want %q", m.line, session.StatusReady)
	}
	if cmd == nil {
		t.Error("statusMsg did not re-arm the status listener")
	}
}

func TestModel_RecordCycle(t *testing.T) {
	m, s, store := newTestModel(t)

	m = press(m, "r")
	if s.State() != session.StateIdle {
		t.Fatalf("State() before boot = %v, want idle", s.State())
	}

	next, _ := m.Update(bootMsg{})
	m = next.(Model)

	m = press(m, "r")
	if s.State() != session.StateRecording {
		t.Fatalf("State() = %v, want recording", s.State())
	}
	m = press(m, "r")
	if s.State() != session.StateIdle {
		t.Errorf("State() = %v, want idle", s.State())
	}
	if m.busy {
		t.Error("busy after outcome")
	}
	if !strings.Contains(m.output.View(), "deep transcription") {
		t.Errorf("output view = %q", m.output.View())
	}

	entries, _ := store.List(context.Background())
	if len(entries) != 1 {
		t.Errorf("history entries = %d, want 1", len(entries))
	}
}

func TestModel_ModeToggle(t *testing.T) {
	m, s, _ := newTestModel(t)

	m = press(m, "m")
	if s.Mode() != stt.ModeFast {
		t.Errorf("Mode() = %v, want fast", s.Mode())
	}
	m = press(m, "m")
	if s.Mode() != stt.ModeDeep {
		t.Errorf("Mode() = %v, want deep", s.Mode())
	}
	if m.err != nil {
		t.Errorf("err = %v", m.err)
	}
}

func TestModel_History(t *testing.T) {
	m, s, store := newTestModel(t)
	ctx := context.Background()
	sum := "zusammenfassung"
	older, _ := store.Insert(ctx, "the older transcription entry", &sum)
	store.Insert(ctx, "the newer transcription entry", nil)

	m = press(m, "h")
	if m.view != ViewHistory || len(m.entries) != 2 {
		t.Fatalf("view = %v with %d entries, want history with 2", m.view, len(m.entries))
	}
	if !strings.Contains(m.View(), "[SUMMARY]") {
		t.Error("history view is missing the summary tag")
	}

	m = press(m, "down")
	m = press(m, "enter")
	if m.view != ViewMain {
		t.Errorf("view = %v, want main", m.view)
	}
	if s.Output() != older.Display() {
		t.Errorf("Output() = %q, want %q", s.Output(), older.Display())
	}

	m = press(m, "h")
	m = press(m, "d")
	if len(m.entries) != 1 {
		t.Errorf("entries after delete = %d, want 1", len(m.entries))
	}
	m = press(m, "esc")
	if m.view != ViewMain {
		t.Errorf("view = %v, want main", m.view)
	}
}

func TestModel_UploadPrompt(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, _ := m.Update(key("u"))
	m = next.(Model)
	if m.view != ViewUpload {
		t.Fatalf("view = %v, want upload", m.view)
	}
	next, _ = m.Update(key("esc"))
	m = next.(Model)
	if m.view != ViewMain {
		t.Errorf("view = %v, want main", m.view)
	}

	next, _ = m.Update(key("u"))
	m = next.(Model)
	m.input.SetValue("/does/not/exist.wav")
	m = press(m, "enter")
	if m.err == nil || m.busy {
		t.Errorf("err = %v busy = %v, want read error and not busy", m.err, m.busy)
	}
}
