// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     tui
// Description: Bubbletea model for the dictation terminal UI
// Created:     2026-09-24
// License:     MIT
// ============================================================================

package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/msto63/diktat/internal/history"
	"github.com/msto63/diktat/internal/session"
	"github.com/msto63/diktat/internal/stt"
	"github.com/msto63/diktat/pkg/core/logging"
	"github.com/msto63/diktat/pkg/core/version"
)

// View represents different views in the TUI
type View int

const (
	ViewMain View = iota
	ViewUpload
	ViewHistory
)

// Model is the Bubbletea model of the dictation UI
type Model struct {
	session *session.Session
	status  <-chan string

	// State
	width   int
	height  int
	ready   bool
	booted  bool
	busy    bool
	view    View
	line    string
	err     error
	entries []history.Entry
	cursor  int

	// Components
	output  viewport.Model
	input   textinput.Model
	spinner spinner.Model
}

// New creates a model driving s. The model registers a status listener on s.
func New(s *session.Session) Model {
	ch := make(chan string, 32)
	s.AddStatusListener(func(text string) {
		select {
		case ch <- text:
		default:
		}
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(phosphor)

	in := textinput.New()
	in.Placeholder = "/path/to/audio.wav"
	in.CharLimit = 512

	return Model{
		session: s,
		status:  ch,
		spinner: sp,
		input:   in,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForStatus(),
		m.boot(),
	)
}

func (m Model) waitForStatus() tea.Cmd {
	ch := m.status
	return func() tea.Msg {
		text, ok := <-ch
		if !ok {
			return nil
		}
		return statusMsg(text)
	}
}

func (m Model) boot() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return bootMsg{err: s.Boot(context.Background())}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case hotkeyMsg:
		return m.toggleRecording()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3 // Title + mode tabs
		footerHeight := 5 // Status line + input + help
		height := msg.Height - headerHeight - footerHeight
		if height < 3 {
			height = 3
		}
		if !m.ready {
			m.output = viewport.New(msg.Width-4, height)
			m.ready = true
		} else {
			m.output.Width = msg.Width - 4
			m.output.Height = height
		}
		m.output.SetContent(m.session.Output())

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case statusMsg:
		m.line = string(msg)
		cmds = append(cmds, m.waitForStatus())

	case bootMsg:
		m.booted = msg.err == nil
		m.err = msg.err

	case startedMsg:
		m.err = msg.err

	case outcomeMsg:
		m.busy = false
		m.err = msg.err
		m.output.SetContent(m.session.Output())
		m.output.GotoTop()

	case historyLoadedMsg:
		m.err = msg.err
		m.entries = msg.entries
		if m.cursor >= len(m.entries) {
			m.cursor = len(m.entries) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}

	case actionDoneMsg:
		m.err = msg.err
		m.output.SetContent(m.session.Output())
	}

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.view {
	case ViewUpload:
		return m.handleUploadKey(msg)
	case ViewHistory:
		return m.handleHistoryKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "r", " ":
		return m.toggleRecording()

	case "u":
		if m.session.State() == session.StateRecording || m.busy {
			return m, nil
		}
		m.view = ViewUpload
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case "m":
		next := stt.ModeFast
		if m.session.Mode() == stt.ModeFast {
			next = stt.ModeDeep
		}
		err := m.session.SetMode(next)
		return m, func() tea.Msg { return actionDoneMsg{err: err} }

	case "c":
		err := m.session.Copy()
		return m, func() tea.Msg { return actionDoneMsg{err: err} }

	case "x":
		m.session.Clear()
		m.output.SetContent("")
		return m, nil

	case "h":
		m.view = ViewHistory
		return m, m.loadHistory()

	case "up", "k":
		m.output.LineUp(1)
	case "down", "j":
		m.output.LineDown(1)
	case "pgup":
		m.output.ViewUp()
	case "pgdown":
		m.output.ViewDown()
	}
	return m, nil
}

func (m Model) toggleRecording() (tea.Model, tea.Cmd) {
	s := m.session
	switch s.State() {
	case session.StateRecording:
		m.busy = true
		return m, func() tea.Msg {
			out, err := s.Stop(context.Background())
			return outcomeMsg{outcome: out, err: err}
		}
	case session.StateProcessing:
		return m, nil
	default:
		if !m.booted {
			return m, nil
		}
		return m, func() tea.Msg {
			return startedMsg{err: s.Start(context.Background())}
		}
	}
}

func (m Model) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.view = ViewMain
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		path := strings.TrimSpace(m.input.Value())
		m.view = ViewMain
		m.input.Blur()
		if path == "" {
			return m, nil
		}
		m.busy = true
		return m, m.upload(path)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) upload(path string) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return outcomeMsg{err: fmt.Errorf("read %s: %w", path, err)}
		}
		out, err := s.Upload(context.Background(), filepath.Base(path), data)
		return outcomeMsg{outcome: out, err: err}
	}
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "h", "q":
		m.view = ViewMain
		return m, nil

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}

	case "enter":
		if len(m.entries) == 0 {
			return m, nil
		}
		m.session.SetOutput(m.entries[m.cursor].Display())
		m.output.SetContent(m.session.Output())
		m.output.GotoTop()
		m.view = ViewMain

	case "d", "delete":
		if len(m.entries) == 0 || m.session.History() == nil {
			return m, nil
		}
		id := m.entries[m.cursor].ID
		store := m.session.History()
		return m, func() tea.Msg {
			ctx := context.Background()
			if err := store.Delete(ctx, id); err != nil {
				return historyLoadedMsg{err: err}
			}
			entries, err := store.List(ctx)
			return historyLoadedMsg{entries: entries, err: err}
		}
	}
	return m, nil
}

func (m Model) loadHistory() tea.Cmd {
	store := m.session.History()
	return func() tea.Msg {
		if store == nil {
			return historyLoadedMsg{err: errors.New("history is disabled")}
		}
		entries, err := store.List(context.Background())
		return historyLoadedMsg{entries: entries, err: err}
	}
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Lade Diktat..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.view {
	case ViewHistory:
		b.WriteString(m.renderHistory())
	default:
		b.WriteString(m.renderOutput())
	}
	b.WriteString("\n")

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")

	if m.view == ViewUpload {
		b.WriteString(FocusedInputStyle.Render(m.input.View()))
		b.WriteString("\n")
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	title := TitleStyle.Render("Diktat") + " " + SubtitleStyle.Render("v"+version.Version)

	var tabs []string
	for _, mode := range m.session.Modes() {
		label := mode.Label()
		if mode == m.session.Mode() {
			tabs = append(tabs, ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, TabStyle.Render(label))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) renderOutput() string {
	style := BoxStyle
	if m.session.State() == session.StateRecording {
		style = RecordingBoxStyle
	}
	return style.Width(m.width - 2).Render(m.output.View())
}

func (m Model) renderHistory() string {
	if len(m.entries) == 0 {
		return BoxStyle.Width(m.width - 2).Render(SubtitleStyle.Render("Keine Transkriptionen gespeichert."))
	}

	var lines []string
	for i, e := range m.entries {
		line := e.Date + "  " + e.Preview(m.width-30)
		if e.HasSummary() {
			line += " " + SummaryTagStyle.Render("[SUMMARY]")
		}
		if i == m.cursor {
			lines = append(lines, SelectedMenuItemStyle.Render("> "+line))
		} else {
			lines = append(lines, MenuItemStyle.Render("  "+line))
		}
	}
	return BoxStyle.Width(m.width - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) renderStatusLine() string {
	state := m.session.State()
	prefix := state.Icon() + " "
	if m.busy || state == session.StateProcessing {
		prefix = m.spinner.View() + " "
	}

	line := prefix + RenderStatus(m.line)
	if m.err != nil {
		line += "  " + StatusErrorStyle.Render("Fehler: "+m.err.Error())
	}
	return StatusBarStyle.Width(m.width).Render(line)
}

func (m Model) renderHelp() string {
	switch m.view {
	case ViewUpload:
		return RenderHelp("Enter: transkribieren • Esc: abbrechen")
	case ViewHistory:
		return RenderHelp("↑/↓: auswählen • Enter: anzeigen • d: löschen • Esc: zurück")
	}
	return RenderHelp("r/Leertaste: Aufnahme • u: Datei • m: Modus • c: kopieren • x: leeren • h: Verlauf • q: beenden")
}

// Options configures Run
type Options struct {
	// GlobalHotkey registers Ctrl+Shift+M as a system-wide record toggle
	GlobalHotkey bool

	Logger *logging.Logger
}

// Run starts the TUI program
func Run(s *session.Session, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	p := tea.NewProgram(New(s), tea.WithAltScreen())

	if opts.GlobalHotkey {
		release, err := registerHotkey(p, opts.Logger)
		if err != nil {
			opts.Logger.Warn("Global hotkey not available", "error", err)
		} else {
			defer release()
		}
	}

	_, err := p.Run()
	return err
}
