package tui

import (
	"github.com/msto63/diktat/internal/history"
	"github.com/msto63/diktat/internal/session"
)

// Message types for tea.Cmd async operations

// statusMsg carries one status line from the session
type statusMsg string

// bootMsg is sent when the engines finished loading
type bootMsg struct {
	err error
}

// startedMsg is sent when a recording started or failed to start
type startedMsg struct {
	err error
}

// outcomeMsg is sent when a recording or upload finished processing
type outcomeMsg struct {
	outcome session.Outcome
	err     error
}

// historyLoadedMsg is sent when the history list was read
type historyLoadedMsg struct {
	entries []history.Entry
	err     error
}

// actionDoneMsg reports a finished short action (copy, delete, mode)
type actionDoneMsg struct {
	err error
}

// hotkeyMsg is sent when the global record hotkey was pressed
type hotkeyMsg struct{}
