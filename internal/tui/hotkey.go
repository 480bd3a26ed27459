package tui

import (
	"fmt"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/msto63/diktat/pkg/core/logging"
	"golang.design/x/hotkey"
)

// HotkeyDescription names the global record toggle
const HotkeyDescription = "Ctrl+Shift+M"

// registerHotkey forwards presses of the global hotkey to p. The returned
// func unregisters it.
func registerHotkey(p *tea.Program, logger *logging.Logger) (func(), error) {
	// hotkey crashes with SIGTRAP under the Objective-C runtime outside the main thread
	if runtime.GOOS == "darwin" {
		return nil, fmt.Errorf("global hotkey not supported on macOS")
	}

	hk := hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyM)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("register %s: %w", HotkeyDescription, err)
	}
	logger.Info("Hotkey registered", "shortcut", HotkeyDescription)

	done := make(chan struct{})
	go func() {
		forwardKeydowns(hk.Keydown(), done, p.Send)
	}()

	return func() {
		close(done)
		if err := hk.Unregister(); err != nil {
			logger.Warn("Failed to unregister hotkey", "error", err)
		}
	}, nil
}

// forwardKeydowns sends one hotkeyMsg per event until events closes or done fires
func forwardKeydowns(events <-chan hotkey.Event, done <-chan struct{}, send func(tea.Msg)) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
			send(hotkeyMsg{})
		case <-done:
			return
		}
	}
}
