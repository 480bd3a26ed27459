// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     session
// Description: Recording session - State Machine
// Created:     2026-09-22
// License:     MIT
// ============================================================================

package session

import (
	"slices"
	"sync"
	"time"
)

// State represents the current state of the recording session
type State int

const (
	// StateIdle - Ready for a recording or an upload
	StateIdle State = iota

	// StateRecording - Capturing audio from the source
	StateRecording

	// StateProcessing - Transcribing, summarizing and saving one job
	StateProcessing

	// StateError - Capture could not be started; a new start may be tried
	StateError
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Icon returns an icon for the state
func (s State) Icon() string {
	switch s {
	case StateIdle:
		return "⏸"
	case StateRecording:
		return "🎤"
	case StateProcessing:
		return "⚙️"
	case StateError:
		return "❌"
	default:
		return "?"
	}
}

// Reasons stored with StateError
const (
	ReasonResourceDenied = "resource denied"
)

// StateChangeListener observes every accepted transition
type StateChangeListener func(from, to State)

// StateMachine manages state transitions
type StateMachine struct {
	mu        sync.RWMutex
	state     State
	reason    string
	enteredAt time.Time
	listeners []StateChangeListener
}

// NewStateMachine creates a new state machine in StateIdle
func NewStateMachine() *StateMachine {
	return &StateMachine{
		state:     StateIdle,
		enteredAt: time.Now(),
	}
}

// Current returns the current state
func (m *StateMachine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Reason returns the error reason while in StateError
func (m *StateMachine) Reason() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reason
}

// StateDuration returns how long we've been in the current state
func (m *StateMachine) StateDuration() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Since(m.enteredAt)
}

// CanTransition reports whether newState is reachable from the current state
func (m *StateMachine) CanTransition(newState State) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return isValidTransition(m.state, newState)
}

// Transition changes to a new state
func (m *StateMachine) Transition(newState State) bool {
	return m.transition(newState, "")
}

// Fail moves to StateError with reason
func (m *StateMachine) Fail(reason string) bool {
	return m.transition(StateError, reason)
}

func (m *StateMachine) transition(to State, reason string) bool {
	m.mu.Lock()
	from := m.state
	if !isValidTransition(from, to) {
		m.mu.Unlock()
		return false
	}
	m.state, m.reason, m.enteredAt = to, reason, time.Now()
	listeners := m.listeners
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(from, to)
	}
	return true
}

// AddListener adds a state change listener
func (m *StateMachine) AddListener(listener StateChangeListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, listener)
}

var validTransitions = map[State][]State{
	StateIdle:       {StateRecording, StateProcessing, StateError},
	StateRecording:  {StateProcessing, StateIdle},
	StateProcessing: {StateIdle},
	StateError:      {StateRecording, StateProcessing, StateIdle},
}

func isValidTransition(from, to State) bool {
	return slices.Contains(validTransitions[from], to)
}

// IsActive returns true while a recording or job is in progress
func (m *StateMachine) IsActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateRecording || m.state == StateProcessing
}
