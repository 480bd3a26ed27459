// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     stt
// Description: Speech-to-Text engines and the transcription orchestrator
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package stt

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotReady is returned when the engine has not been loaded yet
	ErrNotReady = errors.New("stt: transcription engine not loaded")

	// ErrTranscriptionFailed wraps any engine failure
	ErrTranscriptionFailed = errors.New("stt: transcription failed")
)

// Mode selects the engine a recording is transcribed with
type Mode string

const (
	// ModeDeep uses the accurate engine; results may be summarized and saved
	ModeDeep Mode = "deep"

	// ModeFast uses the lighter engine; results are only shown
	ModeFast Mode = "fast"
)

// ParseMode parses "fast" or "deep"
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDeep, ModeFast:
		return Mode(s), nil
	}
	return "", errors.New("unknown mode: " + s)
}

// Label returns the upper-case name used in status lines
func (m Mode) Label() string {
	if m == ModeFast {
		return "FAST MODE"
	}
	return "DEEP MODE"
}

// Options controls how long audio is split before it reaches the engine
type Options struct {
	ChunkLengthSeconds  float64
	StrideLengthSeconds float64
}

// DefaultOptions returns 30 second windows with a 5 second stride
func DefaultOptions() Options {
	return Options{
		ChunkLengthSeconds:  30,
		StrideLengthSeconds: 5,
	}
}

// Engine transcribes one window of 16 kHz mono audio
type Engine interface {
	// Transcribe converts audio samples to text
	Transcribe(ctx context.Context, samples []float32) (string, error)

	// Name identifies the engine in logs and health reports
	Name() string

	// Close releases resources
	Close() error
}

// Transcriber transcribes a complete recording of 16 kHz mono audio
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, opts Options) (string, error)
	Name() string
	Close() error
}

// Transcript is the text produced for one recording
type Transcript struct {
	Text      string
	Mode      Mode
	CreatedAt time.Time
}
