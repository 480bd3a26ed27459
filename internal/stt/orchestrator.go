// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     stt
// Description: Lazy engine loading and inline transcription errors
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package stt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/msto63/diktat/pkg/core/logging"
)

// Inline texts placed in the output in place of a transcript
const (
	InlineNotLoaded = "ERROR: AI CORE NOT LOADED."
	inlineFailed    = "// TRANSCRIPTION ERROR: %s //"
)

// LoadFunc builds a Transcriber; it is called until it succeeds once
type LoadFunc func(ctx context.Context) (Transcriber, error)

// Result is the outcome of one orchestrated transcription. Exactly one of
// Transcript and Inline is set; Err carries the kind of failure.
type Result struct {
	Transcript *Transcript
	Inline     string
	Err        error
	Duration   time.Duration
}

// Text returns the transcript text or the inline error text
func (r Result) Text() string {
	if r.Transcript != nil {
		return r.Transcript.Text
	}
	return r.Inline
}

// OK reports whether a transcript was produced
func (r Result) OK() bool {
	return r.Transcript != nil
}

// Orchestrator owns one transcription engine for one mode and turns its
// failures into inline results
type Orchestrator struct {
	mu     sync.Mutex
	mode   Mode
	load   LoadFunc
	engine Transcriber
	logger *logging.Logger
	now    func() time.Time
}

// NewOrchestrator creates an orchestrator; the engine is built on Load
func NewOrchestrator(mode Mode, load LoadFunc, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Orchestrator{
		mode:   mode,
		load:   load,
		logger: logger.With("mode", string(mode)),
		now:    time.Now,
	}
}

// NewReadyOrchestrator wraps an already built Transcriber
func NewReadyOrchestrator(mode Mode, t Transcriber, logger *logging.Logger) *Orchestrator {
	o := NewOrchestrator(mode, func(context.Context) (Transcriber, error) { return t, nil }, logger)
	o.engine = t
	return o
}

// Mode returns the mode this orchestrator serves
func (o *Orchestrator) Mode() Mode {
	return o.mode
}

// Load builds the engine once. A failed load is not remembered.
func (o *Orchestrator) Load(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.engine != nil {
		return nil
	}
	if o.load == nil {
		return ErrNotReady
	}

	start := time.Now()
	t, err := o.load(ctx)
	if err != nil {
		o.logger.Error("Failed to load transcription engine", "error", err)
		return fmt.Errorf("load transcription engine: %w", err)
	}
	o.engine = t
	o.logger.Info("Transcription engine loaded", "engine", t.Name(), "took", time.Since(start).String())
	return nil
}

// Ready reports whether the engine is loaded
func (o *Orchestrator) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.engine != nil
}

// EngineName returns the loaded engine's name or ""
func (o *Orchestrator) EngineName() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.engine == nil {
		return ""
	}
	return o.engine.Name()
}

// Transcribe runs the engine once over 16 kHz samples. It never returns an
// error; failures become inline results.
func (o *Orchestrator) Transcribe(ctx context.Context, samples []float32, opts Options) Result {
	o.mu.Lock()
	engine := o.engine
	o.mu.Unlock()

	if engine == nil {
		return Result{Inline: InlineNotLoaded, Err: ErrNotReady}
	}

	start := time.Now()
	text, err := engine.Transcribe(ctx, samples, opts)
	took := time.Since(start)
	if err != nil {
		o.logger.Error("Transcription failed", "engine", engine.Name(), "error", err)
		return Result{
			Inline:   fmt.Sprintf(inlineFailed, err.Error()),
			Err:      errors.Join(ErrTranscriptionFailed, err),
			Duration: took,
		}
	}

	o.logger.Debug("Transcription finished", "engine", engine.Name(), "chars", len(text), "took", took.String())
	return Result{
		Transcript: &Transcript{Text: text, Mode: o.mode, CreatedAt: o.now()},
		Duration:   took,
	}
}

// Close releases the engine
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.engine == nil {
		return nil
	}
	err := o.engine.Close()
	o.engine = nil
	return err
}
