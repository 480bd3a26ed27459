// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     session
// Description: Recording session - start, stop, upload and output buffer
// Created:     2026-09-22
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/msto63/diktat/internal/audio"
	"github.com/msto63/diktat/internal/history"
	"github.com/msto63/diktat/internal/metrics"
	"github.com/msto63/diktat/internal/stt"
	"github.com/msto63/diktat/internal/summarize"
	"github.com/msto63/diktat/internal/vad"
	"github.com/msto63/diktat/pkg/core/logging"
)

// Config wires the session to its capabilities. Source and Deep are
// required; every other field may be left empty.
type Config struct {
	Source audio.Source

	// Deep and Fast transcribe recordings in the respective mode
	Deep *stt.Orchestrator
	Fast *stt.Orchestrator

	Gate      *summarize.Gate
	History   *history.Store
	VAD       vad.Analyzer
	Clipboard Clipboard
	Metrics   *metrics.Metrics
	Logger    *logging.Logger

	// Options are passed to every transcription
	Options stt.Options

	// Mode is the initial mode; empty means deep
	Mode stt.Mode
}

// Session owns one recording at a time and runs each finished recording
// through transcription, summarization and history
type Session struct {
	source    audio.Source
	engines   map[stt.Mode]*stt.Orchestrator
	gate      *summarize.Gate
	history   *history.Store
	vad       vad.Analyzer
	clipboard Clipboard
	metrics   *metrics.Metrics
	logger    *logging.Logger
	opts      stt.Options
	sm        *StateMachine

	// mu serializes state changes; it is never held across Acquire,
	// a flush or a job
	mu     sync.Mutex
	mode   stt.Mode
	rec    *recording
	output string
	status string

	// acquiring claims the recording slot while the source opens
	acquiring bool
	closed    bool

	listenMu  sync.RWMutex
	listeners []StatusListener
}

// recording is the capture side of one Start/Stop pair
type recording struct {
	jobID  string
	stream audio.Stream
	actor  *audio.Actor
	cancel context.CancelFunc
}

// New creates a session in StateIdle
func New(cfg Config) (*Session, error) {
	if cfg.Source == nil {
		return nil, errors.New("session: capture source is required")
	}
	if cfg.Deep == nil {
		return nil, errors.New("session: deep transcription engine is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = SystemClipboard{}
	}
	if cfg.Options.ChunkLengthSeconds <= 0 {
		cfg.Options = stt.DefaultOptions()
	}
	if cfg.Mode == "" {
		cfg.Mode = stt.ModeDeep
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}

	engines := map[stt.Mode]*stt.Orchestrator{stt.ModeDeep: cfg.Deep}
	if cfg.Fast != nil {
		engines[stt.ModeFast] = cfg.Fast
	}
	if engines[cfg.Mode] == nil {
		return nil, fmt.Errorf("%w: %s", ErrModeUnavailable, cfg.Mode)
	}

	return &Session{
		source:    cfg.Source,
		engines:   engines,
		gate:      cfg.Gate,
		history:   cfg.History,
		vad:       cfg.VAD,
		clipboard: cfg.Clipboard,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		opts:      cfg.Options,
		sm:        NewStateMachine(),
		mode:      cfg.Mode,
	}, nil
}

// AddStatusListener registers fn for every status line
func (s *Session) AddStatusListener(fn StatusListener) {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// AddStateListener registers fn for every state transition
func (s *Session) AddStateListener(fn StateChangeListener) {
	s.sm.AddListener(fn)
}

func (s *Session) emit(text string) {
	s.mu.Lock()
	s.status = text
	s.mu.Unlock()

	s.listenMu.RLock()
	listeners := s.listeners
	s.listenMu.RUnlock()
	for _, fn := range listeners {
		fn(text)
	}
}

// Boot loads the transcription engines. The deep engine must load; a fast
// engine that fails is logged and the mode stays unavailable until it loads.
func (s *Session) Boot(ctx context.Context) error {
	s.emit(StatusBoot)

	if err := s.engines[stt.ModeDeep].Load(ctx); err != nil {
		s.emit(stt.InlineNotLoaded)
		return err
	}
	if fast := s.engines[stt.ModeFast]; fast != nil {
		if err := fast.Load(ctx); err != nil {
			s.logger.Warn("Fast engine not loaded", "error", err)
		}
	}

	s.emit(StatusReady)
	return nil
}

// State returns the current state
func (s *Session) State() State {
	return s.sm.Current()
}

// Mode returns the active mode
func (s *Session) Mode() stt.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Modes lists the configured modes
func (s *Session) Modes() []stt.Mode {
	modes := []stt.Mode{stt.ModeDeep}
	if s.engines[stt.ModeFast] != nil {
		modes = append(modes, stt.ModeFast)
	}
	return modes
}

// SetMode selects the engine for the next recording or upload
func (s *Session) SetMode(mode stt.Mode) error {
	s.mu.Lock()
	if s.engines[mode] == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrModeUnavailable, mode)
	}
	if s.acquiring || s.sm.IsActive() {
		s.mu.Unlock()
		return ErrBusy
	}
	s.mode = mode
	s.mu.Unlock()

	s.logger.Info("Mode changed", "mode", string(mode))
	s.emit(statusStandby(mode))
	return nil
}

// Start begins a recording from the capture source. A Start, Upload or
// mode change while the source is still opening gets ErrBusy.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.acquiring || !s.sm.CanTransition(StateRecording) {
		s.mu.Unlock()
		return ErrBusy
	}
	s.acquiring = true
	s.mu.Unlock()

	stream, err := s.source.Acquire(ctx)

	s.mu.Lock()
	s.acquiring = false
	if err != nil {
		s.sm.Fail(ReasonResourceDenied)
		s.mu.Unlock()

		s.logger.Error("Failed to acquire capture source", "error", err)
		s.emit(StatusMicDenied)
		if !errors.Is(err, audio.ErrResourceDenied) {
			err = errors.Join(audio.ErrResourceDenied, err)
		}
		return fmt.Errorf("start recording: %w", err)
	}
	if s.closed {
		s.mu.Unlock()
		if cerr := stream.Close(); cerr != nil {
			s.logger.Warn("Failed to release capture source", "error", cerr)
		}
		return ErrClosed
	}

	// The actor outlives the caller's context; Stop or Close ends it
	actorCtx, cancel := context.WithCancel(context.Background())
	actor := audio.NewActor(stream.Frames())
	actor.Send(audio.Command{Command: audio.CommandStart})
	go actor.Run(actorCtx)

	rec := &recording{
		jobID:  uuid.NewString(),
		stream: stream,
		actor:  actor,
		cancel: cancel,
	}
	s.rec = rec
	s.sm.Transition(StateRecording)
	mode := s.mode
	s.mu.Unlock()

	s.logger.Info("Recording started", "job", rec.jobID, "mode", string(mode), "sample_rate", stream.SampleRate())
	s.emit(statusListening(mode))
	return nil
}

// Stop ends the recording and processes the captured audio. It returns
// when the result is in the output buffer and, in deep mode, saved.
func (s *Session) Stop(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.sm.Current() != StateRecording || s.rec == nil {
		s.mu.Unlock()
		return Outcome{}, ErrNotRecording
	}
	// Clearing rec keeps the state at recording, so other commands stay
	// rejected while the buffer drains without the lock
	rec := s.rec
	s.rec = nil
	mode := s.mode
	s.mu.Unlock()

	samples, err := rec.flush(ctx)
	rate := rec.stream.SampleRate()
	dropped := rec.stream.Dropped()
	if cerr := rec.stream.Close(); cerr != nil {
		s.logger.Warn("Failed to release capture source", "error", cerr)
	}
	rec.cancel()

	s.mu.Lock()
	if err != nil || len(samples) == 0 {
		s.sm.Transition(StateIdle)
		s.mu.Unlock()
		s.emit(statusStandby(mode))
		if err != nil {
			return Outcome{}, fmt.Errorf("stop recording: %w", err)
		}
		s.logger.Info("Recording was empty", "job", rec.jobID)
		s.metrics.EmptyRecordings.Inc()
		s.emit(StatusEmpty)
		return Outcome{JobID: rec.jobID, Kind: OutcomeEmpty, Mode: mode, DroppedFrames: dropped}, nil
	}

	s.sm.Transition(StateProcessing)
	s.mu.Unlock()

	s.emit(statusStandby(mode))
	s.emit(StatusProcessing)
	s.metrics.DroppedFrames.Add(float64(dropped))

	j := job{id: rec.jobID, source: "mic", mode: mode, samples: samples, rate: rate}
	out, err := s.run(ctx, j)
	out.DroppedFrames = dropped
	return out, err
}

// flush asks the actor for the buffer and waits for it
func (r *recording) flush(ctx context.Context) ([]float32, error) {
	r.actor.Send(audio.Command{Command: audio.CommandStop})
	select {
	case f := <-r.actor.Flushed():
		return f.Buffer, nil
	case <-r.actor.Done():
		select {
		case f := <-r.actor.Flushed():
			return f.Buffer, nil
		default:
			return nil, errors.New("capture stopped without a buffer")
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Upload transcribes an audio file (WAV, FLAC or MP3)
func (s *Session) Upload(ctx context.Context, name string, data []byte) (Outcome, error) {
	s.mu.Lock()
	if s.acquiring || !s.sm.CanTransition(StateProcessing) || s.sm.Current() == StateRecording {
		s.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	s.sm.Transition(StateProcessing)
	mode := s.mode
	s.mu.Unlock()

	jobID := uuid.NewString()
	s.emit(statusTranscribingFile(name))

	decoded, err := audio.Decode(name, data)
	if err != nil {
		s.logger.Error("Failed to decode upload", "job", jobID, "file", name, "error", err)
		s.finish()
		s.emit(statusFileFailed(name))
		return Outcome{}, fmt.Errorf("%w %q: %w", ErrInvalidAudio, name, err)
	}

	s.logger.Info("Upload decoded", "job", jobID, "file", name,
		"sample_rate", decoded.SampleRate, "channels", decoded.Channels, "samples", len(decoded.Samples))

	j := job{id: jobID, source: "upload", name: name, mode: mode, samples: decoded.Samples, rate: decoded.SampleRate}
	return s.run(ctx, j)
}

// finish ends a job
func (s *Session) finish() {
	s.mu.Lock()
	s.sm.Transition(StateIdle)
	s.mu.Unlock()
}

// Output returns the output buffer
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

// SetOutput replaces the output buffer, e.g. with a history entry
func (s *Session) SetOutput(text string) {
	s.mu.Lock()
	s.output = text
	s.mu.Unlock()
}

// ShowEntry loads a history entry into the output buffer
func (s *Session) ShowEntry(ctx context.Context, id int64) (history.Entry, error) {
	if s.history == nil {
		return history.Entry{}, history.ErrNotFound
	}
	e, err := s.history.Get(ctx, id)
	if err != nil {
		return history.Entry{}, err
	}
	s.SetOutput(e.Display())
	return e, nil
}

// Clear empties the output buffer
func (s *Session) Clear() {
	s.SetOutput("")
	s.emit(StatusCleared)
}

// Copy puts the output buffer on the clipboard
func (s *Session) Copy() error {
	text := s.Output()
	if text == "" {
		return ErrNoOutput
	}
	if err := s.clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	s.emit(StatusCopied)
	return nil
}

// History returns the history store, nil when persistence is disabled
func (s *Session) History() *history.Store {
	return s.history
}

// Snapshot is a point-in-time view for status displays
type Snapshot struct {
	State            string   `json:"state"`
	Reason           string   `json:"reason,omitempty"`
	Mode             stt.Mode `json:"mode"`
	Status           string   `json:"status"`
	Ready            bool     `json:"ready"`
	SummarizerLoaded bool     `json:"summarizer_loaded"`
	Output           string   `json:"output"`
}

// Snapshot returns the current state, mode, status line and output
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:  s.sm.Current().String(),
		Reason: s.sm.Reason(),
		Mode:   s.mode,
		Status: s.status,
		Ready:  s.engines[s.mode].Ready(),
		Output: s.output,
	}
	if s.gate != nil {
		snap.SummarizerLoaded = s.gate.Loaded()
	}
	return snap
}

// Ready reports whether the active mode's engine is loaded
func (s *Session) Ready() bool {
	return s.engines[s.Mode()].Ready()
}

// Close stops a running recording without processing it and releases the engines
func (s *Session) Close() error {
	var errs []error

	s.mu.Lock()
	s.closed = true
	if rec := s.rec; rec != nil {
		rec.cancel()
		if err := rec.stream.Close(); err != nil {
			s.logger.Warn("Failed to release capture source", "error", err)
			errs = append(errs, fmt.Errorf("release capture source: %w", err))
		}
		s.rec = nil
		s.sm.Transition(StateIdle)
	}
	s.mu.Unlock()

	for _, o := range s.engines {
		errs = append(errs, o.Close())
	}
	if s.vad != nil {
		errs = append(errs, s.vad.Close())
	}
	return errors.Join(errs...)
}
