// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     session
// Description: Transcription, summary and persistence of one job
// Created:     2026-09-22
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/msto63/diktat/internal/audio"
	"github.com/msto63/diktat/internal/history"
	"github.com/msto63/diktat/internal/stt"
)

// OutcomeKind classifies a finished Stop or Upload
type OutcomeKind string

const (
	// OutcomeEmpty - the recording held no audio; nothing was processed
	OutcomeEmpty OutcomeKind = "empty"

	// OutcomeTranscript - a transcript was produced
	OutcomeTranscript OutcomeKind = "transcript"

	// OutcomeInlineError - the output holds an inline error text
	OutcomeInlineError OutcomeKind = "inline_error"
)

// Outcome describes one processed recording or upload
type Outcome struct {
	JobID string      `json:"job_id"`
	Kind  OutcomeKind `json:"kind"`
	Mode  stt.Mode    `json:"mode"`

	// Text is what was written to the output buffer
	Text    string  `json:"text"`
	Summary *string `json:"summary,omitempty"`

	// SummaryFailed is set when a summary was attempted and not produced
	SummaryFailed bool `json:"summary_failed,omitempty"`

	// Entry is the saved history entry, nil when nothing was saved
	Entry *history.Entry `json:"entry,omitempty"`

	AudioSeconds  float64  `json:"audio_seconds"`
	SpeechRatio   *float64 `json:"speech_ratio,omitempty"`
	DroppedFrames uint64   `json:"dropped_frames,omitempty"`

	// TranscriptionErr is the kind of failure behind an inline error
	TranscriptionErr error `json:"-"`
}

// job is one unit of processing: a flushed recording or a decoded upload
type job struct {
	id      string
	source  string // mic, upload
	name    string
	mode    stt.Mode
	samples []float32
	rate    int
}

// run takes a job from StateProcessing back to StateIdle. The steps run in
// order on the calling goroutine; inference is not cancelled with ctx.
func (s *Session) run(ctx context.Context, j job) (Outcome, error) {
	defer s.finish()

	ctx = context.WithoutCancel(ctx)
	logger := s.logger.With("job", j.id, "source", j.source, "mode", string(j.mode))
	s.metrics.Recordings.WithLabelValues(j.source, string(j.mode)).Inc()

	out := Outcome{
		JobID:        j.id,
		Mode:         j.mode,
		AudioSeconds: audio.Duration(len(j.samples), j.rate),
	}
	s.metrics.AudioSeconds.Observe(out.AudioSeconds)

	start := time.Now()
	samples := audio.Resample(j.samples, j.rate, audio.TargetSampleRate)
	s.metrics.ResampleDuration.Observe(time.Since(start).Seconds())
	logger.Debug("Audio resampled", "from", j.rate, "samples", len(samples))

	if s.vad != nil {
		if res, err := s.vad.Analyze(samples); err != nil {
			logger.Warn("Speech activity analysis failed", "error", err)
		} else if res.Frames > 0 {
			ratio := res.Ratio()
			out.SpeechRatio = &ratio
			s.metrics.SpeechRatio.Observe(ratio)
			logger.Debug("Speech activity", "frames", res.Frames, "voiced", res.Voiced)
		}
	}

	result := s.engines[j.mode].Transcribe(ctx, samples, s.opts)
	s.metrics.TranscriptionDuration.WithLabelValues(string(j.mode)).Observe(result.Duration.Seconds())
	out.Text = result.Text()
	s.SetOutput(out.Text)

	if j.source == "upload" {
		s.emit(statusFileComplete(j.name))
	}

	if !result.OK() {
		out.Kind = OutcomeInlineError
		out.TranscriptionErr = result.Err
		reason := "failed"
		if errors.Is(result.Err, stt.ErrNotReady) {
			reason = "not_ready"
		}
		s.metrics.TranscriptionFailures.WithLabelValues(string(j.mode), reason).Inc()
		logger.Warn("Transcription produced no transcript", "error", result.Err)
		s.emit(result.Inline)
		return out, nil
	}

	out.Kind = OutcomeTranscript
	logger.Info("Transcription finished", "chars", len(out.Text), "took", result.Duration.String())

	if err := s.complete(ctx, &out); err != nil {
		logger.Error("Failed to save transcription", "error", err)
		return out, err
	}
	return out, nil
}

// complete summarizes and saves a deep mode transcript
func (s *Session) complete(ctx context.Context, out *Outcome) error {
	if out.Mode != stt.ModeDeep || s.history == nil || !history.LongEnough(out.Text) {
		s.emit(StatusComplete)
		return nil
	}

	if s.gate != nil && s.gate.Long(out.Text) {
		s.emit(StatusSummarizing)
		if !s.gate.Loaded() {
			s.emit(StatusLoadingSummary)
		}
		d := s.gate.MaybeSummarize(ctx, out.Text)
		out.Summary = d.Summary
		out.SummaryFailed = d.Degraded()
		switch {
		case d.Summary != nil:
			s.metrics.Summaries.WithLabelValues("ok").Inc()
		case d.Degraded():
			s.metrics.Summaries.WithLabelValues("failed").Inc()
		}
	}

	entry, err := s.history.Insert(ctx, out.Text, out.Summary)
	if err != nil {
		s.metrics.HistoryFailures.Inc()
		s.emit(statusSaveFailed(err))
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.metrics.HistoryWrites.Inc()
	out.Entry = &entry

	switch {
	case out.Summary != nil:
		s.emit(StatusSavedWithSummary)
	case out.SummaryFailed:
		s.emit(StatusSummaryFailed)
	default:
		s.emit(StatusSaved)
	}
	return nil
}
