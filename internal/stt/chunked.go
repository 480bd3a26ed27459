// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     stt
// Description: Windowed transcription with overlap merging
// Created:     2026-09-22
// License:     MIT
// ============================================================================

package stt

import (
	"context"
	"strings"
	"unicode"

	"github.com/msto63/diktat/internal/audio"
)

// Chunked applies windowing options on top of an Engine. Windows are
// ChunkLength seconds long and advance by ChunkLength - 2*Stride seconds;
// neighbouring window texts are joined by dropping their longest common
// word run.
type Chunked struct {
	engine Engine
}

// NewChunked wraps engine
func NewChunked(engine Engine) *Chunked {
	return &Chunked{engine: engine}
}

// Transcribe implements Transcriber
func (c *Chunked) Transcribe(ctx context.Context, samples []float32, opts Options) (string, error) {
	window, step := windowSizes(opts)
	if window <= 0 || len(samples) <= window {
		return c.engine.Transcribe(ctx, samples)
	}

	var merged []string
	for start := 0; start < len(samples); start += step {
		end := start + window
		if end > len(samples) {
			end = len(samples)
		}

		text, err := c.engine.Transcribe(ctx, samples[start:end])
		if err != nil {
			return "", err
		}
		merged = mergeWords(merged, strings.Fields(text))

		if end == len(samples) {
			break
		}
	}

	return strings.Join(merged, " "), nil
}

// Name implements Transcriber
func (c *Chunked) Name() string { return c.engine.Name() }

// Close implements Transcriber
func (c *Chunked) Close() error { return c.engine.Close() }

// windowSizes returns window and step lengths in samples at 16 kHz
func windowSizes(opts Options) (int, int) {
	window := int(opts.ChunkLengthSeconds * audio.TargetSampleRate)
	step := int((opts.ChunkLengthSeconds - 2*opts.StrideLengthSeconds) * audio.TargetSampleRate)
	if step <= 0 {
		step = window
	}
	return window, step
}

// mergeWords appends next to prev, skipping the longest prefix of next that
// repeats a suffix of prev
func mergeWords(prev, next []string) []string {
	limit := len(prev)
	if len(next) < limit {
		limit = len(next)
	}

	overlap := 0
	for k := limit; k > 0; k-- {
		if wordsEqual(prev[len(prev)-k:], next[:k]) {
			overlap = k
			break
		}
	}

	return append(prev, next[overlap:]...)
}

func wordsEqual(a, b []string) bool {
	for i := range a {
		if !wordEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// wordEqual ignores case and surrounding punctuation. Words made only of
// punctuation normalize to nothing and must match exactly.
func wordEqual(a, b string) bool {
	na, nb := normalizeWord(a), normalizeWord(b)
	if na == "" || nb == "" {
		return a == b
	}
	return na == nb
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.TrimFunc(w, unicode.IsPunct))
}
