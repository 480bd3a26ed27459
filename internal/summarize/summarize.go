// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     summarize
// Description: Summarization gate and summarizer backends
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package summarize

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned when no summarizer could be loaded
	ErrNotReady = errors.New("summarize: summarizer not loaded")

	// ErrSummarizationFailed wraps any summarizer failure
	ErrSummarizationFailed = errors.New("summarize: summarization failed")
)

// Options bounds the summary length in words
type Options struct {
	MaxLength int
	MinLength int
}

// DefaultOptions returns the 30 to 150 word bounds
func DefaultOptions() Options {
	return Options{MaxLength: 150, MinLength: 30}
}

// Summarizer condenses a long text
type Summarizer interface {
	Summarize(ctx context.Context, text string, opts Options) (string, error)
	Name() string
}

// LoadFunc builds a Summarizer
type LoadFunc func(ctx context.Context) (Summarizer, error)

// systemPrompt instructs chat models to return only the summary
const systemPrompt = "You condense dictated transcriptions. Answer with the summary only, " +
	"in the language of the transcription, without introduction or commentary."

// userPrompt builds the request for one text
func userPrompt(text string, opts Options) string {
	return fmt.Sprintf("Summarize the following transcription in %d to %d words.\n\n%s",
		opts.MinLength, opts.MaxLength, text)
}

// tokenCap converts the word bound into a generation limit
func tokenCap(opts Options) int {
	if opts.MaxLength <= 0 {
		return 0
	}
	return opts.MaxLength * 2
}
