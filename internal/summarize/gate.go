// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     summarize
// Description: Length gate, lazy summarizer load and summary cache
// Created:     2026-09-22
// License:     MIT
// ============================================================================

package summarize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/msto63/diktat/pkg/core/cache"
	"github.com/msto63/diktat/pkg/core/logging"
)

// DefaultThreshold is the transcript length above which a summary is requested
const DefaultThreshold = 1500

// Decision is the outcome of MaybeSummarize
type Decision struct {
	// Summary is nil unless a summary was produced
	Summary *string

	// Attempted is set when the text was long enough to summarize
	Attempted bool

	// Err is set when an attempt failed; the result is degraded
	Err error
}

// Degraded reports an attempted but failed summary
func (d Decision) Degraded() bool {
	return d.Attempted && d.Summary == nil
}

// Gate requests a summary only for long transcripts and loads the summarizer
// on first use
type Gate struct {
	threshold int
	opts      Options
	load      LoadFunc
	logger    *logging.Logger

	mu         sync.Mutex
	summarizer Summarizer

	cache *cache.Cache[string]
}

// NewGate creates a gate; load may be nil when summarization is disabled
func NewGate(threshold int, opts Options, load LoadFunc, logger *logging.Logger) *Gate {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Gate{
		threshold: threshold,
		opts:      opts,
		load:      load,
		logger:    logger,
	}
}

// Threshold returns the length limit in characters
func (g *Gate) Threshold() int {
	return g.threshold
}

// Long reports whether text exceeds the threshold
func (g *Gate) Long(text string) bool {
	return utf8.RuneCountInString(text) > g.threshold
}

// UseCache keeps successful summaries so the same transcript is not
// summarized twice. Pass nil to disable.
func (g *Gate) UseCache(c *cache.Cache[string]) {
	g.mu.Lock()
	g.cache = c
	g.mu.Unlock()
}

func (g *Gate) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%d:%s", g.opts.MaxLength, g.opts.MinLength, text)))
	return hex.EncodeToString(sum[:])
}

// Loaded reports whether a summarizer has been loaded
func (g *Gate) Loaded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.summarizer != nil
}

// ensure returns the cached summarizer or loads it. A failed load is not
// cached; the next call tries again.
func (g *Gate) ensure(ctx context.Context) (Summarizer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.summarizer != nil {
		return g.summarizer, nil
	}
	if g.load == nil {
		return nil, ErrNotReady
	}

	s, err := g.load(ctx)
	if err != nil {
		return nil, errors.Join(ErrNotReady, err)
	}
	g.summarizer = s
	g.logger.Info("Summarizer loaded", "engine", s.Name())
	return s, nil
}

// MaybeSummarize returns a summary for texts longer than the threshold.
// Short texts never reach the summarizer.
func (g *Gate) MaybeSummarize(ctx context.Context, text string) Decision {
	if !g.Long(text) {
		return Decision{}
	}

	g.mu.Lock()
	c := g.cache
	g.mu.Unlock()
	var key string
	if c != nil {
		key = g.cacheKey(text)
		if summary, ok := c.Get(key); ok {
			g.logger.Debug("Summary served from cache")
			return Decision{Summary: &summary, Attempted: true}
		}
	}

	s, err := g.ensure(ctx)
	if err != nil {
		g.logger.Warn("Summarizer unavailable", "error", err)
		return Decision{Attempted: true, Err: err}
	}

	summary, err := s.Summarize(ctx, text, g.opts)
	if err == nil && strings.TrimSpace(summary) == "" {
		err = errors.New("empty summary")
	}
	if err != nil {
		g.logger.Error("Summarization failed", "engine", s.Name(), "error", err)
		return Decision{Attempted: true, Err: errors.Join(ErrSummarizationFailed, err)}
	}

	summary = strings.TrimSpace(summary)
	if c != nil {
		c.Set(key, summary)
	}
	return Decision{Summary: &summary, Attempted: true}
}
