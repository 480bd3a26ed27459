// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     vad
// Description: Speech activity annotation for finished recordings
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package vad

// Analyzer measures speech activity in a mono recording
type Analyzer interface {
	// Analyze classifies samples frame by frame
	Analyze(samples []float32) (Result, error)

	// Close releases resources
	Close() error
}

// Config holds VAD configuration
type Config struct {
	// SampleRate is the audio sample rate (8000, 16000, 32000 or 48000)
	SampleRate int

	// Mode/Aggressiveness (0-3, higher = more aggressive filtering)
	Mode int

	// FrameMillis is the analysis frame length (10, 20 or 30)
	FrameMillis int
}

// DefaultConfig returns default VAD configuration
func DefaultConfig() Config {
	return Config{
		SampleRate:  16000,
		Mode:        2, // Moderate aggressiveness
		FrameMillis: 30,
	}
}

// Result summarizes speech activity of one recording
type Result struct {
	Frames int
	Voiced int
}

// Ratio is the voiced share of all analysed frames
func (r Result) Ratio() float64 {
	if r.Frames == 0 {
		return 0
	}
	return float64(r.Voiced) / float64(r.Frames)
}

// Nop is an Analyzer that reports no frames
type Nop struct{}

// Analyze implements Analyzer
func (Nop) Analyze([]float32) (Result, error) { return Result{}, nil }

// Close implements Analyzer
func (Nop) Close() error { return nil }
