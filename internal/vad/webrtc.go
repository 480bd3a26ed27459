// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     vad
// Description: WebRTC voice activity detection
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package vad

import (
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"github.com/msto63/diktat/internal/audio"
)

// WebRTCVAD implements speech activity analysis using WebRTC's VAD
type WebRTCVAD struct {
	vad        *webrtcvad.VAD
	sampleRate int
	frameSize  int
	mode       int
}

// NewWebRTCVAD creates a new WebRTC VAD instance
func NewWebRTCVAD(cfg Config) (*WebRTCVAD, error) {
	if cfg.FrameMillis == 0 {
		cfg.FrameMillis = 30
	}

	v, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create WebRTC VAD: %w", err)
	}

	// Set aggressiveness mode (0-3)
	mode := cfg.Mode
	if mode < 0 {
		mode = 0
	}
	if mode > 3 {
		mode = 3
	}
	if err := v.SetMode(mode); err != nil {
		return nil, fmt.Errorf("failed to set VAD mode: %w", err)
	}

	// Validate sample rate and frame length
	validRates := []int{8000, 16000, 32000, 48000}
	if !contains(validRates, cfg.SampleRate) {
		return nil, fmt.Errorf("invalid sample rate %d, must be one of %v", cfg.SampleRate, validRates)
	}
	if !contains([]int{10, 20, 30}, cfg.FrameMillis) {
		return nil, fmt.Errorf("invalid frame length %dms, must be 10, 20 or 30", cfg.FrameMillis)
	}
	frameSize := cfg.SampleRate * cfg.FrameMillis / 1000

	return &WebRTCVAD{
		vad:        v,
		sampleRate: cfg.SampleRate,
		frameSize:  frameSize,
		mode:       mode,
	}, nil
}

// Analyze classifies every complete frame; a trailing partial frame is ignored
func (w *WebRTCVAD) Analyze(samples []float32) (Result, error) {
	pcm := audio.PCM16(samples)
	frameBytes := w.frameSize * 2

	var res Result
	for off := 0; off+frameBytes <= len(pcm); off += frameBytes {
		active, err := w.vad.Process(w.sampleRate, pcm[off:off+frameBytes])
		if err != nil {
			return res, fmt.Errorf("VAD processing failed: %w", err)
		}
		res.Frames++
		if active {
			res.Voiced++
		}
	}
	return res, nil
}

func contains(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// Close releases resources
func (w *WebRTCVAD) Close() error {
	// WebRTC VAD doesn't require explicit cleanup
	return nil
}

// Mode returns the current aggressiveness mode
func (w *WebRTCVAD) Mode() int {
	return w.mode
}
