// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     audio
// Description: Capture buffer for the frames of one recording
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package audio

// CaptureBuffer accumulates the frames of one recording. It is not safe for
// concurrent use; the Actor owns it.
type CaptureBuffer struct {
	frames [][]float32
	total  int
	active bool
}

// NewCaptureBuffer creates an inactive, empty buffer
func NewCaptureBuffer() *CaptureBuffer {
	return &CaptureBuffer{}
}

// SetActive toggles whether pushed frames are kept
func (b *CaptureBuffer) SetActive(active bool) {
	b.active = active
}

// Active reports whether frames are currently accepted
func (b *CaptureBuffer) Active() bool {
	return b.active
}

// Push appends a copy of frame while active; inactive pushes are dropped
func (b *CaptureBuffer) Push(frame []float32) {
	if !b.active || len(frame) == 0 {
		return
	}
	f := make([]float32, len(frame))
	copy(f, frame)
	b.frames = append(b.frames, f)
	b.total += len(f)
}

// Len returns the number of buffered samples
func (b *CaptureBuffer) Len() int {
	return b.total
}

// FlushAndClear concatenates the buffered frames in arrival order into one
// slice and empties the buffer. An empty buffer yields a zero-length slice.
func (b *CaptureBuffer) FlushAndClear() []float32 {
	out := make([]float32, 0, b.total)
	for _, f := range b.frames {
		out = append(out, f...)
	}
	b.frames = nil
	b.total = 0
	return out
}
