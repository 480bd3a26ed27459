// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     audio
// Description: Capture sources and frame streams
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrResourceDenied is returned when the capture device cannot be acquired
var ErrResourceDenied = errors.New("audio: capture resource denied")

// DefaultFrameQueue is the channel capacity between a capture source and the actor
const DefaultFrameQueue = 100

const (
	// readBackoff is the pause after a failed device read
	readBackoff = 10 * time.Millisecond

	// maxReadErrors failed reads in a row end the capture loop
	maxReadErrors = 50
)

// Source acquires a live capture stream
type Source interface {
	// Acquire opens the device. Failures wrap ErrResourceDenied.
	Acquire(ctx context.Context) (Stream, error)
}

// Stream is one acquired capture session
type Stream interface {
	// Frames delivers mono frames in arrival order
	Frames() <-chan []float32

	// SampleRate is the native rate of the delivered frames
	SampleRate() int

	// Dropped counts frames discarded because the consumer fell behind
	Dropped() uint64

	// Close releases the device and closes the frame channel
	Close() error
}

// FrameStream is a Stream fed by a producer goroutine. Deliver never blocks.
type FrameStream struct {
	frames     chan []float32
	sampleRate int
	dropped    atomic.Uint64
	closeOnce  sync.Once
	mu         sync.RWMutex
	closed     bool
	onClose    func() error
	closeErr   error
}

// NewFrameStream creates a stream with the given queue capacity. onClose, if
// set, runs once before the frame channel is closed.
func NewFrameStream(sampleRate, queue int, onClose func() error) *FrameStream {
	if queue <= 0 {
		queue = DefaultFrameQueue
	}
	return &FrameStream{
		frames:     make(chan []float32, queue),
		sampleRate: sampleRate,
		onClose:    onClose,
	}
}

// Deliver hands a frame to the consumer, dropping it when the queue is full.
// It reports whether the frame was queued.
func (s *FrameStream) Deliver(frame []float32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.frames <- frame:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// Frames implements Stream
func (s *FrameStream) Frames() <-chan []float32 { return s.frames }

// SampleRate implements Stream
func (s *FrameStream) SampleRate() int { return s.sampleRate }

// Dropped implements Stream
func (s *FrameStream) Dropped() uint64 { return s.dropped.Load() }

// Close implements Stream
func (s *FrameStream) Close() error {
	s.closeOnce.Do(func() {
		if s.onClose != nil {
			s.closeErr = s.onClose()
		}
		s.mu.Lock()
		s.closed = true
		close(s.frames)
		s.mu.Unlock()
	})
	return s.closeErr
}

// SliceSource replays prepared frames, for tests and offline replay
type SliceSource struct {
	Rate   int
	Frames [][]float32

	// Err, if set, is returned by Acquire wrapped in ErrResourceDenied
	Err error

	mu       sync.Mutex
	acquired int
}

// Acquire implements Source. All frames are queued before it returns.
func (s *SliceSource) Acquire(ctx context.Context) (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, errors.Join(ErrResourceDenied, s.Err)
	}
	s.acquired++

	stream := NewFrameStream(s.Rate, len(s.Frames)+1, nil)
	for _, f := range s.Frames {
		stream.Deliver(f)
	}
	return stream, nil
}

// Acquired returns how many streams have been handed out
func (s *SliceSource) Acquired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquired
}

// pumpFrames reads into buf and delivers a copy to stream until running is
// cleared. A failed read pauses for backoff; after maxErrors failures in a
// row the loop gives up and returns the last error.
func pumpFrames(running *atomic.Bool, read func() error, buf []float32, stream *FrameStream, backoff time.Duration, maxErrors int) error {
	failures := 0
	for running.Load() {
		if err := read(); err != nil {
			failures++
			if failures >= maxErrors {
				return err
			}
			time.Sleep(backoff)
			continue
		}
		failures = 0
		samples := make([]float32, len(buf))
		copy(samples, buf)
		stream.Deliver(samples)
	}
	return nil
}
