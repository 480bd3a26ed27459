// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     audio
// Description: Capture actor - start, stop and flush commands
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package audio

import (
	"context"
)

// Command names accepted by the Actor
const (
	CommandStart = "start"
	CommandStop  = "stop"
)

// Command is the inbound message to the capture actor
type Command struct {
	Command string `json:"command"`
}

// Flushed is the outbound message carrying one finished recording
type Flushed struct {
	Buffer []float32 `json:"buffer"`
}

// Actor owns a CaptureBuffer for one recording. It receives frames from a
// capture stream and commands from the control side; the only data it sends
// back is the Flushed message emitted on stop.
type Actor struct {
	frames   <-chan []float32
	commands chan Command
	flushed  chan Flushed
	done     chan struct{}
	buf      *CaptureBuffer
}

// NewActor creates an actor reading from frames
func NewActor(frames <-chan []float32) *Actor {
	return &Actor{
		frames:   frames,
		commands: make(chan Command, 2),
		flushed:  make(chan Flushed, 1),
		done:     make(chan struct{}),
		buf:      NewCaptureBuffer(),
	}
}

// Send posts a command to the actor
func (a *Actor) Send(cmd Command) {
	select {
	case a.commands <- cmd:
	case <-a.done:
	}
}

// Flushed returns the channel receiving the buffer on stop
func (a *Actor) Flushed() <-chan Flushed {
	return a.flushed
}

// Done is closed when Run returns
func (a *Actor) Done() <-chan struct{} {
	return a.done
}

// Run processes frames and commands until stop is handled or ctx ends.
// Pending commands are handled before pending frames. On ctx cancellation
// the buffered audio is discarded.
func (a *Actor) Run(ctx context.Context) {
	defer close(a.done)

	frames := a.frames
	for {
		select {
		case cmd := <-a.commands:
			if a.handle(cmd, &frames) {
				return
			}
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return

		case frame, ok := <-frames:
			if !ok {
				frames = nil
				continue
			}
			a.buf.Push(frame)

		case cmd := <-a.commands:
			if a.handle(cmd, &frames) {
				return
			}
		}
	}
}

// handle applies cmd and reports whether the actor is finished
func (a *Actor) handle(cmd Command, frames *<-chan []float32) bool {
	switch cmd.Command {
	case CommandStart:
		a.buf.SetActive(true)
	case CommandStop:
		*frames = a.drain(*frames)
		a.buf.SetActive(false)
		a.flushed <- Flushed{Buffer: a.buf.FlushAndClear()}
		return true
	}
	return false
}

// drain pushes frames already queued before the stop command
func (a *Actor) drain(frames <-chan []float32) <-chan []float32 {
	if frames == nil {
		return nil
	}
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			a.buf.Push(frame)
		default:
			return frames
		}
	}
}
