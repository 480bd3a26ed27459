package session

import "errors"

var (
	// ErrBusy is returned when a recording or job is already in progress
	ErrBusy = errors.New("session: busy")

	// ErrNotRecording is returned by Stop outside of a recording
	ErrNotRecording = errors.New("session: not recording")

	// ErrModeUnavailable is returned when no engine is configured for a mode
	ErrModeUnavailable = errors.New("session: mode unavailable")

	// ErrPersistence wraps a failed history write
	ErrPersistence = errors.New("session: could not save to history")

	// ErrInvalidAudio is returned by Upload when the file cannot be decoded
	ErrInvalidAudio = errors.New("session: could not process file")

	// ErrClosed is returned by Start after Close
	ErrClosed = errors.New("session: closed")

	// ErrNoOutput is returned by Copy when the output buffer is empty
	ErrNoOutput = errors.New("session: output buffer is empty")
)
