package stt

import (
	"context"
	"sync"
)

// fakeEngine returns texts in order, one per window
type fakeEngine struct {
	mu      sync.Mutex
	texts   []string
	err     error
	windows []int
	closed  bool
}

func (f *fakeEngine) Transcribe(ctx context.Context, samples []float32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append(f.windows, len(samples))
	if f.err != nil {
		return "", f.err
	}
	if len(f.texts) == 0 {
		return "", nil
	}
	t := f.texts[0]
	f.texts = f.texts[1:]
	return t, nil
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}
