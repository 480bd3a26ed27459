package session

import (
	"context"
	"errors"
	"sync"

	"github.com/msto63/diktat/internal/audio"
	"github.com/msto63/diktat/internal/history"
	"github.com/msto63/diktat/internal/stt"
	"github.com/msto63/diktat/internal/summarize"
)

type fakeTranscriber struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	samples int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, samples []float32, opts stt.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.samples = len(samples)
	return f.text, f.err
}

func (f *fakeTranscriber) Name() string { return "fake" }
func (f *fakeTranscriber) Close() error { return nil }

func (f *fakeTranscriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSummarizer struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string, opts summarize.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.text, f.err
}

func (f *fakeSummarizer) Name() string { return "fake" }

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

// harness is a session over fakes plus everything it reported
type harness struct {
	*Session
	source *audio.SliceSource
	deep   *fakeTranscriber
	fast   *fakeTranscriber
	sum    *fakeSummarizer
	mem    *history.Memory
	clip   *fakeClipboard

	mu       sync.Mutex
	statuses []string
}

func newHarness(frames [][]float32, rate int) *harness {
	h := &harness{
		source: &audio.SliceSource{Rate: rate, Frames: frames},
		deep:   &fakeTranscriber{text: "a transcription that is long enough"},
		fast:   &fakeTranscriber{text: "a fast transcription of the audio"},
		sum:    &fakeSummarizer{text: "the summary"},
		mem:    history.NewMemory(),
		clip:   &fakeClipboard{},
	}
	sum := h.sum
	gate := summarize.NewGate(summarize.DefaultThreshold, summarize.DefaultOptions(),
		func(context.Context) (summarize.Summarizer, error) { return sum, nil }, nil)

	s, err := New(Config{
		Source:    h.source,
		Deep:      stt.NewReadyOrchestrator(stt.ModeDeep, h.deep, nil),
		Fast:      stt.NewReadyOrchestrator(stt.ModeFast, h.fast, nil),
		Gate:      gate,
		History:   history.NewStore(h.mem, ""),
		Clipboard: h.clip,
	})
	if err != nil {
		panic(err)
	}
	s.AddStatusListener(func(text string) {
		h.mu.Lock()
		h.statuses = append(h.statuses, text)
		h.mu.Unlock()
	})
	h.Session = s
	return h
}

func (h *harness) Statuses() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.statuses...)
}

func (h *harness) LastStatus() string {
	st := h.Statuses()
	if len(st) == 0 {
		return ""
	}
	return st[len(st)-1]
}

func (h *harness) HasStatus(text string) bool {
	for _, s := range h.Statuses() {
		if s == text {
			return true
		}
	}
	return false
}

func frames(n, size int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		f := make([]float32, size)
		for j := range f {
			f[j] = float32(j%50) / 100
		}
		out[i] = f
	}
	return out
}

var errBoom = errors.New("boom")

// gatedSource holds Acquire until release is closed
type gatedSource struct {
	*audio.SliceSource
	entered chan struct{}
	release chan struct{}
}

func newGatedSource(inner *audio.SliceSource) *gatedSource {
	return &gatedSource{
		SliceSource: inner,
		entered:     make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
}

func (g *gatedSource) Acquire(ctx context.Context) (audio.Stream, error) {
	g.entered <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, errors.Join(audio.ErrResourceDenied, ctx.Err())
	}
	return g.SliceSource.Acquire(ctx)
}

// closeFailSource hands out streams whose Close reports err
type closeFailSource struct {
	err error
}

func (c *closeFailSource) Acquire(ctx context.Context) (audio.Stream, error) {
	return audio.NewFrameStream(16000, 1, func() error { return c.err }), nil
}
