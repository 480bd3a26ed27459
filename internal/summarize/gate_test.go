package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/msto63/diktat/pkg/core/cache"
)

type fakeSummarizer struct {
	calls int
	out   string
	err   error
	opts  Options
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string, opts Options) (string, error) {
	f.calls++
	f.opts = opts
	return f.out, f.err
}

func (f *fakeSummarizer) Name() string { return "fake" }

func loaderOf(s Summarizer) LoadFunc {
	return func(context.Context) (Summarizer, error) { return s, nil }
}

func TestGate_ShortTextNotSummarized(t *testing.T) {
	s := &fakeSummarizer{out: "resumen"}
	loads := 0
	g := NewGate(1500, DefaultOptions(), func(context.Context) (Summarizer, error) {
		loads++
		return s, nil
	}, nil)

	for _, n := range []int{0, 20, 1500} {
		d := g.MaybeSummarize(context.Background(), strings.Repeat("a", n))
		if d.Summary != nil || d.Attempted {
			t.Errorf("len %d: Decision = %+v, want no attempt", n, d)
		}
	}
	if s.calls != 0 || loads != 0 {
		t.Errorf("calls = %d, loads = %d, want 0, 0", s.calls, loads)
	}
}

func TestGate_LongTextSummarized(t *testing.T) {
	s := &fakeSummarizer{out: "  un resumen breve  "}
	g := NewGate(1500, DefaultOptions(), loaderOf(s), nil)

	d := g.MaybeSummarize(context.Background(), strings.Repeat("a", 1501))
	if d.Summary == nil {
		t.Fatalf("Summary = nil, err = %v", d.Err)
	}
	if *d.Summary != "un resumen breve" {
		t.Errorf("Summary = %q, want %q", *d.Summary, "un resumen breve")
	}
	if d.Degraded() {
		t.Error("Degraded() = true, want false")
	}
	if s.opts.MaxLength != 150 || s.opts.MinLength != 30 {
		t.Errorf("opts = %+v, want 150/30", s.opts)
	}
}

func TestGate_ThresholdCountsRunes(t *testing.T) {
	g := NewGate(10, DefaultOptions(), nil, nil)
	if g.Long("ñññññññññ") {
		t.Error("Long() = true for 9 runes")
	}
	if !g.Long("ñññññññññññ") {
		t.Error("Long() = false for 11 runes")
	}
}

func TestGate_FailureIsDegraded(t *testing.T) {
	s := &fakeSummarizer{err: errors.New("model overloaded")}
	g := NewGate(100, DefaultOptions(), loaderOf(s), nil)

	d := g.MaybeSummarize(context.Background(), strings.Repeat("b", 2000))
	if d.Summary != nil {
		t.Errorf("Summary = %q, want nil", *d.Summary)
	}
	if !d.Degraded() {
		t.Error("Degraded() = false, want true")
	}
	if !errors.Is(d.Err, ErrSummarizationFailed) {
		t.Errorf("Err = %v, want ErrSummarizationFailed", d.Err)
	}
}

func TestGate_EmptySummaryIsFailure(t *testing.T) {
	g := NewGate(10, DefaultOptions(), loaderOf(&fakeSummarizer{out: "   "}), nil)

	d := g.MaybeSummarize(context.Background(), strings.Repeat("c", 50))
	if !d.Degraded() {
		t.Error("Degraded() = false for blank summary")
	}
}

func TestGate_LoadFailureRetried(t *testing.T) {
	loads := 0
	s := &fakeSummarizer{out: "ok"}
	g := NewGate(10, DefaultOptions(), func(context.Context) (Summarizer, error) {
		loads++
		if loads == 1 {
			return nil, errors.New("connection refused")
		}
		return s, nil
	}, nil)
	long := strings.Repeat("d", 50)

	d := g.MaybeSummarize(context.Background(), long)
	if !errors.Is(d.Err, ErrNotReady) {
		t.Fatalf("first Err = %v, want ErrNotReady", d.Err)
	}
	if g.Loaded() {
		t.Error("Loaded() = true after failed load")
	}

	if d := g.MaybeSummarize(context.Background(), long); d.Summary == nil {
		t.Fatalf("second Summary = nil, err = %v", d.Err)
	}
	g.MaybeSummarize(context.Background(), long)

	if loads != 2 {
		t.Errorf("loads = %d, want 2", loads)
	}
	if !g.Loaded() {
		t.Error("Loaded() = false after successful load")
	}
}

func TestGate_Disabled(t *testing.T) {
	g := NewGate(10, DefaultOptions(), nil, nil)

	d := g.MaybeSummarize(context.Background(), strings.Repeat("e", 50))
	if !errors.Is(d.Err, ErrNotReady) || !d.Degraded() {
		t.Errorf("Decision = %+v, want degraded ErrNotReady", d)
	}
}

func TestGate_CachedSummary(t *testing.T) {
	s := &fakeSummarizer{out: "kurz"}
	g := NewGate(10, DefaultOptions(), loaderOf(s), nil)
	c := cache.New[string](cache.Config{MaxItems: 8})
	defer c.Close()
	g.UseCache(c)

	text := strings.Repeat("b", 50)
	for i := 0; i < 3; i++ {
		d := g.MaybeSummarize(context.Background(), text)
		if d.Summary == nil || *d.Summary != "kurz" {
			t.Fatalf("run %d: Decision = %+v, want summary kurz", i, d)
		}
	}
	if s.calls != 1 {
		t.Errorf("calls = %d, want 1", s.calls)
	}

	s.err = errBoomSummary
	d := g.MaybeSummarize(context.Background(), strings.Repeat("c", 50))
	if !d.Degraded() {
		t.Errorf("uncached failing text: Degraded() = false, want true")
	}
	if c.Len() != 1 {
		t.Errorf("cache Len() = %d, want 1", c.Len())
	}
}

var errBoomSummary = errors.New("boom")
