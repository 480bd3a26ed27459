package stt

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestOrchestrator_NotLoaded(t *testing.T) {
	o := NewOrchestrator(ModeDeep, nil, nil)

	res := o.Transcribe(context.Background(), make([]float32, 100), DefaultOptions())
	if res.OK() {
		t.Fatal("Transcribe() should not produce a transcript before Load")
	}
	if want := "ERROR: AI CORE NOT LOADED."; res.Text() != want {
		t.Errorf("Text() = %q, want %q", res.Text(), want)
	}
	if !errors.Is(res.Err, ErrNotReady) {
		t.Errorf("Err = %v, want ErrNotReady", res.Err)
	}
}

func TestOrchestrator_Success(t *testing.T) {
	engine := &fakeEngine{texts: []string{"buenos días"}}
	o := NewReadyOrchestrator(ModeFast, NewChunked(engine), nil)

	res := o.Transcribe(context.Background(), make([]float32, 1600), DefaultOptions())
	if !res.OK() {
		t.Fatalf("Transcribe() inline = %q", res.Inline)
	}
	if res.Transcript.Text != "buenos días" {
		t.Errorf("Text = %q, want %q", res.Transcript.Text, "buenos días")
	}
	if res.Transcript.Mode != ModeFast {
		t.Errorf("Mode = %v, want fast", res.Transcript.Mode)
	}
}

func TestOrchestrator_Failure(t *testing.T) {
	engine := &fakeEngine{err: errors.New("out of memory")}
	o := NewReadyOrchestrator(ModeDeep, NewChunked(engine), nil)

	res := o.Transcribe(context.Background(), make([]float32, 1600), DefaultOptions())
	if res.OK() {
		t.Fatal("Transcribe() should fail")
	}
	if res.Text() != "// TRANSCRIPTION ERROR: out of memory //" {
		t.Errorf("Text() = %q", res.Text())
	}
	if !errors.Is(res.Err, ErrTranscriptionFailed) {
		t.Errorf("Err = %v, want ErrTranscriptionFailed", res.Err)
	}
	if len(engine.windows) != 1 {
		t.Errorf("engine calls = %d, want 1 (no retry)", len(engine.windows))
	}
}

func TestOrchestrator_LoadRetriesAfterFailure(t *testing.T) {
	calls := 0
	o := NewOrchestrator(ModeDeep, func(ctx context.Context) (Transcriber, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("model missing")
		}
		return NewChunked(&fakeEngine{}), nil
	}, nil)

	if err := o.Load(context.Background()); err == nil || !strings.Contains(err.Error(), "model missing") {
		t.Fatalf("first Load() error = %v, want model missing", err)
	}
	if o.Ready() {
		t.Error("Ready() = true after failed load")
	}
	if err := o.Load(context.Background()); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if err := o.Load(context.Background()); err != nil {
		t.Fatalf("third Load() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("loader calls = %d, want 2", calls)
	}
	if o.EngineName() != "fake" {
		t.Errorf("EngineName() = %q, want fake", o.EngineName())
	}
}

func TestOrchestrator_Close(t *testing.T) {
	engine := &fakeEngine{}
	o := NewReadyOrchestrator(ModeDeep, NewChunked(engine), nil)

	if err := o.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !engine.closed {
		t.Error("engine not closed")
	}
	if o.Ready() {
		t.Error("Ready() = true after Close")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"deep", ModeDeep, false},
		{"fast", ModeFast, false},
		{"turbo", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode() = %v, want %v", got, tt.want)
			}
		})
	}
	if ModeFast.Label() != "FAST MODE" || ModeDeep.Label() != "DEEP MODE" {
		t.Error("unexpected mode labels")
	}
}
