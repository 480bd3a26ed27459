package stt

import (
	"context"
	"fmt"

	"github.com/msto63/diktat/pkg/core/config"
)

// LoaderFor returns the LoadFunc for the engine configured for mode. It
// returns nil when the mode has no engine configured.
func LoaderFor(cfg config.TranscriptionConfig, mode Mode) LoadFunc {
	name, model := cfg.DeepEngine, cfg.WhisperModel
	if mode == ModeFast {
		name, model = cfg.FastEngine, cfg.FastWhisperModel
	}
	if name == "" {
		return nil
	}

	return func(ctx context.Context) (Transcriber, error) {
		engine, err := NewEngine(ctx, name, cfg, model)
		if err != nil {
			return nil, err
		}
		return NewChunked(engine), nil
	}
}

// NewEngine builds the named window engine
func NewEngine(ctx context.Context, name string, cfg config.TranscriptionConfig, model string) (Engine, error) {
	switch name {
	case "whisper-cli":
		return NewWhisperCLI(WhisperConfig{
			BinaryPath: cfg.WhisperBinary,
			ModelPath:  model,
			Language:   cfg.Language,
		})
	case "whisper-http":
		return NewWhisperHTTP(cfg.WhisperURL, OpenAIConfig{
			Model:    cfg.OpenAIModel,
			Language: cfg.Language,
			Timeout:  cfg.Timeout.Duration,
		}), nil
	case "openai":
		return NewOpenAIEngine(OpenAIConfig{
			APIKey:   cfg.OpenAIAPIKey,
			Model:    cfg.OpenAIModel,
			Language: cfg.Language,
			Timeout:  cfg.Timeout.Duration,
		})
	case "google":
		return NewGoogleEngine(ctx, cfg.Language)
	default:
		return nil, fmt.Errorf("unknown transcription engine: %s", name)
	}
}
