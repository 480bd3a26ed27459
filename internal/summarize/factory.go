package summarize

import (
	"context"
	"fmt"

	"github.com/msto63/diktat/pkg/core/config"
)

// LoaderFor returns the LoadFunc for the configured engine, or nil when
// summarization is disabled
func LoaderFor(cfg config.SummarizationConfig) LoadFunc {
	switch cfg.Engine {
	case "":
		return nil
	case "ollama":
		return func(ctx context.Context) (Summarizer, error) {
			o := NewOllama(OllamaConfig{BaseURL: cfg.OllamaURL, Model: cfg.Model, Timeout: cfg.Timeout.Duration})
			if err := o.Verify(ctx); err != nil {
				return nil, err
			}
			return o, nil
		}
	case "openai":
		return func(ctx context.Context) (Summarizer, error) {
			return NewOpenAI(OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.Model, Timeout: cfg.Timeout.Duration})
		}
	case "gemini":
		return func(ctx context.Context) (Summarizer, error) {
			return NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model)
		}
	default:
		return func(ctx context.Context) (Summarizer, error) {
			return nil, fmt.Errorf("unknown summarization engine: %s", cfg.Engine)
		}
	}
}
