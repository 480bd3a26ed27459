package stt

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/msto63/diktat/internal/audio"
)

// OpenAIConfig holds configuration for OpenAI-compatible transcription APIs
type OpenAIConfig struct {
	APIKey string

	// BaseURL points at a compatible server (".../v1"); empty uses api.openai.com
	BaseURL string

	Model    string
	Language string
	Timeout  time.Duration
}

// OpenAIEngine transcribes through the /audio/transcriptions endpoint
type OpenAIEngine struct {
	client   *openai.Client
	name     string
	model    string
	language string
}

// NewOpenAIEngine creates an engine for the OpenAI transcription API
func NewOpenAIEngine(cfg OpenAIConfig) (*OpenAIEngine, error) {
	if cfg.BaseURL == "" && cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return newOpenAIEngine("openai", cfg), nil
}

// NewWhisperHTTP creates an engine for a self-hosted Whisper server with an
// OpenAI-compatible API (faster-whisper-server, LocalAI, whisper.cpp server)
func NewWhisperHTTP(baseURL string, cfg OpenAIConfig) *OpenAIEngine {
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	return newOpenAIEngine("whisper-http", cfg)
}

func newOpenAIEngine(name string, cfg OpenAIConfig) *OpenAIEngine {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	return &OpenAIEngine{
		client:   openai.NewClientWithConfig(clientCfg),
		name:     name,
		model:    model,
		language: cfg.Language,
	}
}

// Name implements Engine
func (e *OpenAIEngine) Name() string {
	return e.name
}

// Transcribe uploads the window as WAV and returns the recognized text
func (e *OpenAIEngine) Transcribe(ctx context.Context, samples []float32) (string, error) {
	wav, err := audio.WAVBytes(samples, audio.TargetSampleRate)
	if err != nil {
		return "", fmt.Errorf("failed to create WAV: %w", err)
	}

	req := openai.AudioRequest{
		Model:    e.model,
		FilePath: "audio.wav",
		Reader:   bytes.NewReader(wav),
		Format:   openai.AudioResponseFormatJSON,
	}
	if e.language != "" && e.language != "auto" {
		req.Language = e.language
	}

	resp, err := e.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", e.name, err)
	}

	return strings.TrimSpace(resp.Text), nil
}

// Close releases resources
func (e *OpenAIEngine) Close() error {
	return nil
}
