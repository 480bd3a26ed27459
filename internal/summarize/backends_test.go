package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/msto63/diktat/pkg/core/config"
)

func TestOllama_Summarize(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   got.Model,
			Message: ollamaMessage{Role: "assistant", Content: "resumen corto"},
			Done:    true,
		})
	}))
	defer srv.Close()

	o := NewOllama(OllamaConfig{BaseURL: srv.URL, Model: "llama3.2"})
	out, err := o.Summarize(context.Background(), "texto largo", DefaultOptions())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if out != "resumen corto" {
		t.Errorf("Summarize() = %q, want %q", out, "resumen corto")
	}
	if got.Model != "llama3.2" || got.Stream {
		t.Errorf("request model = %q stream = %v", got.Model, got.Stream)
	}
	if len(got.Messages) != 2 || !strings.Contains(got.Messages[1].Content, "30 to 150 words") {
		t.Errorf("unexpected messages %+v", got.Messages)
	}
	if got.Options["num_predict"] != float64(300) {
		t.Errorf("num_predict = %v, want 300", got.Options["num_predict"])
	}
}

func TestOllama_Verify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"mistral:7b"},{"name":"llama3.2:latest"}]}`))
	}))
	defer srv.Close()

	tests := []struct {
		model   string
		wantErr bool
	}{
		{"mistral:7b", false},
		{"llama3.2", false},
		{"qwen2.5", true},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			err := NewOllama(OllamaConfig{BaseURL: srv.URL, Model: tt.model}).Verify(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOllama_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	o := NewOllama(OllamaConfig{BaseURL: srv.URL})
	if _, err := o.Summarize(context.Background(), "x", DefaultOptions()); err == nil {
		t.Error("Summarize() expected error for 404")
	}
	if err := o.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() expected error for 404")
	}
}

func TestOpenAI_Summarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["max_tokens"] != float64(300) {
			t.Errorf("max_tokens = %v, want 300", req["max_tokens"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"resumen"}}]}`))
	}))
	defer srv.Close()

	o, err := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("NewOpenAI() error = %v", err)
	}
	out, err := o.Summarize(context.Background(), "texto", DefaultOptions())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if out != "resumen" {
		t.Errorf("Summarize() = %q, want resumen", out)
	}
}

func TestGemini_Summarize(t *testing.T) {
	var gotConfig *genai.GenerateContentConfig
	g := &Gemini{
		model: "gemini-2.0-flash",
		generate: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotConfig = config
			return &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []*genai.Part{{Text: "primera "}, {Text: "parte"}}},
				}},
			}, nil
		},
	}

	out, err := g.Summarize(context.Background(), "texto", DefaultOptions())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if out != "primera parte" {
		t.Errorf("Summarize() = %q, want %q", out, "primera parte")
	}
	if gotConfig.MaxOutputTokens != 300 {
		t.Errorf("MaxOutputTokens = %d, want 300", gotConfig.MaxOutputTokens)
	}
}

func TestGemini_NoCandidates(t *testing.T) {
	g := &Gemini{
		generate: func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		},
	}
	if _, err := g.Summarize(context.Background(), "texto", DefaultOptions()); err == nil {
		t.Error("Summarize() expected error without candidates")
	}
}

func TestLoaderFor(t *testing.T) {
	cfg := config.SummarizationConfig{}
	if LoaderFor(cfg) != nil {
		t.Error("LoaderFor() with no engine should be nil")
	}

	cfg.Engine = "bard"
	if _, err := LoaderFor(cfg)(context.Background()); err == nil {
		t.Error("LoaderFor() unknown engine expected error")
	}

	cfg.Engine = "gemini"
	if _, err := LoaderFor(cfg)(context.Background()); err == nil {
		t.Error("LoaderFor() gemini without key expected error")
	}
}
