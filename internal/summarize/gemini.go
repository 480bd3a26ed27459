package summarize

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Gemini summarizes with Google's Gemini API
type Gemini struct {
	generate generateFunc
	model    string
}

// NewGemini creates a Gemini summarizer
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &Gemini{generate: client.Models.GenerateContent, model: model}, nil
}

// Name implements Summarizer
func (g *Gemini) Name() string {
	return "gemini/" + g.model
}

// Summarize implements Summarizer
func (g *Gemini) Summarize(ctx context.Context, text string, opts Options) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		MaxOutputTokens:   int32(tokenCap(opts)),
	}
	contents := []*genai.Content{genai.NewContentFromText(userPrompt(text, opts), genai.RoleUser)}

	resp, err := g.generate(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
