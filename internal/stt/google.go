package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/msto63/diktat/internal/audio"
)

type recognizeFunc func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)

// GoogleEngine implements speech-to-text with Google Cloud Speech (synchronous recognize)
type GoogleEngine struct {
	client    *speech.Client
	recognize recognizeFunc
	language  string
}

// NewGoogleEngine creates a Google Cloud Speech client using application
// default credentials
func NewGoogleEngine(ctx context.Context, language string) (*GoogleEngine, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	e := &GoogleEngine{client: client, language: language}
	e.recognize = func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		return client.Recognize(ctx, req)
	}
	return e, nil
}

// Name implements Engine
func (g *GoogleEngine) Name() string {
	return "google"
}

// Transcribe sends the window as LINEAR16 and joins the best alternatives
func (g *GoogleEngine) Transcribe(ctx context.Context, samples []float32) (string, error) {
	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            audio.TargetSampleRate,
			LanguageCode:               g.language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: audio.PCM16(samples),
			},
		},
	}

	resp, err := g.recognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("google recognize failed: %w", err)
	}

	var parts []string
	for _, result := range resp.GetResults() {
		if alts := result.GetAlternatives(); len(alts) > 0 {
			if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " "), nil
}

// Close releases the client
func (g *GoogleEngine) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
