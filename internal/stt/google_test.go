package stt

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
)

func TestGoogleEngine_Transcribe(t *testing.T) {
	var got *speechpb.RecognizeRequest
	g := &GoogleEngine{
		language: "es-ES",
		recognize: func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
			got = req
			return &speechpb.RecognizeResponse{
				Results: []*speechpb.SpeechRecognitionResult{
					{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "primera frase"}, {Transcript: "alternativa"}}},
					{Alternatives: nil},
					{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: " segunda frase "}}},
				},
			}, nil
		},
	}

	text, err := g.Transcribe(context.Background(), make([]float32, 1600))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "primera frase segunda frase" {
		t.Errorf("Transcribe() = %q", text)
	}

	if got.GetConfig().GetSampleRateHertz() != 16000 {
		t.Errorf("SampleRateHertz = %d, want 16000", got.GetConfig().GetSampleRateHertz())
	}
	if got.GetConfig().GetEncoding() != speechpb.RecognitionConfig_LINEAR16 {
		t.Errorf("Encoding = %v, want LINEAR16", got.GetConfig().GetEncoding())
	}
	if n := len(got.GetAudio().GetContent()); n != 3200 {
		t.Errorf("content bytes = %d, want 3200", n)
	}
}

func TestGoogleEngine_Error(t *testing.T) {
	g := &GoogleEngine{
		recognize: func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	if _, err := g.Transcribe(context.Background(), nil); err == nil {
		t.Error("Transcribe() expected error")
	}
	if err := g.Close(); err != nil {
		t.Errorf("Close() without client error = %v", err)
	}
}
