package transcribe

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"

	speech "google.golang.org/api/speech/v1"
)

// GoogleTranscriber uses the Google Cloud Speech-to-Text API. Credentials
// come from the environment (application default credentials).
type GoogleTranscriber struct {
	service  *speech.Service
	language string
}

func NewGoogleTranscriber(ctx context.Context, language string) (*GoogleTranscriber, error) {
	svc, err := speech.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech service: %w", err)
	}
	return &GoogleTranscriber{service: svc, language: language}, nil
}

// Transcribe sends the audio content as a single synchronous recognize call.
// Uploads are constrained to PCM WAV before they reach this adapter.
func (g *GoogleTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}

	resp, err := g.service.Speech.Recognize(&speech.RecognizeRequest{
		Config: &speech.RecognitionConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: 16000,
			LanguageCode:    g.language,
		},
		Audio: &speech.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(data),
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("speech recognize call failed: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if t := strings.TrimSpace(result.Alternatives[0].Transcript); t != "" {
			parts = append(parts, t)
		}
	}

	if len(parts) == 0 {
		slog.WarnContext(ctx, "Speech recognize returned no transcript", "results", len(resp.Results))
		return "", nil
	}

	text := strings.Join(parts, " ")
	slog.InfoContext(ctx, "Audio transcribed", "backend", "google", "transcript_length", len(text))
	return text, nil
}
