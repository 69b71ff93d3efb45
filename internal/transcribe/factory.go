package transcribe

import (
	"context"
	"fmt"
	"log/slog"

	"vittrack/internal/config"
)

// New selects and constructs the transcription backend named by the config.
func New(ctx context.Context, cfg *config.Config) (Transcriber, error) {
	switch cfg.TranscriberBackend {
	case config.TranscriberGroq:
		slog.Info("Initialized Groq transcriber", "model", cfg.GroqAudioModel)
		return NewGroqTranscriber(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqAudioModel), nil
	case config.TranscriberGoogle:
		t, err := NewGoogleTranscriber(ctx, cfg.SpeechLanguage)
		if err != nil {
			return nil, fmt.Errorf("initialize google transcriber: %w", err)
		}
		slog.Info("Initialized Google Speech transcriber", "language", cfg.SpeechLanguage)
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported transcriber backend: %s", cfg.TranscriberBackend)
	}
}
