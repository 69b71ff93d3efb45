// Package transcribe turns uploaded audio files into plain text via an
// external speech-to-text provider.
package transcribe

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
)

// Transcriber converts a single audio file into text. Implementations are
// stateless with respect to any single request and safe for concurrent use.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// parseTranscript locates the transcript text in a provider response.
// Providers have shipped several response shapes over time, so three are
// probed in order: a top-level "text" field, a nested "data.text" field,
// and a "segments" array whose per-segment texts are concatenated. If none
// match, the transcript is treated as empty rather than failing the request.
func parseTranscript(ctx context.Context, body []byte) string {
	var topLevel struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &topLevel); err == nil && topLevel.Text != "" {
		return topLevel.Text
	}

	var nested struct {
		Data struct {
			Text string `json:"text"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Data.Text != "" {
		return nested.Data.Text
	}

	var segmented struct {
		Segments []struct {
			Text string `json:"text"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(body, &segmented); err == nil && len(segmented.Segments) > 0 {
		parts := make([]string, 0, len(segmented.Segments))
		for _, s := range segmented.Segments {
			if t := strings.TrimSpace(s.Text); t != "" {
				parts = append(parts, t)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}

	slog.WarnContext(ctx, "Could not locate text field in transcription response",
		"response_bytes", len(body))
	return ""
}
