package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"vittrack/internal/core"
)

const promptTemplate = `Extract expense information from the following text:
%s

The text may contain multiple expenses. Extract each expense with the following fields:
- amount (as a float)
- description (as a string)
- category (one of: %s)

Return a JSON object with a key "expenses" that contains an array of expense objects.
Example: {"expenses": [{"amount": 25.99, "description": "coffee", "category": "Groceries"}, {"amount": 15.0, "description": "bus fare", "category": "Transport"}]}`

// GroqExtractor calls the Groq chat completions endpoint and parses the
// JSON it returns. It is the sole parser of that payload.
type GroqExtractor struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	categories []string
}

// NewGroqExtractor builds an extractor bound to the registry's category
// names, which are embedded in every prompt.
func NewGroqExtractor(apiKey, baseURL, model string, categories []string) *GroqExtractor {
	return &GroqExtractor{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		categories: categories,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Temperature    float64       `json:"temperature"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract returns the candidate expenses found in the transcript. An empty
// transcript short-circuits to zero candidates without a network call.
func (g *GroqExtractor) Extract(ctx context.Context, transcript string, userID int64) ([]core.CandidateExpense, error) {
	if strings.TrimSpace(transcript) == "" {
		slog.InfoContext(ctx, "Empty transcript, skipping extraction", "user_id", userID)
		return nil, nil
	}

	content, err := g.complete(ctx, fmt.Sprintf(promptTemplate, transcript, strings.Join(g.categories, ", ")))
	if err != nil {
		return nil, err
	}

	candidates, err := parseExpenses([]byte(content))
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Expenses extracted",
		"user_id", userID,
		"count", len(candidates),
		"transcript_length", len(transcript))

	return candidates, nil
}

func (g *GroqExtractor) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       g.model,
		Temperature: 0.3,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	}
	reqBody.ResponseFormat.Type = "json_object"

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return parsed.Choices[0].Message.Content, nil
}
