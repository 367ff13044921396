// Package gemini adapts the Gemini API to the service's language model
// ports: audio transcription, calendar intent extraction, and reminder text
// composition.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/phrazzld/vocal-api/internal/config"
)

// Sentinel errors returned by the Gemini adapter.
var (
	// ErrInvalidConfig indicates the adapter was constructed with unusable
	// settings.
	ErrInvalidConfig = errors.New("invalid gemini configuration")

	// ErrInvalidResponse indicates the model returned something the caller
	// cannot use.
	ErrInvalidResponse = errors.New("invalid gemini response")

	// ErrContentBlocked indicates safety filters refused the content.
	ErrContentBlocked = errors.New("content blocked by safety filters")
)

// Client wraps one Gemini API connection shared by the transcription,
// intent, and reminder calls.
type Client struct {
	client             *genai.Client
	transcriptionModel string
	intentModel        string
	logger             *slog.Logger
}

// NewClient validates the configuration and connects to the Gemini API.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.TranscriptionModel == "" || cfg.IntentModel == "" {
		return nil, fmt.Errorf("%w: model names cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return &Client{
		client:             client,
		transcriptionModel: cfg.TranscriptionModel,
		intentModel:        cfg.IntentModel,
		logger:             logger,
	}, nil
}

// generate runs one model call and returns the response text, mapping
// degenerate responses onto sentinel errors.
func (c *Client) generate(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", ErrContentBlocked
	}

	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		text += part.Text
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty content in response", ErrInvalidResponse)
	}
	return text, nil
}

// decodeJSON parses a model response expected to be a single JSON object.
func decodeJSON(text string, v any) error {
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
	}
	return nil
}
