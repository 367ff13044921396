// Package speech synthesizes spoken audio from text through an
// OpenAI-compatible speech endpoint.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/vocal-api/internal/config"
)

// ErrDisabled is returned when no speech endpoint is configured.
var ErrDisabled = errors.New("speech synthesis is not configured")

const (
	requestTimeout = 60 * time.Second

	// maxResponseBytes guards against an endpoint streaming unbounded audio.
	maxResponseBytes = 32 << 20
)

// Client calls a text-to-speech endpoint and returns encoded audio bytes.
type Client struct {
	endpoint string
	apiKey   string
	voice    string
	httpc    *http.Client
	logger   *slog.Logger
}

// New builds a speech client. A client with no endpoint is valid but
// returns ErrDisabled from Synthesize, so callers can treat synthesis as
// optional.
func New(cfg config.SpeechConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		voice:    cfg.Voice,
		httpc:    &http.Client{Timeout: requestTimeout},
		logger:   logger,
	}
}

// Enabled reports whether synthesis is configured.
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

type synthesisRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// Synthesize converts text to MP3 audio.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	if text == "" {
		return nil, errors.New("nothing to synthesize")
	}

	body, err := json.Marshal(synthesisRequest{
		Model: "tts-1",
		Input: text,
		Voice: c.voice,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling speech endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("speech endpoint returned %d: %s", resp.StatusCode, snippet)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading synthesized audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("speech endpoint returned no audio")
	}

	c.logger.DebugContext(ctx, "speech synthesized", "bytes", len(audio))
	return audio, nil
}
