package service

import (
	"context"
	"time"

	"github.com/phrazzld/vocal-api/internal/domain"
	"github.com/phrazzld/vocal-api/internal/retry"
)

// Provider calls reach remote LLM and TTS backends and fail transiently the
// same way calendar calls do, so they run under the same retry budget. The
// decorators below mirror store.NewRetrying.

type retryingTranscriber struct {
	inner Transcriber
	cfg   retry.Config
}

// NewRetryingTranscriber wraps inner so each transcription runs under the
// given retry budget.
func NewRetryingTranscriber(inner Transcriber, cfg retry.Config) Transcriber {
	return &retryingTranscriber{inner: inner, cfg: cfg}
}

func (t *retryingTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return retry.Do(ctx, t.cfg, func(ctx context.Context) (string, error) {
		return t.inner.Transcribe(ctx, audio, mimeType)
	})
}

type retryingExtractor struct {
	inner IntentExtractor
	cfg   retry.Config
}

// NewRetryingExtractor wraps inner so each intent extraction runs under the
// given retry budget.
func NewRetryingExtractor(inner IntentExtractor, cfg retry.Config) IntentExtractor {
	return &retryingExtractor{inner: inner, cfg: cfg}
}

func (e *retryingExtractor) ExtractIntent(
	ctx context.Context,
	transcript string,
	events []*domain.CalendarEvent,
	now time.Time,
) (*domain.Intent, error) {
	return retry.Do(ctx, e.cfg, func(ctx context.Context) (*domain.Intent, error) {
		return e.inner.ExtractIntent(ctx, transcript, events, now)
	})
}

type retryingComposer struct {
	inner ReminderComposer
	cfg   retry.Config
}

// NewRetryingComposer wraps inner so each reminder composition runs under
// the given retry budget.
func NewRetryingComposer(inner ReminderComposer, cfg retry.Config) ReminderComposer {
	return &retryingComposer{inner: inner, cfg: cfg}
}

func (c *retryingComposer) ComposeReminder(ctx context.Context, event *domain.CalendarEvent) (string, error) {
	return retry.Do(ctx, c.cfg, func(ctx context.Context) (string, error) {
		return c.inner.ComposeReminder(ctx, event)
	})
}

type retryingSynthesizer struct {
	inner SpeechSynthesizer
	cfg   retry.Config
}

// NewRetryingSynthesizer wraps inner so each synthesis runs under the given
// retry budget. Enabled passes through untouched.
func NewRetryingSynthesizer(inner SpeechSynthesizer, cfg retry.Config) SpeechSynthesizer {
	return &retryingSynthesizer{inner: inner, cfg: cfg}
}

func (s *retryingSynthesizer) Enabled() bool { return s.inner.Enabled() }

func (s *retryingSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return retry.Do(ctx, s.cfg, func(ctx context.Context) ([]byte, error) {
		return s.inner.Synthesize(ctx, text)
	})
}
