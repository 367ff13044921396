// Package service wires the audio processing pipeline together: transcribe
// an upload, extract the calendar intent behind it, apply that intent to the
// remote calendar, and publish the job's terminal status.
package service

import (
	"context"
	"time"

	"github.com/phrazzld/vocal-api/internal/domain"
)

// Transcriber converts recorded audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// IntentExtractor derives a structured calendar intent from a transcript.
// The events give the extractor the IDs it may reference; now anchors
// relative time expressions.
type IntentExtractor interface {
	ExtractIntent(ctx context.Context, transcript string, events []*domain.CalendarEvent, now time.Time) (*domain.Intent, error)
}

// ReminderComposer writes the spoken reminder line for an event.
type ReminderComposer interface {
	ComposeReminder(ctx context.Context, event *domain.CalendarEvent) (string, error)
}

// SpeechSynthesizer turns text into encoded audio. Enabled reports whether
// a backend is configured; callers skip synthesis when it is not.
type SpeechSynthesizer interface {
	Enabled() bool
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// ScopeResolver applies scoped updates and deletes to recurring events.
type ScopeResolver interface {
	Update(ctx context.Context, req domain.ScopeRequest) (*domain.CalendarEvent, error)
	Delete(ctx context.Context, req domain.ScopeRequest) error
	CancelOccurrence(ctx context.Context, event *domain.CalendarEvent, occursAt time.Time) error
}
