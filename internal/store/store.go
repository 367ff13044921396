package store

import (
	"context"
	"time"

	"github.com/phrazzld/vocal-api/internal/domain"
)

// SeriesStore reads and mutates events in the remote calendar. Each call is a
// fresh remote round trip; implementations must map the remote's
// not-found/gone responses to ErrNotFound so idempotent callers can treat
// them as already-satisfied.
// Version: 1.0
type SeriesStore interface {
	// GetEvent fetches one event by id.
	GetEvent(ctx context.Context, id string) (*domain.CalendarEvent, error)

	// ListEvents returns up to limit single (expanded) events ordered by
	// start time within [timeMin, timeMax].
	ListEvents(ctx context.Context, timeMin, timeMax time.Time, limit int) ([]*domain.CalendarEvent, error)

	// ListInstances returns the materialized instances of a series within
	// [timeMin, timeMax], ordered by start time.
	ListInstances(ctx context.Context, seriesID string, timeMin, timeMax time.Time) ([]*domain.CalendarEvent, error)

	// CreateEvent creates a new event (or series, when fields carry
	// recurrence) and returns the stored entity.
	CreateEvent(ctx context.Context, fields domain.EventFields) (*domain.CalendarEvent, error)

	// UpdateEvent replaces the named event's fields and returns the stored
	// entity.
	UpdateEvent(ctx context.Context, id string, event *domain.CalendarEvent) (*domain.CalendarEvent, error)

	// DeleteEvent hard-deletes the named event. Deleting a series master
	// removes all its instances transitively.
	DeleteEvent(ctx context.Context, id string) error
}
