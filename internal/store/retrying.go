package store

import (
	"context"
	"time"

	"github.com/phrazzld/vocal-api/internal/domain"
	"github.com/phrazzld/vocal-api/internal/retry"
)

// retryingStore decorates a SeriesStore so every remote call is retried with
// exponential backoff. Remote mutations are not undone between attempts; the
// idempotency rules of the callers make retried deletes and updates safe.
type retryingStore struct {
	inner SeriesStore
	cfg   retry.Config
}

// NewRetrying wraps inner so each call runs under the given retry budget.
func NewRetrying(inner SeriesStore, cfg retry.Config) SeriesStore {
	return &retryingStore{inner: inner, cfg: cfg}
}

func (s *retryingStore) GetEvent(ctx context.Context, id string) (*domain.CalendarEvent, error) {
	return retry.Do(ctx, s.cfg, func(ctx context.Context) (*domain.CalendarEvent, error) {
		return s.inner.GetEvent(ctx, id)
	})
}

func (s *retryingStore) ListEvents(
	ctx context.Context,
	timeMin, timeMax time.Time,
	limit int,
) ([]*domain.CalendarEvent, error) {
	return retry.Do(ctx, s.cfg, func(ctx context.Context) ([]*domain.CalendarEvent, error) {
		return s.inner.ListEvents(ctx, timeMin, timeMax, limit)
	})
}

func (s *retryingStore) ListInstances(
	ctx context.Context,
	seriesID string,
	timeMin, timeMax time.Time,
) ([]*domain.CalendarEvent, error) {
	return retry.Do(ctx, s.cfg, func(ctx context.Context) ([]*domain.CalendarEvent, error) {
		return s.inner.ListInstances(ctx, seriesID, timeMin, timeMax)
	})
}

func (s *retryingStore) CreateEvent(
	ctx context.Context,
	fields domain.EventFields,
) (*domain.CalendarEvent, error) {
	return retry.Do(ctx, s.cfg, func(ctx context.Context) (*domain.CalendarEvent, error) {
		return s.inner.CreateEvent(ctx, fields)
	})
}

func (s *retryingStore) UpdateEvent(
	ctx context.Context,
	id string,
	event *domain.CalendarEvent,
) (*domain.CalendarEvent, error) {
	return retry.Do(ctx, s.cfg, func(ctx context.Context) (*domain.CalendarEvent, error) {
		return s.inner.UpdateEvent(ctx, id, event)
	})
}

func (s *retryingStore) DeleteEvent(ctx context.Context, id string) error {
	_, err := retry.Do(ctx, s.cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.inner.DeleteEvent(ctx, id)
	})
	return err
}
