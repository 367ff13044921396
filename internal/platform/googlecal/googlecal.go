// Package googlecal adapts the Google Calendar API to the store.SeriesStore
// interface. All event state lives on the remote calendar; this adapter only
// translates between domain values and the API's wire types.
package googlecal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/phrazzld/vocal-api/internal/config"
	"github.com/phrazzld/vocal-api/internal/domain"
	"github.com/phrazzld/vocal-api/internal/store"
)

// reminder defaults applied to every created event.
const (
	emailReminderMinutes = 1440
	popupReminderMinutes = 10
)

// Store is a SeriesStore backed by one Google calendar.
type Store struct {
	svc        *calendar.Service
	calendarID string
	logger     *slog.Logger
}

// compile-time interface check
var _ store.SeriesStore = (*Store)(nil)

// New connects to the Google Calendar API with the configured service
// account credentials.
func New(ctx context.Context, cfg config.CalendarConfig, logger *slog.Logger) (*Store, error) {
	svc, err := calendar.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{svc: svc, calendarID: cfg.CalendarID, logger: logger}, nil
}

// GetEvent fetches one event by ID.
func (s *Store) GetEvent(ctx context.Context, id string) (*domain.CalendarEvent, error) {
	ev, err := s.svc.Events.Get(s.calendarID, id).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("get", id, err)
	}
	return fromAPI(ev), nil
}

// ListEvents returns single (non-expanded) events overlapping the window,
// ordered by start time.
func (s *Store) ListEvents(ctx context.Context, timeMin, timeMax time.Time, limit int) ([]*domain.CalendarEvent, error) {
	call := s.svc.Events.List(s.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if limit > 0 {
		call = call.MaxResults(int64(limit))
	}

	res, err := call.Do()
	if err != nil {
		return nil, wrapErr("list", "", err)
	}

	out := make([]*domain.CalendarEvent, 0, len(res.Items))
	for _, item := range res.Items {
		out = append(out, fromAPI(item))
	}
	return out, nil
}

// ListInstances returns the materialized instances of a recurring series
// within the window.
func (s *Store) ListInstances(ctx context.Context, seriesID string, timeMin, timeMax time.Time) ([]*domain.CalendarEvent, error) {
	res, err := s.svc.Events.Instances(s.calendarID, seriesID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapErr("instances", seriesID, err)
	}

	out := make([]*domain.CalendarEvent, 0, len(res.Items))
	for _, item := range res.Items {
		out = append(out, fromAPI(item))
	}
	return out, nil
}

// CreateEvent inserts a new event with default reminders and attendee
// notifications enabled.
func (s *Store) CreateEvent(ctx context.Context, fields domain.EventFields) (*domain.CalendarEvent, error) {
	if fields.Start.IsZero() {
		return nil, domain.ErrMissingStartTime
	}

	ev := &calendar.Event{
		Summary:     fields.Title,
		Location:    fields.Location,
		Description: fields.Description,
		Start:       apiTime(fields.Start),
		Recurrence:  fields.Recurrence,
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: emailReminderMinutes},
				{Method: "popup", Minutes: popupReminderMinutes},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
	if fields.End != nil {
		ev.End = apiTime(*fields.End)
	} else {
		ev.End = apiTime(fields.Start.Add(time.Hour))
	}
	for _, email := range fields.Attendees {
		ev.Attendees = append(ev.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := s.svc.Events.Insert(s.calendarID, ev).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapErr("create", "", err)
	}

	s.logger.Info("calendar event created", "event_id", created.Id)
	return fromAPI(created), nil
}

// UpdateEvent replaces an event's mutable fields.
func (s *Store) UpdateEvent(ctx context.Context, id string, event *domain.CalendarEvent) (*domain.CalendarEvent, error) {
	ev := toAPI(event)
	updated, err := s.svc.Events.Update(s.calendarID, id, ev).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapErr("update", id, err)
	}
	return fromAPI(updated), nil
}

// DeleteEvent removes an event. Deleting a series master removes all of its
// instances.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	err := s.svc.Events.Delete(s.calendarID, id).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return wrapErr("delete", id, err)
	}
	return nil
}

// wrapErr maps API failures onto store errors. Gone and NotFound both mean
// the event no longer exists.
func wrapErr(op, id string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone {
			return store.NewStoreError(op, id, store.ErrNotFound)
		}
	}
	return store.NewStoreError(op, id, err)
}

func fromAPI(ev *calendar.Event) *domain.CalendarEvent {
	out := &domain.CalendarEvent{
		ID:          ev.Id,
		Title:       ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		Recurrence:  ev.Recurrence,
		SeriesID:    ev.RecurringEventId,
		Status:      domain.EventStatus(ev.Status),
	}
	out.Start = parseAPITime(ev.Start)
	out.End = parseAPITime(ev.End)
	for _, a := range ev.Attendees {
		out.Attendees = append(out.Attendees, a.Email)
	}
	return out
}

func toAPI(event *domain.CalendarEvent) *calendar.Event {
	ev := &calendar.Event{
		Summary:     event.Title,
		Location:    event.Location,
		Description: event.Description,
		Recurrence:  event.Recurrence,
		Status:      string(event.Status),
	}
	if event.Start != nil {
		ev.Start = apiTime(*event.Start)
	}
	if event.End != nil {
		ev.End = apiTime(*event.End)
	}
	for _, email := range event.Attendees {
		ev.Attendees = append(ev.Attendees, &calendar.EventAttendee{Email: email})
	}
	return ev
}

func apiTime(t time.Time) *calendar.EventDateTime {
	return &calendar.EventDateTime{DateTime: t.Format(time.RFC3339)}
}

// parseAPITime returns nil for all-day events, which carry only a date.
func parseAPITime(edt *calendar.EventDateTime) *time.Time {
	if edt == nil || edt.DateTime == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, edt.DateTime)
	if err != nil {
		return nil
	}
	return &t
}
