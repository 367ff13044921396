package googlecal

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/phrazzld/vocal-api/internal/domain"
	"github.com/phrazzld/vocal-api/internal/store"
)

func TestWrapErrMapsMissingEvents(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notFound bool
	}{
		{"404", &googleapi.Error{Code: http.StatusNotFound}, true},
		{"410 gone", &googleapi.Error{Code: http.StatusGone}, true},
		{"403", &googleapi.Error{Code: http.StatusForbidden}, false},
		{"plain error", fmt.Errorf("connection refused"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := wrapErr("get", "ev1", tc.err)
			assert.Equal(t, tc.notFound, store.IsNotFoundError(wrapped))
		})
	}
}

func TestFromAPIMapsInstanceFields(t *testing.T) {
	ev := &calendar.Event{
		Id:               "master_20250310",
		Summary:          "Standup",
		Location:         "Room 1",
		Status:           "confirmed",
		RecurringEventId: "master",
		Start:            &calendar.EventDateTime{DateTime: "2025-03-10T09:00:00Z"},
		End:              &calendar.EventDateTime{DateTime: "2025-03-10T09:30:00Z"},
		Attendees: []*calendar.EventAttendee{
			{Email: "a@example.com"},
			{Email: "b@example.com"},
		},
	}

	out := fromAPI(ev)
	assert.Equal(t, "master_20250310", out.ID)
	assert.Equal(t, "master", out.SeriesID)
	assert.True(t, out.IsInstance())
	assert.Equal(t, domain.EventStatusConfirmed, out.Status)
	require.NotNil(t, out.Start)
	assert.Equal(t, 30*time.Minute, out.Duration())
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, out.Attendees)
}

func TestFromAPIAllDayEventHasNoTimestamps(t *testing.T) {
	ev := &calendar.Event{
		Id:    "allday",
		Start: &calendar.EventDateTime{Date: "2025-03-10"},
		End:   &calendar.EventDateTime{Date: "2025-03-11"},
	}

	out := fromAPI(ev)
	assert.Nil(t, out.Start)
	assert.Nil(t, out.End)
	assert.False(t, out.OccurringAt(time.Now()))
}

func TestToAPIRoundTripsRecurrence(t *testing.T) {
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	ev := &domain.CalendarEvent{
		ID:         "master",
		Title:      "Standup",
		Start:      &start,
		End:        &end,
		Recurrence: []string{"RRULE:FREQ=WEEKLY;BYDAY=MO"},
		Status:     domain.EventStatusConfirmed,
	}

	api := toAPI(ev)
	assert.Equal(t, []string{"RRULE:FREQ=WEEKLY;BYDAY=MO"}, api.Recurrence)
	assert.Equal(t, "2025-03-03T09:00:00Z", api.Start.DateTime)
	assert.Equal(t, "confirmed", api.Status)

	back := fromAPI(api)
	assert.Equal(t, ev.Recurrence, back.Recurrence)
	assert.Equal(t, start, *back.Start)
}
