package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/vocal-api/internal/api/shared"
	"github.com/phrazzld/vocal-api/internal/domain"
	"github.com/phrazzld/vocal-api/internal/service"
)

// EventsHandler serves the reminder flow: ask what is happening right now
// and get back a job that produces the spoken announcement.
type EventsHandler struct {
	reminders *service.ReminderService
	logger    *slog.Logger
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(reminders *service.ReminderService, logger *slog.Logger) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{reminders: reminders, logger: logger}
}

// Current handles GET /api/events/current. When an event is in progress it
// queues the announcement and returns 202 with the job to poll; with nothing
// occurring it returns 204.
func (h *EventsHandler) Current(w http.ResponseWriter, r *http.Request) {
	jobID, event, err := h.reminders.Announce(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrNothingOccurring) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, CurrentEventResponse{
		JobID:  jobID,
		Event:  eventView(event),
		Status: domain.JobStatusProcessing,
	})
}

func eventView(ev *domain.CalendarEvent) *EventView {
	view := &EventView{
		ID:       ev.ID,
		Title:    ev.Title,
		Location: ev.Location,
	}
	if ev.Start != nil {
		view.Start = ev.Start.Format(time.RFC3339)
	}
	if ev.End != nil {
		view.End = ev.End.Format(time.RFC3339)
	}
	return view
}
