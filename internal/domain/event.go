package domain

import "time"

// EventStatus is the remote store's lifecycle state for an event.
type EventStatus string

// Possible event status values.
const (
	EventStatusConfirmed EventStatus = "confirmed"
	EventStatusCancelled EventStatus = "cancelled"
)

// CalendarEvent is a point-in-time read of a remote calendar entity. The
// remote store owns it; this system holds no authoritative copy and always
// re-fetches before mutating.
type CalendarEvent struct {
	// ID is the remote store's identifier for this event.
	ID string

	// Title is the event summary line.
	Title string

	// Start and End are nil for all-day events, which carry only a date.
	Start *time.Time
	End   *time.Time

	Location    string
	Description string
	Attendees   []string

	// Recurrence holds zero or more RRULE-family strings (RRULE, EXDATE,
	// RDATE). Only series masters carry recurrence; instances never do.
	Recurrence []string

	// SeriesID is set when this event is a materialized instance of a
	// recurring series, and names the series master.
	SeriesID string

	Status EventStatus
}

// IsInstance reports whether the event is a materialized occurrence of a
// recurring series.
func (e *CalendarEvent) IsInstance() bool {
	return e.SeriesID != ""
}

// IsSeriesMaster reports whether the event is the recurring series definition
// itself.
func (e *CalendarEvent) IsSeriesMaster() bool {
	return e.SeriesID == "" && len(e.Recurrence) > 0
}

// Duration returns the event's duration, or zero if either bound is missing.
func (e *CalendarEvent) Duration() time.Duration {
	if e.Start == nil || e.End == nil {
		return 0
	}
	return e.End.Sub(*e.Start)
}

// OccurringAt reports whether the event is in progress at the given instant.
// Events without concrete timestamps are never considered occurring.
func (e *CalendarEvent) OccurringAt(t time.Time) bool {
	if e.Start == nil || e.End == nil {
		return false
	}
	return !t.Before(*e.Start) && !t.After(*e.End)
}

// EventFields carries the field values for a create or update. Zero values
// mean "leave unset"; Start is required for creates.
type EventFields struct {
	Title       string
	Start       time.Time
	End         *time.Time
	Location    string
	Description string
	Attendees   []string
	Recurrence  []string
}

// Scope expresses how far an update or delete propagates across a series.
type Scope string

// Recognized scope tokens.
const (
	ScopeThisEvent        Scope = "this_event"
	ScopeThisAndFollowing Scope = "this_and_following"
	ScopeAllEvents        Scope = "all_events"
)

// Valid reports whether s is a recognized scope token.
func (s Scope) Valid() bool {
	switch s {
	case ScopeThisEvent, ScopeThisAndFollowing, ScopeAllEvents:
		return true
	}
	return false
}

// ScopeRequest is one update or delete call against a (possibly recurring)
// event. It is transient and owned by the request that created it.
type ScopeRequest struct {
	// TargetEventID names the instance or master the caller pointed at.
	TargetEventID string

	// Scope is the caller's propagation intent.
	Scope Scope

	// Fields holds the new values for updates. It is ignored for deletes.
	Fields EventFields
}

// Validate checks the request's required inputs.
func (r *ScopeRequest) Validate() error {
	if r.TargetEventID == "" {
		return ErrMissingEventID
	}
	if !r.Scope.Valid() {
		return ErrInvalidScope
	}
	return nil
}
