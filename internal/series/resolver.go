// Package series decides, from a caller's scope token, exactly which remote
// mutations a recurring-event update or delete requires, including the
// series-splitting arithmetic for this_and_following and idempotent
// delete/cancel handling.
package series

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/vocal-api/internal/domain"
	"github.com/phrazzld/vocal-api/internal/recurrence"
	"github.com/phrazzld/vocal-api/internal/store"
)

const (
	// instanceLookahead bounds how far ahead materialized instances are
	// listed when resolving a split point from a series master.
	instanceLookahead = 90 * 24 * time.Hour

	// cleanupTimeout bounds the detached transition-day cleanup, which runs
	// on its own context so caller cancellation never kills it.
	cleanupTimeout = 2 * time.Minute

	// defaultEventDuration applies when neither the caller nor the target
	// provides an end time.
	defaultEventDuration = time.Hour

	// instanceMatchTolerance is how far an instance's start may deviate from
	// a requested occurrence time and still be considered the same
	// occurrence.
	instanceMatchTolerance = time.Minute
)

// Resolver turns scope requests into remote store mutations. Each call is a
// one-shot decision; the resolver keeps no state between calls and always
// re-fetches the target before mutating.
type Resolver struct {
	store  store.SeriesStore
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewResolver creates a Resolver on top of the given store. The store should
// already retry transient failures; the resolver adds no retry of its own.
func NewResolver(st store.SeriesStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: st, logger: logger}
}

// Close waits for any detached cleanup work to finish.
func (r *Resolver) Close() {
	r.wg.Wait()
}

// Update applies a scoped update and returns the authoritative stored event:
// the mutated event for single-target scopes, or the newly created
// continuation series for this_and_following.
func (r *Resolver) Update(ctx context.Context, req domain.ScopeRequest) (*domain.CalendarEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	target, err := r.store.GetEvent(ctx, req.TargetEventID)
	if err != nil {
		return nil, fmt.Errorf("fetching target event: %w", err)
	}

	if !target.IsInstance() && !target.IsSeriesMaster() {
		return r.updateSingle(ctx, target, req.Fields)
	}

	switch req.Scope {
	case domain.ScopeThisEvent:
		return r.updateSingle(ctx, target, req.Fields)
	case domain.ScopeAllEvents:
		return r.updateWholeSeries(ctx, target, req.Fields)
	case domain.ScopeThisAndFollowing:
		return r.splitSeries(ctx, target, req.Fields)
	}
	return nil, domain.ErrInvalidScope
}

// Delete applies a scoped delete or cancel. Not-found and already-cancelled
// responses are success: concurrent or retried callers racing to remove the
// same target are expected.
func (r *Resolver) Delete(ctx context.Context, req domain.ScopeRequest) error {
	if req.TargetEventID == "" {
		return domain.ErrMissingEventID
	}
	scope := req.Scope
	if scope == "" {
		scope = domain.ScopeAllEvents
	}

	target, err := r.store.GetEvent(ctx, req.TargetEventID)
	if err != nil {
		if store.IsNotFoundError(err) {
			r.logger.Info("event already deleted, treating as success", "event_id", req.TargetEventID)
			return nil
		}
		return fmt.Errorf("fetching target event: %w", err)
	}

	if target.IsInstance() {
		if scope == domain.ScopeThisEvent {
			return r.cancelInstance(ctx, target)
		}
		// Deleting the master removes all instances transitively.
		return r.deleteByID(ctx, target.SeriesID)
	}

	return r.deleteByID(ctx, target.ID)
}

// CancelOccurrence removes a single occurrence of an event that has just been
// announced: instances are cancelled, series masters have the matching
// materialized instance cancelled, singletons are hard-deleted.
func (r *Resolver) CancelOccurrence(ctx context.Context, event *domain.CalendarEvent, occursAt time.Time) error {
	switch {
	case event.IsInstance():
		return r.cancelInstance(ctx, event)
	case event.IsSeriesMaster():
		return r.cancelSeriesOccurrence(ctx, event.ID, occursAt)
	default:
		return r.deleteByID(ctx, event.ID)
	}
}

// updateSingle mutates one event in place. The recurrence field is never
// touched: instances never carry their own recurrence, and a singleton has
// none to change.
func (r *Resolver) updateSingle(
	ctx context.Context,
	target *domain.CalendarEvent,
	fields domain.EventFields,
) (*domain.CalendarEvent, error) {
	updated := *target
	applyShared(&updated, fields)
	applyTimes(&updated, fields)

	stored, err := r.store.UpdateEvent(ctx, target.ID, &updated)
	if err != nil {
		return nil, fmt.Errorf("updating event: %w", err)
	}
	r.logger.Info("event updated", "event_id", target.ID, "scope", domain.ScopeThisEvent)
	return stored, nil
}

// updateWholeSeries mutates the series master's shared fields while
// preserving its recurrence and its start/end exactly.
func (r *Resolver) updateWholeSeries(
	ctx context.Context,
	target *domain.CalendarEvent,
	fields domain.EventFields,
) (*domain.CalendarEvent, error) {
	master := target
	if target.IsInstance() {
		var err error
		master, err = r.store.GetEvent(ctx, target.SeriesID)
		if err != nil {
			return nil, fmt.Errorf("fetching series master: %w", err)
		}
	}

	updated := *master
	applyShared(&updated, fields)

	stored, err := r.store.UpdateEvent(ctx, master.ID, &updated)
	if err != nil {
		return nil, fmt.Errorf("updating series master: %w", err)
	}
	r.logger.Info("series updated", "series_id", master.ID, "scope", domain.ScopeAllEvents)
	return stored, nil
}

// splitSeries performs the two-phase this_and_following split: trim the
// original series to end before the target's calendar day, then create a
// continuation series with the caller's new values. The trim must commit
// before the create; a detached best-effort pass then removes any
// materialized duplicate left on the transition day.
func (r *Resolver) splitSeries(
	ctx context.Context,
	target *domain.CalendarEvent,
	fields domain.EventFields,
) (*domain.CalendarEvent, error) {
	masterID := target.ID
	if target.IsInstance() {
		masterID = target.SeriesID
	}

	master, err := r.store.GetEvent(ctx, masterID)
	if err != nil {
		return nil, fmt.Errorf("fetching series master: %w", err)
	}
	if len(master.Recurrence) == 0 {
		return nil, domain.ErrNoRecurrence
	}

	instance, err := r.resolveSplitInstance(ctx, target, master)
	if err != nil {
		return nil, err
	}
	if instance.Start == nil {
		return nil, domain.ErrMissingStartTime
	}
	targetStart := *instance.Start

	duration := instance.Duration()
	if duration <= 0 {
		duration = defaultEventDuration
	}

	newStart := fields.Start
	if newStart.IsZero() {
		newStart = targetStart
	}

	plan, err := recurrence.ComputeSplit(master.Recurrence, targetStart, duration, newStart, fields.End)
	if err != nil {
		return nil, err
	}

	r.logger.Info("splitting recurring series",
		"series_id", master.ID,
		"target_start", targetStart,
		"cutoff", plan.Cutoff,
		"new_start", plan.NewStart)

	// Phase one: trim the original, leaving everything but recurrence as-is.
	trimmed := *master
	trimmed.Recurrence = plan.TrimmedRecurrence
	if _, err := r.store.UpdateEvent(ctx, master.ID, &trimmed); err != nil {
		return nil, fmt.Errorf("trimming original series: %w", err)
	}

	// Phase two: the continuation series with the caller's new values.
	created, err := r.store.CreateEvent(ctx, domain.EventFields{
		Title:       fields.Title,
		Start:       plan.NewStart,
		End:         &plan.NewEnd,
		Location:    fields.Location,
		Description: fields.Description,
		Attendees:   fields.Attendees,
		Recurrence:  plan.ContinuationRecurrence,
	})
	if err != nil {
		return nil, fmt.Errorf("creating continuation series: %w", err)
	}

	r.logger.Info("continuation series created",
		"old_series_id", master.ID,
		"new_series_id", created.ID)

	r.scheduleCleanup(master.ID, fields.Title, targetStart)
	return created, nil
}

// resolveSplitInstance pins down the concrete occurrence the split pivots on.
// When the caller pointed at an instance it is used directly; when they
// pointed at the master, the next materialized instance within the lookahead
// window is taken.
func (r *Resolver) resolveSplitInstance(
	ctx context.Context,
	target, master *domain.CalendarEvent,
) (*domain.CalendarEvent, error) {
	if target.IsInstance() {
		return target, nil
	}

	now := time.Now().UTC()
	instances, err := r.store.ListInstances(ctx, master.ID, now, now.Add(instanceLookahead))
	if err != nil {
		return nil, fmt.Errorf("listing series instances: %w", err)
	}
	for _, inst := range instances {
		if inst.Start != nil {
			return inst, nil
		}
	}
	return nil, domain.ErrMissingStartTime
}

// cancelInstance marks a materialized instance cancelled rather than hard
// deleting it, so the series' occurrence shape stays intact.
func (r *Resolver) cancelInstance(ctx context.Context, instance *domain.CalendarEvent) error {
	if instance.Status == domain.EventStatusCancelled {
		r.logger.Info("instance already cancelled, treating as success", "event_id", instance.ID)
		return nil
	}

	cancelled := *instance
	cancelled.Status = domain.EventStatusCancelled
	if _, err := r.store.UpdateEvent(ctx, instance.ID, &cancelled); err != nil {
		if store.IsNotFoundError(err) {
			r.logger.Info("instance already removed, treating as success", "event_id", instance.ID)
			return nil
		}
		return fmt.Errorf("cancelling instance: %w", err)
	}
	r.logger.Info("instance cancelled", "event_id", instance.ID)
	return nil
}

// cancelSeriesOccurrence finds the materialized instance of the series
// closest to occursAt (within tolerance) and cancels it.
func (r *Resolver) cancelSeriesOccurrence(ctx context.Context, seriesID string, occursAt time.Time) error {
	dayStart := occursAt.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24*time.Hour - time.Second)

	instances, err := r.store.ListInstances(ctx, seriesID, dayStart, dayEnd)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("listing series instances: %w", err)
	}

	for _, inst := range instances {
		if inst.Start == nil {
			continue
		}
		drift := inst.Start.Sub(occursAt)
		if drift < 0 {
			drift = -drift
		}
		if drift < instanceMatchTolerance {
			return r.cancelInstance(ctx, inst)
		}
	}

	// Nothing to cancel; a concurrent caller likely got there first.
	r.logger.Info("occurrence not found, may already be cancelled",
		"series_id", seriesID, "occurs_at", occursAt)
	return nil
}

// deleteByID hard-deletes, treating absence as success.
func (r *Resolver) deleteByID(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrMissingEventID
	}
	if err := r.store.DeleteEvent(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			r.logger.Info("event already deleted, treating as success", "event_id", id)
			return nil
		}
		return fmt.Errorf("deleting event: %w", err)
	}
	r.logger.Info("event deleted", "event_id", id)
	return nil
}

// applyShared copies the caller's shared-field values onto the event. Empty
// values leave the stored field alone.
func applyShared(ev *domain.CalendarEvent, fields domain.EventFields) {
	if fields.Title != "" {
		ev.Title = fields.Title
	}
	if fields.Location != "" {
		ev.Location = fields.Location
	}
	if fields.Description != "" {
		ev.Description = fields.Description
	}
	if len(fields.Attendees) > 0 {
		ev.Attendees = fields.Attendees
	}
}

// applyTimes moves the event to the caller's new start, preserving the
// original duration when no explicit end is given.
func applyTimes(ev *domain.CalendarEvent, fields domain.EventFields) {
	if fields.Start.IsZero() {
		return
	}
	duration := ev.Duration()
	if duration <= 0 {
		duration = defaultEventDuration
	}
	start := fields.Start
	end := start.Add(duration)
	if fields.End != nil {
		end = *fields.End
	}
	ev.Start = &start
	ev.End = &end
}
