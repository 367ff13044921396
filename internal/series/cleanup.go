package series

import (
	"context"
	"time"

	"github.com/phrazzld/vocal-api/internal/store"
)

// cleanupListLimit caps how many transition-day events a cleanup pass
// inspects.
const cleanupListLimit = 50

// scheduleCleanup launches the best-effort removal of materialized old-series
// instances left on the transition day after a split. It runs detached with
// its own deadline; failures are logged and swallowed because the split
// itself already committed.
func (r *Resolver) scheduleCleanup(oldSeriesID, newTitle string, transition time.Time) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if err := r.cleanupTransitionDay(ctx, oldSeriesID, newTitle, transition); err != nil {
			r.logger.Warn("transition day cleanup failed",
				"old_series_id", oldSeriesID,
				"transition", transition,
				"error", err)
		}
	}()
}

// cleanupTransitionDay deletes instances of the old series that still fall on
// the transition calendar day. The trimmed UNTIL ends the series one second
// before that day starts, but an instance materialized before the trim can
// survive as a stale duplicate of the continuation's first occurrence.
func (r *Resolver) cleanupTransitionDay(ctx context.Context, oldSeriesID, newTitle string, transition time.Time) error {
	day := transition.UTC()
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Second)

	events, err := r.store.ListEvents(ctx, dayStart, dayEnd, cleanupListLimit)
	if err != nil {
		return err
	}

	removed := 0
	for _, ev := range events {
		if ev.SeriesID != oldSeriesID {
			continue
		}
		if newTitle != "" && ev.Title != "" && ev.Title != newTitle {
			continue
		}
		if err := r.store.DeleteEvent(ctx, ev.ID); err != nil {
			if store.IsNotFoundError(err) {
				continue
			}
			return err
		}
		removed++
	}

	if removed > 0 {
		r.logger.Info("removed stale transition day duplicates",
			"old_series_id", oldSeriesID, "count", removed)
	}
	return nil
}
