package recurrence

import (
	"time"

	"github.com/phrazzld/vocal-api/internal/domain"
)

// SplitPlan is the derived value for a this_and_following update: the trimmed
// bound for the original series and the recurrence the continuation series
// starts with. It is computed, never stored.
type SplitPlan struct {
	// Cutoff is the UNTIL instant applied to the original series. It is
	// strictly before the continuation's first occurrence and never falls on
	// that occurrence's calendar day, so the two series cannot both
	// materialize an instance on the transition day.
	Cutoff time.Time

	// TrimmedRecurrence is the original rule set with UNTIL/COUNT stripped
	// and the cutoff appended as UNTIL. Non-RRULE lines pass through.
	TrimmedRecurrence []string

	// ContinuationRecurrence is the original, untouched rule set. An
	// original UNTIL bound survives into the continuation.
	ContinuationRecurrence []string

	// NewStart and NewEnd bound the continuation series' first occurrence.
	NewStart time.Time
	NewEnd   time.Time
}

// ComputeSplit builds the plan for splitting a series at targetStart. The
// original recurrence must be the untouched rule set read from the series
// master before any mutation. When newEnd is nil the target instance's
// duration is preserved.
func ComputeSplit(
	original []string,
	targetStart time.Time,
	targetDuration time.Duration,
	newStart time.Time,
	newEnd *time.Time,
) (SplitPlan, error) {
	if !hasRule(original) {
		return SplitPlan{}, domain.ErrNoRecurrence
	}

	// Cutoff at day grain, not minute grain: one second before the UTC start
	// of the target instance's calendar day. Recurrence expansion rounds at
	// day boundaries, so a minute-grain cutoff could leave the trimmed series
	// still owning an occurrence on the transition day.
	utcStart := targetStart.UTC()
	dayStart := time.Date(utcStart.Year(), utcStart.Month(), utcStart.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := dayStart.Add(-time.Second)

	trimmed := make([]string, 0, len(original))
	for _, line := range original {
		if !IsRule(line) {
			trimmed = append(trimmed, line)
			continue
		}
		r, err := ParseRule(line)
		if err != nil {
			return SplitPlan{}, err
		}
		trimmed = append(trimmed, r.WithoutBounds().WithUntil(cutoff).String())
	}

	continuation := make([]string, len(original))
	copy(continuation, original)

	end := newStart.Add(targetDuration)
	if newEnd != nil {
		end = *newEnd
	}

	return SplitPlan{
		Cutoff:                 cutoff,
		TrimmedRecurrence:      trimmed,
		ContinuationRecurrence: continuation,
		NewStart:               newStart,
		NewEnd:                 end,
	}, nil
}

func hasRule(rules []string) bool {
	for _, line := range rules {
		if IsRule(line) {
			return true
		}
	}
	return false
}
