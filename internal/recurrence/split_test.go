package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/vocal-api/internal/domain"
)

func TestComputeSplit_WeeklyMonday(t *testing.T) {
	t.Parallel()

	// Series of Monday meetings; the caller retitles from the Monday
	// 2025-06-16 onwards. The original series must be trimmed to the
	// preceding Sunday 23:59:59Z and the continuation keeps the bare rule.
	targetStart := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	newStart := targetStart

	plan, err := ComputeSplit(
		[]string{"RRULE:FREQ=WEEKLY;BYDAY=MO"},
		targetStart, time.Hour, newStart, nil,
	)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC), plan.Cutoff)
	assert.Equal(t, []string{"RRULE:FREQ=WEEKLY;BYDAY=MO;UNTIL=20250615T235959Z"}, plan.TrimmedRecurrence)
	assert.Equal(t, []string{"RRULE:FREQ=WEEKLY;BYDAY=MO"}, plan.ContinuationRecurrence)
	assert.Equal(t, newStart, plan.NewStart)
	assert.Equal(t, newStart.Add(time.Hour), plan.NewEnd, "duration preserved when no explicit end")
}

func TestComputeSplit_ExplicitEnd(t *testing.T) {
	t.Parallel()

	targetStart := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	newEnd := targetStart.Add(2 * time.Hour)

	plan, err := ComputeSplit(
		[]string{"RRULE:FREQ=WEEKLY;BYDAY=MO"},
		targetStart, time.Hour, targetStart, &newEnd,
	)
	require.NoError(t, err)
	assert.Equal(t, newEnd, plan.NewEnd)
}

func TestComputeSplit_PreservesOriginalUntilInContinuation(t *testing.T) {
	t.Parallel()

	original := []string{"RRULE:FREQ=WEEKLY;BYDAY=MO;UNTIL=20261231T235959Z"}
	targetStart := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)

	plan, err := ComputeSplit(original, targetStart, time.Hour, targetStart, nil)
	require.NoError(t, err)

	// Trim strips the old bound before adding the cutoff.
	assert.Equal(t,
		[]string{"RRULE:FREQ=WEEKLY;BYDAY=MO;UNTIL=20250615T235959Z"},
		plan.TrimmedRecurrence)

	// The continuation keeps the original bound exactly.
	assert.Equal(t, original, plan.ContinuationRecurrence)
}

func TestComputeSplit_PassesThroughNonRuleLines(t *testing.T) {
	t.Parallel()

	original := []string{
		"RRULE:FREQ=DAILY;COUNT=30",
		"EXDATE:20250620T090000Z",
	}
	targetStart := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)

	plan, err := ComputeSplit(original, targetStart, time.Hour, targetStart, nil)
	require.NoError(t, err)

	assert.Equal(t, "EXDATE:20250620T090000Z", plan.TrimmedRecurrence[1])
	assert.Equal(t, "EXDATE:20250620T090000Z", plan.ContinuationRecurrence[1])
}

func TestComputeSplit_NoRecurrence(t *testing.T) {
	t.Parallel()

	_, err := ComputeSplit(nil, time.Now(), time.Hour, time.Now(), nil)
	assert.ErrorIs(t, err, domain.ErrNoRecurrence)
}

func TestComputeSplit_MidnightCrossing(t *testing.T) {
	t.Parallel()

	// A target instance in a non-UTC zone that maps to a different UTC day:
	// the cutoff is computed against the UTC calendar day.
	loc := time.FixedZone("UTC+10", 10*3600)
	targetStart := time.Date(2025, 6, 16, 8, 0, 0, 0, loc) // 2025-06-15T22:00Z

	plan, err := ComputeSplit([]string{"RRULE:FREQ=DAILY"}, targetStart, time.Hour, targetStart, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 14, 23, 59, 59, 0, time.UTC), plan.Cutoff)
}

// Boundary property: after the split, the trimmed series'
// last possible occurrence lands strictly before the target's UTC calendar
// day, while the continuation's first occurrence is exactly the new start.
func TestComputeSplit_BoundaryProperty(t *testing.T) {
	t.Parallel()

	seriesStart := time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC) // first Monday
	targetStart := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)

	plan, err := ComputeSplit(
		[]string{"RRULE:FREQ=WEEKLY;BYDAY=MO"},
		targetStart, time.Hour, targetStart, nil,
	)
	require.NoError(t, err)

	window := 2 * 365 * 24 * time.Hour
	trimmedOcc, err := Occurrences(plan.TrimmedRecurrence, seriesStart, seriesStart, seriesStart.Add(window))
	require.NoError(t, err)
	require.NotEmpty(t, trimmedOcc)

	targetDay := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	last := trimmedOcc[len(trimmedOcc)-1]
	assert.True(t, last.Before(targetDay),
		"trimmed series still owns %v on/after the transition day", last)

	contOcc, err := Occurrences(plan.ContinuationRecurrence, plan.NewStart, plan.NewStart, plan.NewStart.Add(window))
	require.NoError(t, err)
	require.NotEmpty(t, contOcc)
	assert.True(t, contOcc[0].Equal(plan.NewStart),
		"continuation must begin exactly at the new start, got %v", contOcc[0])
}
