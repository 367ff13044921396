package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []string{
		"RRULE:FREQ=WEEKLY;BYDAY=MO",
		"RRULE:FREQ=DAILY;INTERVAL=2;COUNT=10",
		"RRULE:FREQ=MONTHLY;BYMONTHDAY=15;UNTIL=20251231T235959Z",
		"RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR;WKST=SU",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			t.Parallel()

			r, err := ParseRule(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, r.String(), "untouched rule must round-trip exactly")
		})
	}
}

func TestParseRule_Rejects(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"EXDATE:20250101T000000Z", "RRULE:", "RRULE:FREQ"} {
		_, err := ParseRule(raw)
		assert.Error(t, err, raw)
	}
}

func TestRule_WithoutBounds(t *testing.T) {
	t.Parallel()

	r, err := ParseRule("RRULE:FREQ=WEEKLY;UNTIL=20250601T000000Z;BYDAY=TU;COUNT=5")
	require.NoError(t, err)

	stripped := r.WithoutBounds()
	assert.Equal(t, "RRULE:FREQ=WEEKLY;BYDAY=TU", stripped.String())

	// The receiver is untouched.
	assert.Equal(t, "RRULE:FREQ=WEEKLY;UNTIL=20250601T000000Z;BYDAY=TU;COUNT=5", r.String())
}

func TestRule_WithUntil(t *testing.T) {
	t.Parallel()

	r, err := ParseRule("RRULE:FREQ=WEEKLY;BYDAY=MO")
	require.NoError(t, err)

	cutoff := time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, "RRULE:FREQ=WEEKLY;BYDAY=MO;UNTIL=20250615T235959Z", r.WithUntil(cutoff).String())
}

func TestFormatUntil_CompactUTC(t *testing.T) {
	t.Parallel()

	// Non-UTC inputs are converted before formatting.
	loc := time.FixedZone("CET", 3600)
	in := time.Date(2025, 7, 1, 0, 30, 0, 0, loc)
	assert.Equal(t, "20250630T233000Z", FormatUntil(in))
}

func TestOccurrences(t *testing.T) {
	t.Parallel()

	dtstart := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) // a Monday
	from := dtstart
	to := dtstart.AddDate(0, 0, 28)

	occ, err := Occurrences([]string{"RRULE:FREQ=WEEKLY;BYDAY=MO"}, dtstart, from, to)
	require.NoError(t, err)
	require.Len(t, occ, 5)
	for i, o := range occ {
		assert.Equal(t, time.Monday, o.Weekday(), "occurrence %d", i)
	}

	_, err = Occurrences([]string{"EXDATE:20250602T090000Z"}, dtstart, from, to)
	assert.Error(t, err)
}
