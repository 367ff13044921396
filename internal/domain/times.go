package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeDatePattern = regexp.MustCompile(`currentDate\+(\d+)`)

// concatenatedDatePattern matches a timestamp that had a second time glued
// onto it (e.g. "2025-11-17T18:41:12.910ZT22:00:00"), which intent extraction
// occasionally produces. The date part and the trailing time part are kept.
var concatenatedDatePattern = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2})T\d{2}:\d{2}:\d{2}(?:\.\d{3})?Z?T(\d{2}:\d{2}:\d{2}(?:\.\d{3})?)$`,
)

// ResolveRelativeDate turns a raw date string from intent extraction into an
// absolute UTC RFC 3339 timestamp. Placeholders of the form
// currentDate+<milliseconds> are resolved against now; malformed
// double-timestamp concatenations are repaired when possible. An empty input
// stays empty. Anything else that cannot be parsed fails with ErrInvalidDate.
func ResolveRelativeDate(raw string, now time.Time) (string, error) {
	if raw == "" {
		return "", nil
	}

	if m := relativeDatePattern.FindStringSubmatch(raw); m != nil {
		ms, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
		}
		iso := now.Add(time.Duration(ms) * time.Millisecond).UTC().Format(time.RFC3339)
		if strings.TrimSpace(raw) == m[0] {
			return iso, nil
		}
		return normalizeDate(relativeDatePattern.ReplaceAllString(raw, iso))
	}

	return normalizeDate(raw)
}

// normalizeDate validates a date string, repairing concatenated timestamps
// where the shape allows, and returns it in UTC RFC 3339.
func normalizeDate(raw string) (string, error) {
	if strings.Count(raw, "T") > 1 {
		if m := concatenatedDatePattern.FindStringSubmatch(raw); m != nil {
			raw = m[1] + "T" + m[2]
		} else if i := strings.LastIndex(raw, "T"); i > 0 {
			// Fall back to pairing the date prefix with the last time part.
			datePart := regexp.MustCompile(`\d{4}-\d{2}-\d{2}`).FindString(raw[:i])
			if datePart != "" {
				raw = datePart + "T" + raw[i+1:]
			}
		}
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}
