// Package recurrence manipulates RRULE-family recurrence strings as tagged
// tokens rather than raw text, so that untouched clauses round-trip exactly.
// It also expands rules into concrete occurrences for boundary checks.
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// rrulePrefix marks the one line in a recurrence set that carries the
// repetition rule. EXDATE, RDATE and friends are passed through verbatim.
const rrulePrefix = "RRULE:"

// untilLayout is the compact UTC basic ISO 8601 format the remote store
// requires for UNTIL values: YYYYMMDDTHHMMSSZ, no separators.
const untilLayout = "20060102T150405Z"

// Param is one KEY=VALUE token of an RRULE.
type Param struct {
	Key   string
	Value string
}

// Rule is a parsed RRULE line. Params keep their original order so String
// reproduces the input byte for byte when nothing was modified.
type Rule struct {
	params []Param
}

// IsRule reports whether line is an RRULE line (as opposed to EXDATE etc.).
func IsRule(line string) bool {
	return strings.HasPrefix(line, rrulePrefix)
}

// ParseRule parses an RRULE line into tagged params.
func ParseRule(line string) (Rule, error) {
	if !IsRule(line) {
		return Rule{}, fmt.Errorf("not an RRULE line: %q", line)
	}
	body := strings.TrimPrefix(line, rrulePrefix)
	if body == "" {
		return Rule{}, fmt.Errorf("empty RRULE line")
	}

	var r Rule
	for _, token := range strings.Split(body, ";") {
		if token == "" {
			continue
		}
		key, value, found := strings.Cut(token, "=")
		if !found || key == "" {
			return Rule{}, fmt.Errorf("malformed RRULE token %q in %q", token, line)
		}
		r.params = append(r.params, Param{Key: key, Value: value})
	}
	return r, nil
}

// String reassembles the rule, preserving the original param order.
func (r Rule) String() string {
	parts := make([]string, len(r.params))
	for i, p := range r.params {
		parts[i] = p.Key + "=" + p.Value
	}
	return rrulePrefix + strings.Join(parts, ";")
}

// Lookup returns the value of the named param, if present.
func (r Rule) Lookup(key string) (string, bool) {
	for _, p := range r.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// WithoutBounds returns a copy of the rule with any UNTIL and COUNT params
// removed. All other params keep their order.
func (r Rule) WithoutBounds() Rule {
	out := Rule{params: make([]Param, 0, len(r.params))}
	for _, p := range r.params {
		if p.Key == "UNTIL" || p.Key == "COUNT" {
			continue
		}
		out.params = append(out.params, p)
	}
	return out
}

// WithUntil returns a copy of the rule with an UNTIL param appended, formatted
// in compact UTC basic ISO 8601. Callers strip existing bounds first.
func (r Rule) WithUntil(t time.Time) Rule {
	out := Rule{params: make([]Param, len(r.params), len(r.params)+1)}
	copy(out.params, r.params)
	out.params = append(out.params, Param{Key: "UNTIL", Value: FormatUntil(t)})
	return out
}

// FormatUntil renders t as a compact UTC basic ISO 8601 timestamp
// (YYYYMMDDTHHMMSSZ).
func FormatUntil(t time.Time) string {
	return t.UTC().Format(untilLayout)
}

// Occurrences expands a recurrence set (rule lines plus a series start) into
// concrete occurrence start times within [from, to], inclusive. Non-RRULE
// lines are ignored here; the expansion is used for boundary verification,
// not for building the authoritative calendar view.
func Occurrences(rules []string, dtstart, from, to time.Time) ([]time.Time, error) {
	for _, line := range rules {
		if !IsRule(line) {
			continue
		}
		r, err := rrule.StrToRRule(strings.TrimPrefix(line, rrulePrefix))
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", line, err)
		}
		r.DTStart(dtstart)

		var set rrule.Set
		set.RRule(r)
		return set.Between(from, to, true), nil
	}
	return nil, fmt.Errorf("recurrence set has no RRULE line")
}
