package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/phrazzld/vocal-api/internal/domain"
)

const intentPromptHeader = `You turn a spoken calendar instruction into one JSON object.

The object has these fields:
  operation: "create", "update", "delete", or "no_action"
  event_id: id of the existing event being changed (update/delete only)
  title, start_time, end_time, location, description, attendees, recurrence
  update_scope / delete_scope: "this_event", "this_and_following", or "all_events"

Rules:
- Times are RFC 3339. For times relative to now (such as "in twenty minutes"),
  emit the placeholder currentDate+<milliseconds> instead of an absolute time.
- recurrence entries are RRULE strings, for example "RRULE:FREQ=WEEKLY;BYDAY=MO".
- When the instruction targets an existing event, pick its event_id from the
  current events listed below. If nothing matches, use "no_action".
- When the instruction mentions one occurrence of a repeating event, choose
  scope "this_event"; "from now on" means "this_and_following"; the whole
  series means "all_events".
- Output only the JSON object.`

// eventSummary is the trimmed event view shown to the model.
type eventSummary struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Start      string   `json:"start,omitempty"`
	End        string   `json:"end,omitempty"`
	Recurrence []string `json:"recurrence,omitempty"`
	SeriesID   string   `json:"series_id,omitempty"`
}

// ExtractIntent derives the structured calendar intent behind a transcript.
// The current events give the model the IDs it needs for updates and
// deletes; now anchors relative time references.
func (c *Client) ExtractIntent(
	ctx context.Context,
	transcript string,
	events []*domain.CalendarEvent,
	now time.Time,
) (*domain.Intent, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("%w: empty transcript", ErrInvalidResponse)
	}

	prompt, err := buildIntentPrompt(transcript, events, now)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	text, err := c.generate(ctx, c.intentModel, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("extracting intent: %w", err)
	}

	var intent domain.Intent
	if err := decodeJSON(text, &intent); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "intent extracted",
		"operation", intent.Operation,
		"event_id", intent.EventID)
	return &intent, nil
}

func buildIntentPrompt(transcript string, events []*domain.CalendarEvent, now time.Time) (string, error) {
	summaries := make([]eventSummary, 0, len(events))
	for _, ev := range events {
		s := eventSummary{
			ID:         ev.ID,
			Title:      ev.Title,
			Recurrence: ev.Recurrence,
			SeriesID:   ev.SeriesID,
		}
		if ev.Start != nil {
			s.Start = ev.Start.Format(time.RFC3339)
		}
		if ev.End != nil {
			s.End = ev.End.Format(time.RFC3339)
		}
		summaries = append(summaries, s)
	}

	eventsJSON, err := json.Marshal(summaries)
	if err != nil {
		return "", fmt.Errorf("marshaling event summaries: %w", err)
	}

	var b strings.Builder
	b.WriteString(intentPromptHeader)
	b.WriteString("\n\nCurrent date: ")
	b.WriteString(now.UTC().Format(time.RFC3339))
	b.WriteString("\n\nCurrent events:\n")
	b.Write(eventsJSON)
	b.WriteString("\n\nInstruction:\n")
	b.WriteString(transcript)
	return b.String(), nil
}
