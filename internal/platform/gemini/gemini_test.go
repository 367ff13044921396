package gemini

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/vocal-api/internal/config"
	"github.com/phrazzld/vocal-api/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClientValidatesConfig(t *testing.T) {
	ctx := context.Background()

	_, err := NewClient(ctx, nil, config.LLMConfig{})
	assert.Error(t, err)

	_, err = NewClient(ctx, testLogger(), config.LLMConfig{
		TranscriptionModel: "m", IntentModel: "m",
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewClient(ctx, testLogger(), config.LLMConfig{
		GeminiAPIKey: "key",
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDecodeJSONMapsParseFailures(t *testing.T) {
	var intent domain.Intent
	err := decodeJSON("not json at all", &intent)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	err = decodeJSON(`{"operation":"delete","event_id":"ev1","delete_scope":"all_events"}`, &intent)
	require.NoError(t, err)
	assert.Equal(t, domain.OperationDelete, intent.Operation)
	assert.Equal(t, domain.ScopeAllEvents, intent.DeleteScope)
}

func TestBuildIntentPromptIncludesEventsAndAnchor(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	events := []*domain.CalendarEvent{
		{
			ID:         "master",
			Title:      "Standup",
			Start:      &start,
			End:        &end,
			Recurrence: []string{"RRULE:FREQ=WEEKLY;BYDAY=MO"},
		},
	}
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	prompt, err := buildIntentPrompt("cancel standup", events, now)
	require.NoError(t, err)

	assert.Contains(t, prompt, "2025-03-10T08:00:00Z")
	assert.Contains(t, prompt, `"id":"master"`)
	assert.Contains(t, prompt, "RRULE:FREQ=WEEKLY;BYDAY=MO")
	assert.Contains(t, prompt, "cancel standup")
	// The events block is valid JSON the model can quote IDs from.
	from := strings.Index(prompt, "[")
	to := strings.LastIndex(prompt, "]")
	require.Greater(t, to, from)
	var parsed []eventSummary
	require.NoError(t, json.Unmarshal([]byte(prompt[from:to+1]), &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, "master", parsed[0].ID)
}
