package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/phrazzld/vocal-api/internal/domain"
)

const reminderPrompt = `Write one short, friendly spoken reminder for the
event below, as a single sentence suitable for text-to-speech. Mention the
event title and, when present, the location. Output only the sentence.`

// ComposeReminder produces a short spoken-style reminder line for an event
// that is about to start or in progress.
func (c *Client) ComposeReminder(ctx context.Context, event *domain.CalendarEvent) (string, error) {
	var b strings.Builder
	b.WriteString(reminderPrompt)
	b.WriteString("\n\nTitle: ")
	b.WriteString(event.Title)
	if event.Start != nil {
		b.WriteString("\nStarts: ")
		b.WriteString(event.Start.Format(time.RFC3339))
	}
	if event.Location != "" {
		b.WriteString("\nLocation: ")
		b.WriteString(event.Location)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(b.String(), genai.RoleUser),
	}

	text, err := c.generate(ctx, c.intentModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("composing reminder: %w", err)
	}
	return strings.TrimSpace(text), nil
}
