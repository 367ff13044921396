package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const transcribePrompt = `Transcribe this audio recording exactly as spoken.
Return only the transcription text with no commentary.`

// Transcribe converts an audio recording to text. The audio travels inline,
// so recordings must stay within the API's inline size limit.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: empty audio", ErrInvalidConfig)
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(transcribePrompt),
			genai.NewPartFromBytes(audio, mimeType),
		}, genai.RoleUser),
	}

	text, err := c.generate(ctx, c.transcriptionModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}

	transcript := strings.TrimSpace(text)
	c.logger.DebugContext(ctx, "audio transcribed", "chars", len(transcript))
	return transcript, nil
}
