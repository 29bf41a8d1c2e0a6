package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
)

// transcribeSystemPrompt asks for the spoken words only, no commentary.
const transcribeSystemPrompt = "Transcribe the spoken audio provided by the user exactly, in its original language. Return only the transcript text, with normal punctuation and no commentary, labels, or timestamps."

// Transcribe converts captured speech (topic input) to plain text using the
// flash model's audio understanding.
func (c *Client) Transcribe(ctx context.Context, data []byte, mimeType string) (string, error) {
	if c.genaiClient == nil {
		return "", fmt.Errorf("genai client not initialized")
	}

	model := c.genaiClient.GenerativeModel(c.modelFlash)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(transcribeSystemPrompt)},
		Role:  "system",
	}

	resp, err := model.GenerateContent(ctx, genai.Blob{MIMEType: mimeType, Data: data})
	if err != nil {
		return "", fmt.Errorf("gemini transcription failed: %w", err)
	}

	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				result.WriteString(string(text))
			}
		}
	}

	transcript := strings.TrimSpace(result.String())
	log.Info().
		Str("caller", "Transcribe").
		Str("mime_type", mimeType).
		Int("audio_size_bytes", len(data)).
		Int("transcript_length", len(transcript)).
		Msg("Transcription complete")
	return transcript, nil
}
