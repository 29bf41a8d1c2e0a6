package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"github.com/fableloop/fables/internal/apperr"
	"github.com/fableloop/fables/internal/models"
)

// GenerateStoryText asks Gemini for a heading-structured story about the topic.
// Tries the pro model first; if it errors or returns empty, falls back to flash.
// A safety block surfaces as a StoryGenerationError with the refusal reason.
func (c *Client) GenerateStoryText(ctx context.Context, req *models.GenerationRequest) (string, error) {
	log.Debug().
		Str("topic", req.Topic).
		Int("grade", req.Grade).
		Str("language", string(req.Language)).
		Str("tone", string(req.EmotionTone)).
		Msg("Generating story text")

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextContent{Text: buildStorySystemPrompt(req)}}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextContent{Text: req.Topic}}},
	}
	opts := []llms.CallOption{
		llms.WithTemperature(0.8),
		llms.WithMaxTokens(2000),
	}

	var lastErr error
	for _, m := range []struct {
		model llms.Model
		name  string
	}{
		{c.llmPro, c.modelPro},
		{c.llmFlash, c.modelFlash},
	} {
		if m.model == nil {
			continue
		}
		resp, err := m.model.GenerateContent(ctx, messages, opts...)
		if err != nil {
			log.Warn().Err(err).Str("model", m.name).Msg("Story generation failed")
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			// Prompt-level block: the model refused to answer at all.
			return "", apperr.StoryGeneration("The story request was blocked by the content safety filter. Try a different topic.")
		}
		choice := resp.Choices[0]
		if blockedBySafety(choice.StopReason) {
			return "", apperr.StoryGeneration(fmt.Sprintf(
				"The story request was blocked by the content safety filter (%s). Try a different topic.", choice.StopReason))
		}
		raw := strings.TrimSpace(choice.Content)
		if raw == "" {
			log.Warn().Str("model", m.name).Msg("Story model returned empty text")
			continue
		}
		logGeminiResponse("GenerateStoryText", raw)
		log.Info().Str("model", m.name).Int("story_length", len(raw)).Msg("Story text generated")
		return raw, nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("story generation failed: %w", lastErr)
	}
	return "", apperr.StoryGeneration("The model returned an empty story. Try again or pick a different topic.")
}

// blockedBySafety checks the candidate finish reason reported by the SDK.
// The reason is a typed enum rendered to a string, not error-message text.
func blockedBySafety(stopReason string) bool {
	return strings.Contains(strings.ToLower(stopReason), "safety")
}

// buildStorySystemPrompt instructs the model to emit the six named sections
// the parser expects, calibrated to grade, tone, role, and language.
func buildStorySystemPrompt(req *models.GenerationRequest) string {
	var audience string
	switch {
	case req.Grade <= 3:
		audience = "a young child; use very short sentences and simple everyday words"
	case req.Grade <= 7:
		audience = "a middle-school student; use clear language with a little vocabulary stretch"
	default:
		audience = "a high-school student; precise language is fine but keep the story engaging"
	}

	var toneHint string
	switch req.EmotionTone {
	case models.ToneExcitement:
		toneHint = "thrilling and energetic"
	case models.ToneCalm:
		toneHint = "gentle and soothing"
	case models.ToneHumor:
		toneHint = "playful and funny"
	default:
		toneHint = "full of wonder and curiosity"
	}

	var roleHint string
	switch req.UserRole {
	case models.RoleTeacher:
		roleHint = "The reader is a teacher who will retell this in class."
	case models.RoleParent:
		roleHint = "The reader is a parent reading aloud at home."
	default:
		roleHint = "The reader is the student themselves."
	}

	return fmt.Sprintf(`Turn the academic topic provided by the user into a short story for grade %d (%s).
Write the story in %s. The emotional tone is %s. %s

Structure the output as markdown with EXACTLY these headings, each on its own line, each followed by its content:

# Title
# Introduction
# Emotional Trigger
# Concept Explanation
# Resolution
# Moral Message

The Concept Explanation must teach the actual topic accurately inside the story.
Return only the story sections, no commentary before or after them.`,
		req.Grade, audience, req.Language, toneHint, roleHint)
}
