package storyparse

import (
	"fmt"
	"strings"

	"github.com/fableloop/fables/internal/apperr"
	"github.com/fableloop/fables/internal/models"
)

// Validate checks a parsed story for completeness and returns the immutable
// StoryRecord. Required sections: title, introduction, concept explanation,
// resolution, moral message. The emotional trigger is desirable but optional.
//
// On failure the error names every missing section, so the caller can show a
// single consolidated message. The emotion tone is stamped from the original
// request; it is never taken from model output.
func Validate(p *PartialStory, tone models.EmotionTone) (*models.StoryRecord, error) {
	required := []struct {
		name  string
		value string
	}{
		{SectionTitle, p.Title},
		{SectionIntroduction, p.Introduction},
		{SectionConceptExplanation, p.ConceptExplanation},
		{SectionResolution, p.Resolution},
		{SectionMoralMessage, p.MoralMessage},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return nil, apperr.StoryGeneration(fmt.Sprintf(
			"The generated story is missing required sections: %s. Try again or pick a different topic.",
			strings.Join(missing, ", ")))
	}

	return &models.StoryRecord{
		Title:              strings.TrimSpace(p.Title),
		Introduction:       strings.TrimSpace(p.Introduction),
		EmotionalTrigger:   strings.TrimSpace(p.EmotionalTrigger),
		ConceptExplanation: strings.TrimSpace(p.ConceptExplanation),
		Resolution:         strings.TrimSpace(p.Resolution),
		MoralMessage:       strings.TrimSpace(p.MoralMessage),
		EmotionTone:        tone,
	}, nil
}
