package models

import (
	"fmt"

	"github.com/google/uuid"
)

// EmotionTone is the emotional register the story is told in.
// It is supplied by the caller and stamped onto the final StoryRecord;
// it is never derived from model output.
type EmotionTone string

const (
	ToneWonder     EmotionTone = "wonder"
	ToneExcitement EmotionTone = "excitement"
	ToneCalm       EmotionTone = "calm"
	ToneHumor      EmotionTone = "humor"
)

// UserRole identifies who is asking for the story; it shapes the prompt only.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleParent  UserRole = "parent"
)

// Language is the story output language.
type Language string

const (
	LangEnglish  Language = "english"
	LangSpanish  Language = "spanish"
	LangFrench   Language = "french"
	LangGerman   Language = "german"
	LangHindi    Language = "hindi"
	LangJapanese Language = "japanese"
)

// MaxGrade is the highest supported grade level.
const MaxGrade = 12

// GenerationRequest is the caller-supplied input for one story generation.
// Immutable once submitted.
type GenerationRequest struct {
	Topic       string      `json:"topic"`
	Grade       int         `json:"grade"` // 1..12
	Language    Language    `json:"language"`
	EmotionTone EmotionTone `json:"emotion_tone"`
	UserRole    UserRole    `json:"user_role"`
	VoiceID     string      `json:"voice_id,omitempty"` // optional narration voice override
}

// Validate checks request fields against the supported enums.
// maxTopicLen caps the topic length in bytes (0 means no cap).
func (r *GenerationRequest) Validate(maxTopicLen int) error {
	if r.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if maxTopicLen > 0 && len(r.Topic) > maxTopicLen {
		return fmt.Errorf("topic exceeds maximum length of %d characters", maxTopicLen)
	}
	if r.Grade < 1 || r.Grade > MaxGrade {
		return fmt.Errorf("grade must be between 1 and %d", MaxGrade)
	}
	switch r.Language {
	case LangEnglish, LangSpanish, LangFrench, LangGerman, LangHindi, LangJapanese:
	default:
		return fmt.Errorf("invalid language: %q", r.Language)
	}
	switch r.EmotionTone {
	case ToneWonder, ToneExcitement, ToneCalm, ToneHumor:
	default:
		return fmt.Errorf("invalid emotion_tone: must be wonder, excitement, calm, or humor")
	}
	switch r.UserRole {
	case RoleStudent, RoleTeacher, RoleParent:
	default:
		return fmt.Errorf("invalid user_role: must be student, teacher, or parent")
	}
	return nil
}

// StoryRecord is the validated structured story. Constructed only by
// storyparse.Validate; never mutated afterwards.
type StoryRecord struct {
	Title              string      `json:"title"`
	Introduction       string      `json:"introduction"`
	EmotionalTrigger   string      `json:"emotional_trigger,omitempty"`
	ConceptExplanation string      `json:"concept_explanation"`
	Resolution         string      `json:"resolution"`
	MoralMessage       string      `json:"moral_message"`
	EmotionTone        EmotionTone `json:"emotion_tone"`
}

// NarrationAsset is the playable narration produced from raw TTS PCM.
type NarrationAsset struct {
	MimeType string  `json:"mime_type"` // audio/wav
	Data     []byte  `json:"data"`      // WAV container bytes; base64 in JSON
	Duration float64 `json:"duration"`  // estimated seconds
	Voice    string  `json:"voice"`
	Model    string  `json:"model"`
}

// IllustrationAsset is the generated scene illustration.
type IllustrationAsset struct {
	MimeType string `json:"mime_type"` // e.g. image/png
	Data     []byte `json:"data"`      // base64 in JSON
	Model    string `json:"model"`
}

// GenerationResult is the output of one generation request. Narration and
// Illustration are best-effort: nil (JSON null) when their call failed or
// timed out, never an error once the story itself validated.
type GenerationResult struct {
	ID           uuid.UUID          `json:"id"`
	Story        StoryRecord        `json:"story"`
	Narration    *NarrationAsset    `json:"narration"`
	Illustration *IllustrationAsset `json:"illustration"`
}

// TranscriptionRequest carries captured speech for topic input.
type TranscriptionRequest struct {
	Audio    []byte `json:"audio"` // base64 in JSON
	MimeType string `json:"mime_type"`
}

// TranscriptionResponse is the recognized text.
type TranscriptionResponse struct {
	Text string `json:"text"`
}
