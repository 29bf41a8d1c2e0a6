package llm

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
)

// Illustration is a generated scene image.
type Illustration struct {
	Data     []byte
	MimeType string // e.g. "image/png", "image/jpeg" (from Gemini blob.MIMEType)
	Model    string
}

// GenerateIllustration generates a scene illustration with strict IMAGE modality.
// sceneTitle and sceneDescription come from the validated story, never from
// unvalidated model output.
func (c *Client) GenerateIllustration(ctx context.Context, sceneTitle, sceneDescription string) (*Illustration, error) {
	if c.genaiClient == nil {
		return nil, fmt.Errorf("genai client not initialized")
	}

	prompt := buildIllustrationPrompt(sceneTitle, sceneDescription)
	log.Debug().
		Str("scene_title", sceneTitle).
		Msg("Generating illustration")

	model := c.genaiClient.GenerativeModel(c.modelImage)
	// Strict modality: request native image output (required for gemini-3-pro-image-preview)
	setResponseModality(model, []string{"IMAGE"})

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	logGeminiResponse("GenerateIllustration", fmt.Sprintf("candidates=%d", len(resp.Candidates)))
	for i, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for j, part := range cand.Content.Parts {
			blob, ok := part.(genai.Blob)
			if !ok || len(blob.Data) == 0 {
				continue
			}
			mimeType := blob.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			log.Info().
				Str("caller", "GenerateIllustration").
				Int("image_size_bytes", len(blob.Data)).
				Str("mime_type", mimeType).
				Int("candidate", i).
				Int("part", j).
				Msg("Gemini response (image blob)")
			return &Illustration{
				Data:     blob.Data,
				MimeType: mimeType,
				Model:    c.modelImage,
			}, nil
		}
	}

	log.Warn().
		Str("model", c.modelImage).
		Int("candidates", len(resp.Candidates)).
		Msg("No image blob in Gemini response; ensure ResponseModality is IMAGE for strict image generation")
	return nil, fmt.Errorf("no image blob in response (strict modality: expected IMAGE)")
}

// buildIllustrationPrompt turns the scene into an image prompt in a consistent
// storybook style.
func buildIllustrationPrompt(sceneTitle, sceneDescription string) string {
	return fmt.Sprintf(`A warm, colorful children's storybook illustration for a story titled %q.
Scene: %s
Soft lighting, friendly characters, no text or lettering in the image.`, sceneTitle, sceneDescription)
}

// setResponseModality sets model.ResponseModality when the genai SDK exposes it (e.g. for Gemini 3).
// Uses reflection so it no-ops on older SDKs that don't have the field.
func setResponseModality(model *genai.GenerativeModel, modalities []string) {
	v := reflect.ValueOf(model).Elem()
	f := v.FieldByName("ResponseModality")
	if !f.IsValid() || !f.CanSet() {
		log.Debug().Msg("ResponseModality not available on GenerativeModel (SDK may not support it yet)")
		return
	}
	// ResponseModality is []string
	if f.Kind() == reflect.Slice && f.Type().Elem().Kind() == reflect.String {
		f.Set(reflect.ValueOf(modalities))
		log.Debug().Strs("modality", modalities).Msg("Set ResponseModality on GenerativeModel")
	}
}
