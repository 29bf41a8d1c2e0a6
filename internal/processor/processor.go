package processor

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/fableloop/fables/internal/apperr"
	"github.com/fableloop/fables/internal/config"
	"github.com/fableloop/fables/internal/llm"
	"github.com/fableloop/fables/internal/models"
	"github.com/fableloop/fables/internal/storyparse"
	"github.com/fableloop/fables/internal/wav"
)

// storyLLM is the subset of LLM operations used by the processor.
type storyLLM interface {
	GenerateStoryText(ctx context.Context, req *models.GenerationRequest) (string, error)
	SynthesizeNarration(ctx context.Context, script, voice string) (*llm.NarrationPCM, error)
	GenerateIllustration(ctx context.Context, sceneTitle, sceneDescription string) (*llm.Illustration, error)
}

// Stage identifies a point in the generation pipeline, reported to progress
// observers (e.g. the WebSocket handler).
type Stage string

const (
	StageGeneratingText   Stage = "generating_text"
	StageValidating       Stage = "validating"
	StageGeneratingAssets Stage = "generating_assets"
	StageDone             Stage = "done"
)

// ProgressFunc receives stage transitions. Called from the request goroutine
// only, never concurrently.
type ProgressFunc func(stage Stage)

// StoryProcessor runs one generation request end-to-end: story text, then
// parsing and validation, then concurrent best-effort narration and
// illustration. No state survives across calls.
type StoryProcessor struct {
	llm storyLLM
	cfg *config.Config
}

// NewStoryProcessor creates a new story processor.
func NewStoryProcessor(llmClient storyLLM, cfg *config.Config) *StoryProcessor {
	return &StoryProcessor{llm: llmClient, cfg: cfg}
}

// Generate runs the full pipeline for one request.
func (p *StoryProcessor) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResult, error) {
	return p.GenerateWithProgress(ctx, req, nil)
}

// GenerateWithProgress is Generate with stage reporting.
//
// Failures in the mandatory path (text generation, parsing, validation)
// return a typed AppError. Narration and illustration are fired only after
// the story has validated, each with its own timeout; either failing or
// timing out degrades that asset to nil and never fails the request.
func (p *StoryProcessor) GenerateWithProgress(ctx context.Context, req *models.GenerationRequest, progress ProgressFunc) (*models.GenerationResult, error) {
	report := func(s Stage) {
		if progress != nil {
			progress(s)
		}
	}
	id := uuid.New()
	log.Info().
		Str("request_id", id.String()).
		Str("topic", req.Topic).
		Int("grade", req.Grade).
		Msg("Starting story generation")

	report(StageGeneratingText)
	textCtx, cancelText := context.WithTimeout(ctx, p.cfg.TextTimeout)
	raw, err := p.llm.GenerateStoryText(textCtx, req)
	cancelText()
	if err != nil {
		return nil, apperr.Translate(err)
	}

	report(StageValidating)
	story, err := storyparse.Validate(storyparse.Parse(raw), req.EmotionTone)
	if err != nil {
		log.Warn().Err(err).Str("request_id", id.String()).Msg("Generated story failed validation")
		return nil, apperr.Translate(err)
	}

	result := &models.GenerationResult{ID: id, Story: *story}
	script := NarrationScript(raw, p.cfg.NarrationMaxChars)

	report(StageGeneratingAssets)
	var g errgroup.Group
	g.Go(func() error {
		result.Narration = p.narrate(ctx, script, req.VoiceID, id)
		return nil
	})
	g.Go(func() error {
		result.Illustration = p.illustrate(ctx, story, id)
		return nil
	})
	_ = g.Wait()

	report(StageDone)
	log.Info().
		Str("request_id", id.String()).
		Bool("narration", result.Narration != nil).
		Bool("illustration", result.Illustration != nil).
		Msg("Story generation complete")
	return result, nil
}

// narrate synthesizes narration and wraps the raw PCM in a WAV container.
// Best-effort: any failure returns nil.
func (p *StoryProcessor) narrate(ctx context.Context, script, voice string, id uuid.UUID) *models.NarrationAsset {
	if script == "" {
		log.Debug().Str("request_id", id.String()).Msg("Narration script is empty, skipping TTS")
		return nil
	}
	nctx, cancel := context.WithTimeout(ctx, p.cfg.TTSTimeout)
	defer cancel()

	pcm, err := p.llm.SynthesizeNarration(nctx, script, voice)
	if err != nil {
		log.Warn().Err(err).Str("request_id", id.String()).Msg("Narration failed, continuing without audio")
		return nil
	}

	data := pcm.PCM
	mimeType := pcm.MimeType
	duration := estimateSpokenSeconds(script)
	if pcm.RawPCM {
		data = wav.Encode(pcm.PCM, pcm.SampleRate, wav.DefaultChannels, pcm.BitsPerSample)
		mimeType = "audio/wav"
		// Exact duration is known for raw PCM: bytes / (rate * bytes-per-sample).
		bytesPerSecond := pcm.SampleRate * pcm.BitsPerSample / 8
		if bytesPerSecond > 0 {
			duration = float64(len(pcm.PCM)) / float64(bytesPerSecond)
		}
	}
	if mimeType == "" {
		mimeType = "audio/wav"
	}

	return &models.NarrationAsset{
		MimeType: mimeType,
		Data:     data,
		Duration: duration,
		Voice:    pcm.Voice,
		Model:    pcm.Model,
	}
}

// illustrate generates the scene image from the validated story.
// Best-effort: any failure returns nil.
func (p *StoryProcessor) illustrate(ctx context.Context, story *models.StoryRecord, id uuid.UUID) *models.IllustrationAsset {
	ictx, cancel := context.WithTimeout(ctx, p.cfg.ImageTimeout)
	defer cancel()

	img, err := p.llm.GenerateIllustration(ictx, story.Title, story.Introduction)
	if err != nil {
		log.Warn().Err(err).Str("request_id", id.String()).Msg("Illustration failed, continuing without image")
		return nil
	}
	return &models.IllustrationAsset{
		MimeType: img.MimeType,
		Data:     img.Data,
		Model:    img.Model,
	}
}

// estimateSpokenSeconds approximates narration duration at ~150 words/minute.
func estimateSpokenSeconds(script string) float64 {
	words := len(script) / 5
	return float64(words) / 150.0 * 60.0
}
