package llm

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	unifiedgenai "google.golang.org/genai"

	"github.com/fableloop/fables/internal/apperr"
)

// NarrationPCM is the raw audio returned by the narration endpoint, before
// container encoding. The TTS stream delivers 16-bit little-endian mono PCM;
// sample rate and bit depth come from the part MIME type (e.g.
// "audio/L16;rate=24000") and are asserted, not re-derived from the samples.
type NarrationPCM struct {
	PCM           []byte
	SampleRate    int
	BitsPerSample int
	MimeType      string
	Model         string
	Voice         string
	RawPCM        bool // false if the endpoint already returned a container format
}

// SynthesizeNarration generates narration audio for the given script using the
// unified genai SDK with response_modalities: ["audio"] and SpeechConfig.
// voice overrides the configured default when non-empty.
func (c *Client) SynthesizeNarration(ctx context.Context, script, voice string) (*NarrationPCM, error) {
	if c.unifiedClient == nil {
		return nil, apperr.API("Narration is not configured on this deployment.")
	}
	if voice == "" {
		voice = c.ttsVoice
	}

	contents := []*unifiedgenai.Content{
		{
			Role: "user",
			Parts: []*unifiedgenai.Part{
				unifiedgenai.NewPartFromText(script),
			},
		},
	}

	temp := float32(1.0)
	config := &unifiedgenai.GenerateContentConfig{
		Temperature:        &temp,
		ResponseModalities: []string{"audio"},
		SpeechConfig: &unifiedgenai.SpeechConfig{
			VoiceConfig: &unifiedgenai.VoiceConfig{
				PrebuiltVoiceConfig: &unifiedgenai.PrebuiltVoiceConfig{
					VoiceName: voice,
				},
			},
		},
	}

	log.Debug().
		Str("model", c.modelTTS).
		Str("voice", voice).
		Int("script_length", len(script)).
		Msg("Calling unified genai TTS GenerateContentStream")

	// Collect audio data from streaming response
	var audioBuffer bytes.Buffer
	var lastMimeType string

	for resp, err := range c.unifiedClient.Models.GenerateContentStream(ctx, c.modelTTS, contents, config) {
		if err != nil {
			return nil, fmt.Errorf("TTS stream error: %w", err)
		}
		if len(resp.Candidates) == 0 {
			continue
		}
		cand := resp.Candidates[0]
		if cand.Content == nil || cand.Content.Parts == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				audioBuffer.Write(part.InlineData.Data)
				if part.InlineData.MIMEType != "" {
					lastMimeType = part.InlineData.MIMEType
				}
			}
		}
	}

	if audioBuffer.Len() == 0 {
		return nil, apperr.TTS("Narration synthesis completed but produced no audio.")
	}

	params := parseAudioMimeType(lastMimeType)
	rawPCM := strings.HasPrefix(lastMimeType, "audio/L")

	log.Info().
		Str("caller", "SynthesizeNarration").
		Int("audio_size_bytes", audioBuffer.Len()).
		Str("voice", voice).
		Str("mime_type", lastMimeType).
		Int("sample_rate", params.rate).
		Msg("TTS audio generated")

	return &NarrationPCM{
		PCM:           audioBuffer.Bytes(),
		SampleRate:    params.rate,
		BitsPerSample: params.bitsPerSample,
		MimeType:      lastMimeType,
		Model:         c.modelTTS,
		Voice:         voice,
		RawPCM:        rawPCM,
	}, nil
}

type audioParams struct {
	bitsPerSample int
	rate          int
}

var reAudioBits = regexp.MustCompile(`audio/L(\d+)`)

// parseAudioMimeType parses bits per sample and rate from an audio MIME type.
func parseAudioMimeType(mimeType string) audioParams {
	params := audioParams{bitsPerSample: 16, rate: 24000}

	for _, part := range strings.Split(mimeType, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(strings.ToLower(part), "rate=") {
			if rate, err := strconv.Atoi(strings.Split(part, "=")[1]); err == nil {
				params.rate = rate
			}
		} else if strings.HasPrefix(part, "audio/L") {
			if matches := reAudioBits.FindStringSubmatch(part); len(matches) > 1 {
				if bits, err := strconv.Atoi(matches[1]); err == nil {
					params.bitsPerSample = bits
				}
			}
		}
	}
	return params
}
