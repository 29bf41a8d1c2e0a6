package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fableloop/fables/internal/apperr"
	"github.com/fableloop/fables/internal/models"
	"github.com/fableloop/fables/internal/processor"
)

// fakeGenerator is a minimal storyGenerator for tests.
type fakeGenerator struct {
	generate func(context.Context, *models.GenerationRequest) (*models.GenerationResult, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResult, error) {
	if f.generate != nil {
		return f.generate(ctx, req)
	}
	return &models.GenerationResult{
		ID: uuid.New(),
		Story: models.StoryRecord{
			Title:        "The Brave Raindrop",
			Introduction: "Once there was a raindrop named Pip.",
			EmotionTone:  models.ToneWonder,
		},
	}, nil
}

func (f *fakeGenerator) GenerateWithProgress(ctx context.Context, req *models.GenerationRequest, progress processor.ProgressFunc) (*models.GenerationResult, error) {
	return f.Generate(ctx, req)
}

// fakeTranscriber is a minimal transcriber for tests.
type fakeTranscriber struct {
	transcribe func(context.Context, []byte, string) (string, error)
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, data []byte, mimeType string) (string, error) {
	if f.transcribe != nil {
		return f.transcribe(ctx, data, mimeType)
	}
	return "the water cycle", nil
}

func testHandler(gen *fakeGenerator, tr *fakeTranscriber) *Handler {
	return NewHandler(gen, tr, 500, 5*time.Second)
}

func validRequestBody() *bytes.Buffer {
	return bytes.NewBufferString(`{
		"topic": "the water cycle",
		"grade": 3,
		"language": "english",
		"emotion_tone": "wonder",
		"user_role": "student"
	}`)
}

// TestCreateStory_InvalidBody asserts 400 for invalid JSON.
func TestCreateStory_InvalidBody(t *testing.T) {
	h := testHandler(&fakeGenerator{}, &fakeTranscriber{})

	req := httptest.NewRequest(http.MethodPost, "/v1/stories", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.CreateStory(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

// TestCreateStory_ValidationError asserts 400 when the request fails field
// validation (here: an unknown emotion tone).
func TestCreateStory_ValidationError(t *testing.T) {
	h := testHandler(&fakeGenerator{}, &fakeTranscriber{})

	body := bytes.NewBufferString(`{"topic":"volcanoes","grade":3,"language":"english","emotion_tone":"dread","user_role":"student"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/stories", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.CreateStory(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

// TestCreateStory_Success asserts 200 with the generation result body.
func TestCreateStory_Success(t *testing.T) {
	h := testHandler(&fakeGenerator{}, &fakeTranscriber{})

	req := httptest.NewRequest(http.MethodPost, "/v1/stories", validRequestBody())
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.CreateStory(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result models.GenerationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Story.Title != "The Brave Raindrop" {
		t.Errorf("title = %q", result.Story.Title)
	}
}

// TestCreateStory_ErrorStatusMapping asserts that each error kind maps to its
// HTTP status, with rate limits distinguished from other API failures.
func TestCreateStory_ErrorStatusMapping(t *testing.T) {
	rateLimited := apperr.API("The story service is receiving too many requests right now. Please wait a moment and try again.")
	rateLimited.Code = http.StatusTooManyRequests

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{
			name:       "story generation failure maps to 422",
			err:        apperr.StoryGeneration("The generated story is missing required sections: introduction. Try again or pick a different topic."),
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "story_generation",
		},
		{
			name:       "network failure maps to 504",
			err:        apperr.Network("The request took too long and was cancelled. Please try again."),
			wantStatus: http.StatusGatewayTimeout,
			wantKind:   "network",
		},
		{
			name:       "api failure maps to 502",
			err:        apperr.API("The story service is temporarily unavailable. Please try again shortly."),
			wantStatus: http.StatusBadGateway,
			wantKind:   "api",
		},
		{
			name:       "rate limit maps to 429",
			err:        rateLimited,
			wantStatus: http.StatusTooManyRequests,
			wantKind:   "api",
		},
		{
			name:       "untyped failure is translated before mapping",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantKind:   "network",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{
				generate: func(context.Context, *models.GenerationRequest) (*models.GenerationResult, error) {
					return nil, tt.err
				},
			}
			h := testHandler(gen, &fakeTranscriber{})

			req := httptest.NewRequest(http.MethodPost, "/v1/stories", validRequestBody())
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			h.CreateStory(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Error.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", body.Error.Kind, tt.wantKind)
			}
			if body.Error.Message == "" {
				t.Error("error message must be present")
			}
		})
	}
}

// TestTranscribe_MissingFields asserts 400 for empty audio or mime type.
func TestTranscribe_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing audio", body: `{"mime_type":"audio/webm"}`},
		{name: "missing mime type", body: `{"audio":"aGVsbG8="}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHandler(&fakeGenerator{}, &fakeTranscriber{})

			req := httptest.NewRequest(http.MethodPost, "/v1/transcriptions", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			h.Transcribe(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

// TestTranscribe_Success asserts 200 with the recognized text.
func TestTranscribe_Success(t *testing.T) {
	h := testHandler(&fakeGenerator{}, &fakeTranscriber{})

	body := bytes.NewBufferString(`{"audio":"aGVsbG8=","mime_type":"audio/webm"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/transcriptions", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Transcribe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.TranscriptionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Text != "the water cycle" {
		t.Errorf("text = %q", resp.Text)
	}
}

// TestTranscribe_UpstreamError asserts translated upstream failures reach the
// error envelope.
func TestTranscribe_UpstreamError(t *testing.T) {
	tr := &fakeTranscriber{
		transcribe: func(context.Context, []byte, string) (string, error) {
			return "", apperr.API("The story service is temporarily unavailable. Please try again shortly.")
		},
	}
	h := testHandler(&fakeGenerator{}, tr)

	body := bytes.NewBufferString(`{"audio":"aGVsbG8=","mime_type":"audio/webm"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/transcriptions", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Transcribe(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
}

// TestHealthz asserts the liveness probe.
func TestHealthz(t *testing.T) {
	h := testHandler(&fakeGenerator{}, &fakeTranscriber{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	h.Healthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
