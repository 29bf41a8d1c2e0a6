package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fableloop/fables/internal/apperr"
	"github.com/fableloop/fables/internal/models"
	"github.com/fableloop/fables/internal/processor"
)

// storyGenerator is the subset of processor operations used by handlers.
type storyGenerator interface {
	Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResult, error)
	GenerateWithProgress(ctx context.Context, req *models.GenerationRequest, progress processor.ProgressFunc) (*models.GenerationResult, error)
}

// transcriber converts captured speech to text.
type transcriber interface {
	Transcribe(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Handler contains all HTTP handlers
type Handler struct {
	generator         storyGenerator
	transcriber       transcriber
	maxTopicLength    int
	transcribeTimeout time.Duration
}

// NewHandler creates a new handler
func NewHandler(generator storyGenerator, transcriber transcriber, maxTopicLength int, transcribeTimeout time.Duration) *Handler {
	return &Handler{
		generator:         generator,
		transcriber:       transcriber,
		maxTopicLength:    maxTopicLength,
		transcribeTimeout: transcribeTimeout,
	}
}

// CreateStory handles POST /v1/stories
func (h *Handler) CreateStory(w http.ResponseWriter, r *http.Request) {
	var req models.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(h.maxTopicLength); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.generator.Generate(r.Context(), &req)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Transcribe handles POST /v1/transcriptions — speech-to-text for topic input.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req models.TranscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Audio) == 0 {
		writeJSONError(w, http.StatusBadRequest, "audio is required")
		return
	}
	if req.MimeType == "" {
		writeJSONError(w, http.StatusBadRequest, "mime_type is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.transcribeTimeout)
	defer cancel()

	text, err := h.transcriber.Transcribe(ctx, req.Audio, req.MimeType)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.TranscriptionResponse{Text: text})
}

// Healthz handles GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorBody is the JSON error envelope: {"error": {"kind": ..., "message": ...}}.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeAppError translates the failure into the error envelope with an HTTP
// status derived from the error kind, never from the message text.
func writeAppError(w http.ResponseWriter, err error) {
	ae := apperr.Translate(err)
	log.Error().Err(err).Str("kind", string(ae.Kind)).Msg("Request failed")
	writeJSON(w, statusForError(ae), errorBody{Error: errorDetail{
		Kind:    string(ae.Kind),
		Message: ae.Message,
	}})
}

func statusForError(ae *apperr.AppError) int {
	switch ae.Kind {
	case apperr.KindStoryGeneration:
		return http.StatusUnprocessableEntity
	case apperr.KindNetwork:
		return http.StatusGatewayTimeout
	case apperr.KindAPI:
		if ae.Code == http.StatusTooManyRequests {
			return http.StatusTooManyRequests
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
