package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"google.golang.org/api/googleapi"
	genai "google.golang.org/genai"
)

func TestTranslate_Kinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
	}{
		{
			name:     "deadline exceeded is network",
			err:      context.DeadlineExceeded,
			wantKind: KindNetwork,
		},
		{
			name:     "wrapped deadline is network",
			err:      fmt.Errorf("text generation: %w", context.DeadlineExceeded),
			wantKind: KindNetwork,
		},
		{
			name:     "url error is network",
			err:      &url.Error{Op: "Post", URL: "https://example.test", Err: errors.New("connection refused")},
			wantKind: KindNetwork,
		},
		{
			name:     "googleapi 429 is api",
			err:      &googleapi.Error{Code: 429, Message: "quota exceeded"},
			wantKind: KindAPI,
		},
		{
			name:     "googleapi 403 is api",
			err:      &googleapi.Error{Code: 403, Message: "forbidden"},
			wantKind: KindAPI,
		},
		{
			name:     "unified genai 500 is api",
			err:      genai.APIError{Code: 500, Message: "internal"},
			wantKind: KindAPI,
		},
		{
			name:     "unknown error defaults to api",
			err:      errors.New("unexpected payload"),
			wantKind: KindAPI,
		},
		{
			name:     "existing apperr passes through",
			err:      StoryGeneration("story is missing required sections: resolution"),
			wantKind: KindStoryGeneration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.err)
			if got.Kind != tt.wantKind {
				t.Errorf("Translate(%v).Kind = %q, want %q", tt.err, got.Kind, tt.wantKind)
			}
			if got.Message == "" {
				t.Error("translated error has empty message")
			}
		})
	}
}

func TestTranslate_RateLimitMessageIsDistinct(t *testing.T) {
	rateLimited := Translate(&googleapi.Error{Code: 429})
	generic := Translate(&googleapi.Error{Code: 400})

	if rateLimited.Message == generic.Message {
		t.Error("rate-limit message must differ from generic API failure message")
	}
	if !strings.Contains(strings.ToLower(rateLimited.Message), "wait") {
		t.Errorf("rate-limit message should tell the user to wait, got %q", rateLimited.Message)
	}
}

func TestTranslate_PreservesCause(t *testing.T) {
	cause := &googleapi.Error{Code: 503}
	got := Translate(fmt.Errorf("narration: %w", cause))
	var gerr *googleapi.Error
	if !errors.As(got, &gerr) {
		t.Error("translated error should wrap the original cause")
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", TTS("narration synthesis produced no audio"))
	if !Is(err, KindTTS) {
		t.Error("Is should match wrapped AppError kind")
	}
	if Is(err, KindNetwork) {
		t.Error("Is should not match a different kind")
	}
	if Is(errors.New("plain"), KindAPI) {
		t.Error("Is should not match non-AppError")
	}
}
