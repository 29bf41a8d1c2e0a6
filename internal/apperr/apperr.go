package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"google.golang.org/api/googleapi"
	genai "google.golang.org/genai"
)

// Kind tags an AppError with its failure class. Callers branch on the tag,
// never on the message text.
type Kind string

const (
	// KindNetwork: the transport failed or timed out before a usable response.
	KindNetwork Kind = "network"
	// KindAPI: the upstream endpoint answered with a non-success status
	// (auth, quota, rate limit, misconfiguration).
	KindAPI Kind = "api"
	// KindStoryGeneration: the model output failed structural validation or
	// generation was refused by a safety filter.
	KindStoryGeneration Kind = "story_generation"
	// KindTTS: narration synthesis completed but produced no audio.
	KindTTS Kind = "tts"
)

// AppError is the single user-facing error type. Message is displayable as-is.
// Code is the upstream HTTP status when one was observed (0 otherwise); it
// lets callers treat rate limits distinctly without parsing the message.
type AppError struct {
	Kind    Kind
	Message string
	Code    int
	err     error // wrapped cause, may be nil
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.err }

// Network builds a transport-level failure.
func Network(msg string) *AppError { return &AppError{Kind: KindNetwork, Message: msg} }

// API builds an upstream-endpoint failure.
func API(msg string) *AppError { return &AppError{Kind: KindAPI, Message: msg} }

// StoryGeneration builds a structural-validation or safety-refusal failure.
func StoryGeneration(msg string) *AppError {
	return &AppError{Kind: KindStoryGeneration, Message: msg}
}

// TTS builds a narration-synthesis failure.
func TTS(msg string) *AppError { return &AppError{Kind: KindTTS, Message: msg} }

// Wrap attaches a cause to an AppError for logging; the message stays clean.
func Wrap(e *AppError, cause error) *AppError {
	return &AppError{Kind: e.Kind, Message: e.Message, Code: e.Code, err: cause}
}

// Is reports whether err is an AppError of the given kind.
func Is(err error, kind Kind) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Kind == kind
}

// Translate maps a heterogeneous upstream failure into an AppError.
// An error that is already an AppError passes through unchanged.
func Translate(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(Network("The request took too long and was cancelled. Please try again."), err)
	}
	if errors.Is(err, context.Canceled) {
		return Wrap(Network("The request was cancelled before completing."), err)
	}

	// Google API error shapes: legacy client (googleapi.Error) and the
	// unified genai SDK (genai.APIError). Both carry an HTTP status code.
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return Wrap(fromStatusCode(gerr.Code), err)
	}
	var uerr genai.APIError
	if errors.As(err, &uerr) {
		return Wrap(fromStatusCode(uerr.Code), err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return Wrap(Network("Could not reach the generation service. Check your connection and try again."), err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Wrap(Network("The request took too long and was cancelled. Please try again."), err)
		}
		return Wrap(Network("Could not reach the generation service. Check your connection and try again."), err)
	}

	return Wrap(API(fmt.Sprintf("The story service returned an unexpected error: %v", err)), err)
}

// fromStatusCode maps an upstream HTTP status to an AppError. Rate limits get
// their own actionable message, distinct from generic API failures.
func fromStatusCode(code int) *AppError {
	var e *AppError
	switch {
	case code == 429:
		e = API("The story service is receiving too many requests right now. Please wait a moment and try again.")
	case code == 401 || code == 403:
		e = API("The story service rejected the configured credentials. Check the API key.")
	case code >= 500:
		e = API("The story service is temporarily unavailable. Please try again shortly.")
	default:
		e = API(fmt.Sprintf("The story service rejected the request (status %d).", code))
	}
	e.Code = code
	return e
}
