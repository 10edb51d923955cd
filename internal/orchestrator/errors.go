package orchestrator

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/local/slidegen/internal/ai"
)

// ValidationError rejects a request before any model call.
type ValidationError struct {
	Field   string
	Message string
	// SuggestedSlideCount is set when slideCount was missing or out of range.
	SuggestedSlideCount *int
}

func (e *ValidationError) Error() string {
	if e.SuggestedSlideCount != nil {
		return fmt.Sprintf("%s (suggested slideCount: %d)", e.Message, *e.SuggestedSlideCount)
	}
	return e.Message
}

// ConfigError means the service cannot call the model as configured.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "server misconfigured: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// UpstreamError wraps a failed model call. StatusCode is the HTTP status to return.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ParseError means the model answered but no slide could be extracted.
type ParseError struct {
	ResponseLen int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model response contained no usable slides (%d bytes)", e.ResponseLen)
}

// upstreamError maps a provider failure to its HTTP-facing form.
func upstreamError(provider string, err error) error {
	if ai.IsMissingCredential(err) {
		return &ConfigError{Err: err}
	}
	ue := &UpstreamError{Provider: provider, StatusCode: http.StatusBadGateway, Message: err.Error(), Err: err}
	var httpErr *ai.HTTPError
	switch {
	case errors.As(err, &httpErr):
		if httpErr.StatusCode >= 400 && httpErr.StatusCode < 600 {
			ue.StatusCode = httpErr.StatusCode
		}
		ue.Message = httpErr.Body
		if ue.Message == "" {
			ue.Message = http.StatusText(httpErr.StatusCode)
		}
	case ai.IsTimeout(err):
		ue.StatusCode = http.StatusGatewayTimeout
		ue.Message = "model request timed out"
	}
	return ue
}

// HTTPStatus returns the response status for an error returned by the pipeline.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		ce *ConfigError
		ue *UpstreamError
		pe *ParseError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ce):
		return http.StatusInternalServerError
	case errors.As(err, &ue):
		return ue.StatusCode
	case errors.As(err, &pe):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
