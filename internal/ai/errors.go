package ai

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential = errors.New("missing API credential")
	ErrRateLimited       = errors.New("rate_limited")
	ErrEmptyResponse     = errors.New("empty model response")
)

// HTTPError represents an HTTP status error from AI provider
type HTTPError struct {
	StatusCode int
	Body       string
	Provider   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.Provider, e.Body)
}

// Is lets errors.Is(err, ErrRateLimited) match a 429.
func (e *HTTPError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == 429
}

// UnknownProviderError is returned by New for unsupported provider names.
type UnknownProviderError struct {
	Provider string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider: %q", e.Provider)
}

func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }
func IsMissingCredential(err error) bool { return errors.Is(err, ErrMissingCredential) }
