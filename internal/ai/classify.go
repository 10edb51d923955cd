package ai

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Classify returns the metrics label for a provider call result.
func Classify(err error) string {
	switch {
	case err == nil:
		return "success"
	case IsMissingCredential(err):
		return "unconfigured"
	case IsRateLimited(err):
		return "rate_limited"
	case IsTimeout(err):
		return "timeout"
	case isTransient(err):
		return "transient"
	case isFatal(err):
		return "fatal"
	default:
		return "unknown"
	}
}

// IsTimeout checks if error is specifically a timeout
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}

// isTransient reports 5xx responses and connection-level failures.
func isTransient(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500 && httpErr.StatusCode < 600
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network") ||
		strings.Contains(errStr, "eof")
}

// isFatal reports 4xx responses other than 429.
func isFatal(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 && httpErr.StatusCode != 429
	}
	return false
}
