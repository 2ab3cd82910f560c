package transfer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeAuth      ErrorType = "auth"
	ErrorTypeRateLimit ErrorType = "ratelimit"
	ErrorTypeContent   ErrorType = "content"
	ErrorTypeNetwork   ErrorType = "network"
	ErrorTypePlatform  ErrorType = "platform"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// PlatformError is the retry-safe classification of a provider failure.
// Auth and content failures are never retryable; ratelimit carries
// RetryAfterSeconds; unknown is treated conservatively as non-retryable
// until classified.
type PlatformError struct {
	Type              ErrorType `json:"type"`
	Message           string    `json:"message"`
	Retryable         bool      `json:"retryable"`
	RetryAfterSeconds int       `json:"retry_after_seconds,omitempty"`
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func NewAuthError(msg string) *PlatformError {
	return &PlatformError{Type: ErrorTypeAuth, Message: msg}
}

func NewRateLimitError(msg string, retryAfterSeconds int) *PlatformError {
	return &PlatformError{Type: ErrorTypeRateLimit, Message: msg, Retryable: true, RetryAfterSeconds: retryAfterSeconds}
}

func NewContentError(msg string) *PlatformError {
	return &PlatformError{Type: ErrorTypeContent, Message: msg}
}

func NewNetworkError(msg string) *PlatformError {
	return &PlatformError{Type: ErrorTypeNetwork, Message: msg, Retryable: true}
}

func NewPlatformFailure(msg string) *PlatformError {
	return &PlatformError{Type: ErrorTypePlatform, Message: msg, Retryable: true}
}

func NewUnknownError(msg string) *PlatformError {
	return &PlatformError{Type: ErrorTypeUnknown, Message: msg}
}

// Classify converts an arbitrary error into a PlatformError. Already
// classified errors pass through unchanged; context deadlines and
// transport errors become retryable network errors; everything else is
// unknown.
func Classify(err error) *PlatformError {
	if err == nil {
		return NewUnknownError("no error provided")
	}

	var perr *PlatformError
	if errors.As(err, &perr) {
		return perr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewNetworkError(err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return NewNetworkError(err.Error())
	}

	return NewUnknownError(err.Error())
}

// ClassifyStatus maps a provider HTTP status code onto the taxonomy.
func ClassifyStatus(code int, msg string, retryAfterSeconds int) *PlatformError {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return NewAuthError(msg)
	case code == http.StatusTooManyRequests:
		if retryAfterSeconds <= 0 {
			retryAfterSeconds = 60
		}
		return NewRateLimitError(msg, retryAfterSeconds)
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return NewContentError(msg)
	case code >= 500:
		return NewPlatformFailure(msg)
	default:
		return NewUnknownError(msg)
	}
}
