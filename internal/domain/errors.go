package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals a caller contract violation (missing coordinates, empty query).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSourceUnavailable signals a failed call to an upstream business source.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrQuotaExceeded signals an exhausted daily request quota for a source.
	ErrQuotaExceeded = errors.New("source quota exceeded")
	// ErrRateLimited signals an upstream 429.
	ErrRateLimited = errors.New("rate limited")
	// ErrAnalyzerError signals a failure of the text analysis provider.
	ErrAnalyzerError = errors.New("analyzer error")
	// ErrNotConfigured signals an optional collaborator that is not wired.
	ErrNotConfigured = errors.New("not configured")
)

// SourceError wraps ErrSourceUnavailable with the upstream status code.
type SourceError struct {
	Source     string
	StatusCode int
	Body       string
}

func (e *SourceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", ErrSourceUnavailable.Error(), e.Source)
	}
	return fmt.Sprintf("%s: %s returned %d", ErrSourceUnavailable.Error(), e.Source, e.StatusCode)
}

func (e *SourceError) Unwrap() error { return ErrSourceUnavailable }

// NewSourceError creates a source error for a non-2xx upstream response.
func NewSourceError(source string, status int, body string) error {
	return &SourceError{Source: source, StatusCode: status, Body: body}
}

// InvalidArgument wraps ErrInvalidArgument with a field-level message.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
