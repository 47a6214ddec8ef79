package collection

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var ErrUnknownEntity = errors.New("no source for entity")

// SourceError wraps a failure with the source and entity it came from.
type SourceError struct {
	Source    string // source kind, e.g. "sql", "http"
	Operation string // "query", "connect", "decode"
	Entity    string
	Err       error
	Retryable bool
}

func (e *SourceError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("source %q %s %s failed: %v", e.Source, e.Entity, e.Operation, e.Err)
	}
	return fmt.Sprintf("source %q %s: %v", e.Source, e.Entity, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a SourceError with retryable detection.
func NewSourceError(source, operation, entity string, err error) *SourceError {
	return &SourceError{
		Source:    source,
		Operation: operation,
		Entity:    entity,
		Err:       err,
		Retryable: isRetryableError(err),
	}
}

// HTTPError is a non-2xx response from an HTTP collection.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
	}
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, e.Status)
}

// IsRetryable returns true for 5xx and 429 responses.
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsRetryable()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}

func asSourceError(source, entity string, err error) error {
	var se *SourceError
	if errors.As(err, &se) {
		return err
	}
	return NewSourceError(source, "query", entity, err)
}
