// Package apperr holds the error taxonomy shared by handlers and services.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrMissingSignature = errors.New("no signature")
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrMalformedPayload is returned for a body that passed verification but
	// cannot be decoded into an event.
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

// ValidationError carries one or more messages per offending field.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// ConfigurationError reports a required setting that is absent. It is fatal
// for the request that hit it and is never retried.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Setting)
}

// UpstreamError wraps a failed call to the payment or mail provider. Code and
// Message are copied verbatim from the provider response.
type UpstreamError struct {
	Provider string
	Status   int
	Code     string
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil && e.Code == "" {
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s request failed (status %d, code %s): %s", e.Provider, e.Status, e.Code, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NotificationError is returned by the notification sender. It never reaches
// an HTTP response of the webhook endpoint.
type NotificationError struct {
	Kind      string
	Recipient string
	Err       error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("%s notification failed: %v", e.Kind, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// IsConfiguration reports whether err (or anything it wraps) is a ConfigurationError.
func IsConfiguration(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
