package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
	// ErrProviderUnavailable is returned when the model server cannot be reached.
	ErrProviderUnavailable = errors.New("model provider unavailable")
	// ErrTimeout is returned when a model call exceeds its deadline.
	ErrTimeout = errors.New("timed out waiting for model response")
	// ErrMalformedResponse is returned when a model reply cannot be parsed.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrUnknownReference is returned when a harmonized entry names an item the pass does not know.
	ErrUnknownReference = errors.New("unknown item reference")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// CredentialError is returned before any model call when a remote provider
// has no usable API key.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("remote API key unavailable: %v", e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
