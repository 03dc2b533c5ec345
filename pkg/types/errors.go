package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. Match with errors.Is.
var (
	ErrNetwork         = errors.New("network failure")
	ErrServerRejected  = errors.New("server rejected request")
	ErrValidation      = errors.New("validation failed")
	ErrAuthRequired    = errors.New("authentication required")
	ErrInvalidArgument = errors.New("invalid argument")
)

// ValidationError describes a client-side precondition that failed before
// any request was sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid returns a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// RejectedError is a response that reached the client but reported failure.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("API error (HTTP %d): %s", e.Status, e.Message)
}

// Is makes errors.Is(err, ErrServerRejected) true.
func (e *RejectedError) Is(target error) bool {
	return target == ErrServerRejected
}

// Message returns the most human-readable text available for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var rej *RejectedError
	if errors.As(err, &rej) && rej.Message != "" {
		return rej.Message
	}
	var val *ValidationError
	if errors.As(err, &val) {
		return val.Error()
	}
	switch {
	case errors.Is(err, ErrAuthRequired):
		return "please log in first"
	case errors.Is(err, ErrNetwork):
		return "failed to connect to server"
	}
	return err.Error()
}
