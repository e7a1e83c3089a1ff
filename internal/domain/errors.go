package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrValidation     = errors.New("validation error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrSchemaNotReady = errors.New("schema not ready")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// ServiceErrorKind classifies failures of the external analysis service.
type ServiceErrorKind string

const (
	// ServiceErrorTransient covers network errors, timeouts, 5xx and rate limits.
	ServiceErrorTransient ServiceErrorKind = "transient"
	// ServiceErrorAuth covers rejected credentials. It does not resolve by itself.
	ServiceErrorAuth ServiceErrorKind = "auth"
)

// ServiceError is returned by the analysis client for any failed call.
// StatusCode is 0 when no HTTP response was received.
type ServiceError struct {
	Kind       ServiceErrorKind
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("analysis service (%s, status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("analysis service (%s): %v", e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ServiceErrorKindOf returns the kind of a ServiceError anywhere in err's chain.
// Errors that are not ServiceErrors are reported as transient.
func ServiceErrorKindOf(err error) ServiceErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ServiceErrorTransient
}
