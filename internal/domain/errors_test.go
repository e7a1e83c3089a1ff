package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("content", "required")

	if got := err.Error(); got != "validation: content: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "content", Message: "required"},
		{Field: "owner_id", Message: "required"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrValidation,
		ErrUnauthorized, ErrConflict, ErrSchemaNotReady,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}

func TestServiceError_Error(t *testing.T) {
	t.Parallel()

	withStatus := &ServiceError{Kind: ServiceErrorAuth, StatusCode: 401, Err: errors.New("bad key")}
	if got := withStatus.Error(); got != "analysis service (auth, status 401): bad key" {
		t.Errorf("Error() = %q", got)
	}

	noStatus := &ServiceError{Kind: ServiceErrorTransient, Err: context.DeadlineExceeded}
	if got := noStatus.Error(); got != "analysis service (transient): context deadline exceeded" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(noStatus, context.DeadlineExceeded) {
		t.Error("ServiceError should unwrap to its cause")
	}
}

func TestServiceErrorKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ServiceErrorKind
	}{
		{"auth", &ServiceError{Kind: ServiceErrorAuth}, ServiceErrorAuth},
		{"wrapped auth", fmt.Errorf("analyze: %w", &ServiceError{Kind: ServiceErrorAuth}), ServiceErrorAuth},
		{"transient", &ServiceError{Kind: ServiceErrorTransient}, ServiceErrorTransient},
		{"plain error", errors.New("boom"), ServiceErrorTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ServiceErrorKindOf(tt.err); got != tt.want {
				t.Errorf("ServiceErrorKindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}
