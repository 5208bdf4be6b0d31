package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	withCause := NewDomainError(ErrorTypeNotFound, "drink not found", errors.New("db error"))
	assert.Equal(t, "not_found: drink not found (db error)", withCause.Error())

	bare := &DomainError{Type: ErrorTypeValidation, Message: "invalid input"}
	assert.Equal(t, "validation: invalid input", bare.Error())
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same type", NewDomainError(ErrorTypeNotFound, "gone", nil), ErrDrinkNotFound, true},
		{"wrapped same type", fmt.Errorf("get: %w", NewDomainError(ErrorTypeConflict, "dup", nil)), ErrDuplicateTitle, true},
		{"different type", NewDomainError(ErrorTypeValidation, "bad", nil), ErrDrinkNotFound, false},
		{"not a domain error", ErrDrinkNotFound, errors.New("regular error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil)
	err.WithDetail("field", "title").WithDetail("tag", "required")

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "title", details["field"])
	assert.Equal(t, "required", details["tag"])
	assert.Nil(t, GetErrorDetails(errors.New("regular")))
}

func TestErrorTypePredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"not found", ErrDrinkNotFound, ErrorTypeNotFound},
		{"validation", ErrMissingDrinkFields, ErrorTypeValidation},
		{"conflict", ErrDuplicateTitle, ErrorTypeConflict},
		{"unprocessable", ErrDrinkNotStored, ErrorTypeUnprocessable},
		{"internal", WrapInternal("list failed", errors.New("conn reset")), ErrorTypeInternal},
		{"wrapped", fmt.Errorf("outer: %w", ErrDrinkNotFound), ErrorTypeNotFound},
		{"regular", errors.New("regular"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorType(tt.err))
			assert.Equal(t, tt.want == ErrorTypeNotFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.want == ErrorTypeValidation, IsValidationError(tt.err))
			assert.Equal(t, tt.want == ErrorTypeConflict, IsConflictError(tt.err))
			assert.Equal(t, tt.want == ErrorTypeUnprocessable, IsUnprocessableError(tt.err))
		})
	}
}

func TestWrapError(t *testing.T) {
	baseErr := errors.New("base error")
	wrapped := WrapError(ErrorTypeConflict, "wrapped message", baseErr)

	var domainErr *DomainError
	require.True(t, errors.As(wrapped, &domainErr))
	assert.Equal(t, ErrorTypeConflict, domainErr.Type)
	assert.Equal(t, "wrapped message", domainErr.Message)
	assert.Equal(t, baseErr, errors.Unwrap(wrapped))
}
