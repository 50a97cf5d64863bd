package domain

import (
	"errors"
	"sort"
)

// Sentinel errors shared by repositories, services and the HTTP layer.
// Wrap them with fmt.Errorf("...: %w", ErrX) to add context.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrIntegration     = errors.New("integration failure")
	ErrNotConfigured   = errors.New("integration not configured")
)

// ValidationError carries per-field messages; it unwraps to ErrInvalidArgument.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msg := "validation failed:"
	for _, k := range sortedKeys(e.Fields) {
		msg += " " + k + ": " + e.Fields[k] + ";"
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// NewValidationError returns a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
