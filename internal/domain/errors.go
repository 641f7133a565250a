package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrUnknownEmail     = errors.New("email not registered")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrDuplicateTitle   = errors.New("post title already exists")
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError lists the offending form fields and a message for each.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns nil when fields is empty.
func NewValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
