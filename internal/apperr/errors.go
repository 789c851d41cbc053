// Package apperr defines the errors services return to their callers.
// Handlers map each type onto an HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports malformed or inconsistent input, keyed by field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidation returns a ValidationError for a single field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for field and returns e.
func (e *ValidationError) Add(field, message string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
	return e
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil returns e when it holds failures, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError reports a reference to a record that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFound returns a NotFoundError for resource id.
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// AuthenticationError reports bad credentials or an unusable token.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return e.Reason
}

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = &AuthenticationError{Reason: "invalid credentials"}

// ForbiddenError reports an authenticated caller acting on someone else's record.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
