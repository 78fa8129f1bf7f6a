// Package apperror defines the application's error taxonomy.
//
// Services return these errors; the HTTP layer maps them to status codes in
// exactly one place (handler/response.go). Storage failures that don't match
// any sentinel below are deliberately NOT converted — they surface as a
// generic internal error at the boundary, so backend diagnostics (SQL text,
// file paths) never reach a client.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError pairs a sentinel (for errors.Is checks) with a human-readable
// message and, for validation errors, the offending field.
type AppError struct {
	Err     error  // one of the sentinels above
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that the referenced record does not exist.
// resource names the record kind: "game", "template", "checklist item".
func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

// NotFoundKey is NotFound for records addressed by a non-numeric key,
// such as a template share code.
func NotFoundKey(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, key),
	}
}

// ValidationFailed reports a missing or malformed input field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation — two checklist items with the same
// order under one game, or a second account registering an existing email.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden indicates the caller is authenticated but does not own the
// resource. HTTP handlers map this to 403.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized indicates missing or invalid credentials. HTTP handlers map
// this to 401. Login failures use a deliberately vague message — it must not
// reveal whether the email or the password was wrong.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
