// Package apperror defines the error kinds the emulator surfaces to callers.
//
// Every expected failure is an *AppError wrapping one of the sentinels below,
// so callers can branch with errors.Is and still read a human message:
//
//	errors.Is(err, apperror.ErrConflict)  → the login is already registered
//	errors.Is(err, apperror.ErrNotFound)  → no such hub / user
//
// Transport code (internal/handler) maps the sentinels to status codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("Validation Failed")
	ErrConflict   = errors.New("already exists")
	ErrInternal   = errors.New("internal error")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Key     string // Optional: the conflicting or missing key (e.g. a login)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
		Key:     id,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// AlreadyExists reports that key is taken, e.g. AlreadyExists("login", "jeff").
func AlreadyExists(field, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", field, key),
		Field:   field,
		Key:     key,
	}
}

// Internal reports a broken invariant. HTTP handlers map this to 500 and the
// request is aborted.
func Internal(message string) *AppError {
	return &AppError{
		Err:     ErrInternal,
		Message: message,
	}
}
