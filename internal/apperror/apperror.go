// Package apperror holds the error kinds raised below the HTTP layer.
//
// Stores and services return *AppError values built by the constructors here.
// Callers branch on the kind with errors.Is against one of the Err* sentinels,
// and handlers.ErrorHandler picks the response status from that kind alone.
// Any other error from those layers is served as a 500.
package apperror

import (
	"errors"
	"fmt"
)

// Kinds. The comment on each is the status it is served with.
var (
	ErrValidation    = errors.New("validation error") // 400
	ErrSelfReference = errors.New("self reference")   // 400, a user following themselves
	ErrUnauthorized  = errors.New("unauthorized")     // 401
	ErrForbidden     = errors.New("forbidden")        // 403
	ErrNotFound      = errors.New("not found")        // 404
	ErrConflict      = errors.New("conflict")         // 409
)

// AppError is a kind plus a message that is safe to return to the client
// verbatim. Field names the offending request field for validation errors.
type AppError struct {
	Err     error
	Message string
	Field   string
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Err }

func newError(kind error, format string, args ...any) *AppError {
	return &AppError{Err: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound is raised by lookups by primary key.
func NotFound(resource string, id any) *AppError {
	return newError(ErrNotFound, "%s not found with id %v", resource, id)
}

// ValidationFailed rejects input that passed binding but not the service rules,
// such as content that trims to nothing.
func ValidationFailed(field, message string) *AppError {
	e := newError(ErrValidation, "%s", message)
	e.Field = field
	return e
}

func SelfReference(message string) *AppError {
	return newError(ErrSelfReference, "%s", message)
}

// Conflict reports a uniqueness clash on resource, e.g. a taken username.
func Conflict(resource, message string) *AppError {
	return newError(ErrConflict, "%s conflict: %s", resource, message)
}

func Forbidden(message string) *AppError {
	return newError(ErrForbidden, "%s", message)
}

// Unauthorized covers bad credentials and rejected tokens alike.
func Unauthorized(message string) *AppError {
	return newError(ErrUnauthorized, "%s", message)
}
