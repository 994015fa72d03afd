package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError into the stable taxonomy surfaced to callers.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation_error"
	KindConflict   Kind = "conflict"
	KindForbidden  Kind = "forbidden"
	KindDependency Kind = "dependency_failure"
)

// AppError is the only error shape that crosses the service boundary. Raw
// store or collaborator errors are wrapped before leaving a service.
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	err     error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.err }

func NotFound(format string, args ...any) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *AppError {
	return &AppError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Dependency wraps a collaborator failure. The cause stays available for logs
// but is never serialized to the caller.
func Dependency(err error, format string, args ...any) *AppError {
	return &AppError{Kind: KindDependency, Message: fmt.Sprintf(format, args...), err: err}
}

// KindOf extracts the taxonomy kind, defaulting unknown errors to a
// dependency failure so nothing internal leaks as-is.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindDependency
}

// HTTPStatus maps an error kind to the transport status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is what the API returns for an error. Dependency failures get
// a generic message; everything else is already caller-safe.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindDependency {
		return appErr.Message
	}
	return "internal error, please try again later"
}
