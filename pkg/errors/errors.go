// Package errors holds the application error taxonomy and its HTTP mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeValidation   = "VALIDATION_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeRateLimit    = "RATE_LIMIT_EXCEEDED"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Internal   error
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap exposes the internal error.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is matches any AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithInternal returns a copy with the cause attached.
func (e *AppError) WithInternal(err error) *AppError {
	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithMessage returns a copy with a different client facing message.
func (e *AppError) WithMessage(format string, args ...any) *AppError {
	cpy := *e
	cpy.Message = fmt.Sprintf(format, args...)
	return &cpy
}

var (
	ErrUnauthorized = New(CodeUnauthorized, "unauthorized", http.StatusUnauthorized)
	ErrNotFound     = New(CodeNotFound, "not found", http.StatusNotFound)
	ErrConflict     = New(CodeConflict, "resource already exists", http.StatusConflict)
	ErrUpstream     = New(CodeUpstream, "upstream service error", http.StatusBadGateway)
	ErrValidation   = New(CodeValidation, "invalid request", http.StatusUnprocessableEntity)
	ErrBadRequest   = New(CodeBadRequest, "malformed request", http.StatusBadRequest)
	ErrRateLimit    = New(CodeRateLimit, "too many requests", http.StatusTooManyRequests)
	ErrInternal     = New(CodeInternal, "internal server error", http.StatusInternalServerError)
)

// New builds an application error.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap attaches err as the cause of base.
func Wrap(base *AppError, err error) *AppError {
	return base.WithInternal(err)
}

// FromError returns the AppError in the chain, or ErrInternal wrapping err.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.WithInternal(err)
}

// StatusCode returns the HTTP status for any error.
func StatusCode(err error) int {
	appErr := FromError(err)
	if appErr == nil {
		return http.StatusOK
	}
	if appErr.StatusCode == 0 {
		return http.StatusInternalServerError
	}
	return appErr.StatusCode
}

// IsNotFound reports if err is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports if err is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsUpstream reports if err is an upstream failure.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}
