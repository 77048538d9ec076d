package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error
type Kind int

// AppError represents an application error
type AppError struct {
	Kind    Kind              `json:"-"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to an HTTP status
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusBadGateway
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Error kinds
const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
	KindValidation
	KindUnauthorized
	KindForbidden
	KindConflict
	KindUnavailable
	KindTooManyRequests
	KindTooLarge
)

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Kind:    KindBadRequest,
		Message: message,
		Err:     err,
	}
}

// Validation carries per-field messages, keyed by JSON field name
func Validation(message string, fields map[string]string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: message,
		Fields:  fields,
	}
}

func Unauthorized(message string, err error) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Kind:    KindUnauthorized,
		Message: message,
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Kind:    KindForbidden,
		Message: message,
	}
}

func Conflict(message string, err error) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Message: message,
		Err:     err,
	}
}

func Unavailable(message string, err error) *AppError {
	return &AppError{
		Kind:    KindUnavailable,
		Message: message,
		Err:     err,
	}
}

func TooManyRequests(message string) *AppError {
	return &AppError{Kind: KindTooManyRequests, Message: message}
}

func TooLarge(message string) *AppError {
	return &AppError{Kind: KindTooLarge, Message: message}
}

func Internal(err error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// As returns the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an AppError of the given kind
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
