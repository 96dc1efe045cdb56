package errors

import (
	"fmt"
	"net/http"
)

// Kind classifies an application error for HTTP status mapping.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindInvalidWindow
	KindInvalidDuration
	KindConflict
	KindInvalidState
	KindInternal
)

// AppError represents an application error
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
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

// StatusCode maps the error kind to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidWindow, KindInvalidDuration, KindInvalidState:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func InvalidWindow(message string) *AppError {
	return &AppError{Kind: KindInvalidWindow, Message: message}
}

func InvalidDuration(message string) *AppError {
	return &AppError{Kind: KindInvalidDuration, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func InvalidState(message string) *AppError {
	return &AppError{Kind: KindInvalidState, Message: message}
}

func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "internal server error", Err: err}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Kind == kind
}
