package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries an HTTP status and machine-readable code alongside the cause.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Validation marks a synchronously rejected malformed input. Never retried.
func Validation(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

// NotFound marks a missing resource referenced by the request.
func NotFound(code string, err error) *Error {
	return New(http.StatusNotFound, code, err)
}

// Upstream marks an unreachable or exhausted backend dependency. Callers may retry.
func Upstream(code string, err error) *Error {
	return New(http.StatusServiceUnavailable, code, err)
}

// From extracts the *Error from err, or wraps err as an internal error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(http.StatusInternalServerError, "internal_error", err)
}
