// Package errors carries the coded errors brickguide returns from blueprint
// loading, guide navigation, rendering and the server.
//
// A code names the failure class; the server turns it into an HTTP status and
// the CLI prints it in front of the message:
//
//	err := errors.New(errors.ErrCodeInvalidPlacement, "step %d leaves the grid", i)
//	errors.Is(err, errors.ErrCodeInvalidPlacement) // true
//	errors.StatusCode(err)                         // 400
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error.
type Code string

const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidPlacement Code = "INVALID_PLACEMENT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidDirection Code = "INVALID_DIRECTION"
	ErrCodeInvalidBlueprint Code = "INVALID_BLUEPRINT"

	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeBlueprintNotFound Code = "BLUEPRINT_NOT_FOUND"
	ErrCodeSessionNotFound   Code = "SESSION_NOT_FOUND"
	ErrCodeSessionExpired    Code = "SESSION_EXPIRED"

	ErrCodeRenderFailed Code = "RENDER_FAILED"
	ErrCodeUnavailable  Code = "UNAVAILABLE"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	ErrCodeInvalidInput:      http.StatusBadRequest,
	ErrCodeInvalidPlacement:  http.StatusBadRequest,
	ErrCodeInvalidFormat:     http.StatusBadRequest,
	ErrCodeInvalidDirection:  http.StatusBadRequest,
	ErrCodeInvalidBlueprint:  http.StatusBadRequest,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeBlueprintNotFound: http.StatusNotFound,
	ErrCodeSessionNotFound:   http.StatusNotFound,
	ErrCodeSessionExpired:    http.StatusUnauthorized,
	ErrCodeUnavailable:       http.StatusServiceUnavailable,
}

// Status returns the HTTP status for the code, 500 for unknown codes.
func (c Code) Status() int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a coded error. Message is safe to show to an operator; Cause may
// hold backend detail.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an error with code and a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the outermost coded error in err's chain, or
// "" when there is none.
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of a coded error without its code and
// cause, or err.Error() for any other error.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

// StatusCode returns the HTTP status the server answers err with.
func StatusCode(err error) int {
	return GetCode(err).Status()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
