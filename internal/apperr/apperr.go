// Package apperr carries the coarse error taxonomy of the API: every failure
// ends up as an HTTP status plus a human-readable message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failure with the HTTP status it should be reported with
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error with the given status
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Wrap builds an Error that keeps the cause for logging
func Wrap(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error     { return New(http.StatusConflict, message) }

// Internal hides the cause from the client
func Internal(message string, err error) *Error {
	return Wrap(http.StatusInternalServerError, message, err)
}

// Upstream reports a failure of the external API. Client errors keep their
// status, everything else becomes 502. The upstream text is appended.
// 401 and 403 mean the API key was rejected, not the caller's session.
func Upstream(status int, detail string, err error) *Error {
	if status < 400 || status >= 500 || status == http.StatusUnauthorized || status == http.StatusForbidden {
		status = http.StatusBadGateway
	}
	message := "upstream request failed"
	if detail != "" {
		message = message + ": " + detail
	}
	return Wrap(status, message, err)
}

// Status returns the HTTP status for err, 500 for anything unclassified
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message for err
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
