// Package errors defines the coded errors shared by the stemma CLI and HTTP
// API.
//
// Every failure that reaches a user carries a [Code]. The CLI prints the
// message and the server turns the code into a status with [HTTPStatus]:
//
//	INVALID_RECORDS     malformed document or bad record key    400
//	CYCLE               a person is their own ancestor          422
//	UNREADABLE_SOURCE   record file exists but cannot be read   400
//	NOT_FOUND           missing file, URL or stored layout      404
//	NETWORK_ERROR       fetching a record URL failed            502
//	TIMEOUT             the layout or a fetch ran out of time   504
//
// Lower layers return plain sentinel errors; the pipeline and server attach
// codes with [Wrap] or [Classify] at the boundary.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidRecords Code = "INVALID_RECORDS"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeSource         Code = "UNREADABLE_SOURCE"
	ErrCodeCycle          Code = "CYCLE"
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeNetwork        Code = "NETWORK_ERROR"
	ErrCodeTimeout        Code = "TIMEOUT"
	ErrCodeInternal       Code = "INTERNAL_ERROR"
)

var statuses = map[Code]int{
	ErrCodeInvalidInput:   http.StatusBadRequest,
	ErrCodeInvalidRecords: http.StatusBadRequest,
	ErrCodeInvalidFormat:  http.StatusBadRequest,
	ErrCodeSource:         http.StatusBadRequest,
	ErrCodeCycle:          http.StatusUnprocessableEntity,
	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeNetwork:        http.StatusBadGateway,
	ErrCodeTimeout:        http.StatusGatewayTimeout,
	ErrCodeInternal:       http.StatusInternalServerError,
}

// Status returns the HTTP status for c. Unknown codes map to 500.
func (c Code) Status() int {
	if s, ok := statuses[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is an error with a code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Classify gives err a code if it has none yet. Deadline errors become
// TIMEOUT; anything else is returned unchanged. op names the step for the
// message.
func Classify(err error, op string) error {
	if err == nil || GetCode(err) != "" {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(ErrCodeTimeout, err, "%s", op)
	}
	return err
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns err without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// HTTPStatus maps err's code to an HTTP status. Uncoded errors map to 500.
func HTTPStatus(err error) int {
	return GetCode(err).Status()
}
