// internal/errs/errors.go
package errs

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	CodeFetch           ErrorCode = "FETCH"
	CodeExtraction      ErrorCode = "EXTRACTION"
	CodeUnknownCurrency ErrorCode = "UNKNOWN_CURRENCY"
	CodeKeyNotFound     ErrorCode = "KEY_NOT_FOUND"
	CodeConfig          ErrorCode = "CONFIG"
)

// Sentinels for errors.Is. Matching is by code only.
var (
	ErrFetch           = &Error{Code: CodeFetch}
	ErrExtraction      = &Error{Code: CodeExtraction}
	ErrUnknownCurrency = &Error{Code: CodeUnknownCurrency}
	ErrKeyNotFound     = &Error{Code: CodeKeyNotFound}
	ErrConfig          = &Error{Code: CodeConfig}
)

// Error wraps errors with a code and additional context
type Error struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// New creates a new Error
func New(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Fetch reports a network failure or a non-success HTTP status for url.
// status is 0 when no response was received.
func Fetch(url string, status int, err error) *Error {
	msg := fmt.Sprintf("fetching %s", url)
	if status != 0 {
		msg = fmt.Sprintf("fetching %s: HTTP %d", url, status)
	}
	return New(CodeFetch, msg, err).
		WithDetail("url", url).
		WithDetail("status", status)
}

// Extraction reports markup that does not match a source's layout.
func Extraction(source, format string, args ...interface{}) *Error {
	return New(CodeExtraction, fmt.Sprintf("%s: %s", source, fmt.Sprintf(format, args...)), nil).
		WithDetail("source", source)
}

// StatusCode returns the HTTP status recorded on a fetch error, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		if s, ok := e.Details["status"].(int); ok {
			return s
		}
	}
	return 0
}
