// Package errors provides the structured error type shared by refdash
// components. Every error carries a code so callers can tell a transport
// failure from a decoding problem without string matching.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrFetch  = "FETCH"
	ErrDecode = "DECODE"
	ErrConfig = "CONFIG"
	ErrRender = "RENDER"
	ErrServe  = "SERVE"
)

// Error is a structured error with code, message, suggestion, and optional cause.
//
//	✗ <What failed>
//
//	  <Why it failed>
//
//	  <How to fix it>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a structured error without an underlying cause.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// WrapWithCode wraps err with a code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Summary returns the message and cause on a single line, for log records
// and status bars where the multi-line form does not fit.
func (e *Error) Summary() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var rdErr *Error
	if errors.As(err, &rdErr) {
		return rdErr.Code == code
	}
	return false
}

// Summary renders any error on one line, using Error.Summary when possible.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var rdErr *Error
	if errors.As(err, &rdErr) {
		return rdErr.Summary()
	}
	return err.Error()
}
