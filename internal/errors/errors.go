package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes. ErrAPI marks a well-formed response that reported ok=false;
// the dashboard treats it as a soft failure.
const (
	ErrConfig = "CONFIG" // missing or invalid settings
	ErrHTTP   = "HTTP"   // transport failure or non-2xx status
	ErrDecode = "DECODE" // body is not the JSON we expect
	ErrAPI    = "API"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrHTTP code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrHTTP,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface with the multi-line CLI format.
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

// Short returns a single-line form of the error, suitable for a status banner.
// The suggestion is omitted.
func (e *Error) Short() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// AsError finds the first structured Error in err's chain.
func AsError(err error) (*Error, bool) {
	var sdErr *Error
	if err == nil || !errors.As(err, &sdErr) {
		return nil, false
	}
	return sdErr, true
}

// CodeOf returns the code of the structured error in err's chain, or
// fallback when there is none.
func CodeOf(err error, fallback string) string {
	if sdErr, ok := AsError(err); ok {
		return sdErr.Code
	}
	return fallback
}

// IsCode reports whether err carries a structured Error with code.
func IsCode(err error, code string) bool {
	sdErr, ok := AsError(err)
	return ok && sdErr.Code == code
}

// OneLine flattens any error to a single line. Structured errors use Short;
// anything else has its newlines collapsed.
func OneLine(err error) string {
	if err == nil {
		return ""
	}
	if sdErr, ok := AsError(err); ok {
		return sdErr.Short()
	}
	return strings.Join(strings.Fields(err.Error()), " ")
}
