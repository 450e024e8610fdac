package errors

import (
	"fmt"
	"runtime"
)

// Category represents the type of error.
type Category string

const (
	CategoryGuard  Category = "guard"
	CategoryConfig Category = "config"
	CategoryCLI    Category = "cli"
)

// Location represents a source code location.
type Location struct {
	File string
	Line int
}

// String returns the location as file:line.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// ImpulseError is a structured error with an optional source location and a
// fix suggestion.
type ImpulseError struct {
	// Code is a unique error identifier (e.g., "E103").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is where the offending call was made.
	Location *Location

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ImpulseError) Error() string {
	msg := e.Message
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ImpulseError) Unwrap() error {
	return e.Wrapped
}

// WithLocation sets the source location.
func (e *ImpulseError) WithLocation(file string, line int) *ImpulseError {
	e.Location = &Location{File: file, Line: line}
	return e
}

// WithCaller records the location of the caller skip frames above the
// function calling WithCaller.
func (e *ImpulseError) WithCaller(skip int) *ImpulseError {
	if _, file, line, ok := runtime.Caller(skip + 1); ok {
		e.Location = &Location{File: file, Line: line}
	}
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ImpulseError) WithSuggestion(s string) *ImpulseError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the detailed explanation.
func (e *ImpulseError) WithDetail(d string) *ImpulseError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *ImpulseError) Wrap(err error) *ImpulseError {
	e.Wrapped = err
	return e
}

// New creates an ImpulseError from a registered error code.
func New(code string) *ImpulseError {
	template, ok := registry[code]
	if !ok {
		return &ImpulseError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ImpulseError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates an ImpulseError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *ImpulseError {
	return &ImpulseError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in an ImpulseError with the given code. An
// *ImpulseError is returned unchanged.
func FromError(err error, code string) *ImpulseError {
	if err == nil {
		return nil
	}
	if ie, ok := err.(*ImpulseError); ok {
		return ie
	}
	return New(code).Wrap(err)
}
