// Package apperrors holds the error types shared across the program and the
// exit codes they map to. Every type with a cause implements Unwrap, so
// callers classify errors with errors.Is and errors.As through any number of
// %w wraps.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitSuccess       = 0
	ExitErrorGeneric  = 1
	ExitErrorTimeout  = 2   // -timeout elapsed
	ExitErrorReport   = 3   // CSV or plot not written
	ExitErrorConfig   = 4   // invalid flags or environment
	ExitErrorCanceled = 130 // SIGINT/SIGTERM
)

// ConfigError reports invalid user input: flags, environment overrides or
// their combination.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError formats a ConfigError.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// SweepError is the failure of the pass for one K.
type SweepError struct {
	K     int
	Cause error
}

func (e SweepError) Error() string {
	return fmt.Sprintf("sweep K=%d: %v", e.K, e.Cause)
}

func (e SweepError) Unwrap() error { return e.Cause }

// NewSweepError attaches k to cause. A nil cause yields nil.
func NewSweepError(k int, cause error) error {
	if cause == nil {
		return nil
	}
	return SweepError{K: k, Cause: cause}
}

// ReportError is a failure to write the CSV table or a plot to Path.
type ReportError struct {
	Path  string
	Cause error
}

func (e ReportError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Cause)
}

func (e ReportError) Unwrap() error { return e.Cause }

// ServerError is a failure to start or stop the HTTP server.
type ServerError struct {
	Message string
	Cause   error
}

func (e ServerError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError builds a ServerError; cause may be nil.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// WrapError prefixes err with a formatted context message, keeping it
// unwrappable. A nil err yields nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsContextError reports whether err stems from cancellation or a deadline.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ValidationError rejects one argument: a server request parameter or an
// out-of-domain value passed to the numerical packages.
type ValidationError struct {
	Field   string
	Message string
	// Value is the rejected value, if known.
	Value any
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}
