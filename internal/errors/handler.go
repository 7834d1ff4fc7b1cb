package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the terminal codes used to highlight durations.
// It keeps this package free of a dependency on the ui packages.
type ColorProvider interface {
	Yellow() string
	Reset() string
}

// DefaultColorProvider emits no color codes.
type DefaultColorProvider struct{}

func (DefaultColorProvider) Yellow() string { return "" }
func (DefaultColorProvider) Reset() string  { return "" }

// ExitCode maps err to the process exit status. Context errors win over
// the error type, so a SweepError caused by a deadline is a timeout.
func ExitCode(err error) int {
	var (
		reportErr ReportError
		cfgErr    ConfigError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &reportErr):
		return ExitErrorReport
	case errors.As(err, &cfgErr):
		return ExitErrorConfig
	default:
		return ExitErrorGeneric
	}
}

// HandleSweepError prints a one-line status for a failed sweep and returns
// its exit code. duration, when positive, is how long the sweep ran.
// A nil colors prints plain text.
func HandleSweepError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	code := ExitCode(err)
	if code == ExitSuccess {
		return code
	}
	if colors == nil {
		colors = DefaultColorProvider{}
	}

	after := ""
	if duration > 0 {
		after = fmt.Sprintf(" after %s%s%s", colors.Yellow(), duration, colors.Reset())
	}

	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "Status: Failure (Timeout). The execution limit was reached%s.\n", after)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Yellow(), after, colors.Reset())
	case ExitErrorReport:
		fmt.Fprintf(out, "Status: Failure. Results could not be saved: %v\n", err)
	case ExitErrorConfig:
		fmt.Fprintf(out, "Status: Failure. Invalid configuration: %v\n", err)
	default:
		fmt.Fprintf(out, "Status: Failure. An unexpected error occurred: %v\n", err)
	}
	return code
}
