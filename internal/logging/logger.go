// Package logging provides the unified logger used across the application.
// It exposes a small printf-style interface for human-oriented messages and
// a zerolog constructor for structured events, so that packages can log
// without depending on a concrete backend.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the minimal logging interface shared by the server and the
// sweep driver.
type Logger interface {
	Printf(format string, v ...any)
	Println(v ...any)
}

// ZerologAdapter implements Logger on top of a zerolog.Logger.
// Every message is emitted at Info level with a "component" field.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewLogger creates a Logger writing human-readable zerolog output to w,
// tagged with the given component name.
//
// Parameters:
//   - w: The destination writer.
//   - component: The component name attached to every event (e.g., "server").
//
// Returns:
//   - Logger: A logger backed by zerolog.
func NewLogger(w io.Writer, component string) Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}).
		With().Timestamp().Str("component", component).Logger()
	return &ZerologAdapter{logger: zl}
}

// NewZerologAdapter wraps an existing zerolog.Logger.
func NewZerologAdapter(zl zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: zl}
}

// Printf logs a formatted message. A trailing newline is trimmed since
// zerolog terminates each event itself.
func (a *ZerologAdapter) Printf(format string, v ...any) {
	a.logger.Info().Msg(strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

// Println logs its operands separated by spaces.
func (a *ZerologAdapter) Println(v ...any) {
	a.logger.Info().Msg(strings.TrimRight(fmt.Sprintln(v...), "\n"))
}

// StdLoggerAdapter implements Logger on top of a standard library log.Logger.
type StdLoggerAdapter struct {
	logger *log.Logger
}

// NewStdLoggerAdapter wraps a *log.Logger.
func NewStdLoggerAdapter(l *log.Logger) *StdLoggerAdapter {
	return &StdLoggerAdapter{logger: l}
}

func (a *StdLoggerAdapter) Printf(format string, v ...any) { a.logger.Printf(format, v...) }
func (a *StdLoggerAdapter) Println(v ...any)               { a.logger.Println(v...) }

// NewZerolog builds a structured zerolog.Logger at the requested level.
// When console is true the output is human-readable; otherwise it is JSON.
//
// Parameters:
//   - w: The destination writer.
//   - level: A zerolog level name ("debug", "info", "warn", "error", "disabled").
//   - console: Whether to use the console writer.
//
// Returns:
//   - zerolog.Logger: The configured logger.
//   - error: An error if the level name is unknown.
func NewZerolog(w io.Writer, level string, console bool) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// ParseLevel converts a level name into a zerolog.Level.
// The empty string maps to warn.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.WarnLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q: %w", level, err)
	}
	return lvl, nil
}
