package server

import (
	"log"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/mfmprime/internal/logging"
	"github.com/agbru/mfmprime/internal/service"
)

// Option configures a Server in NewServer.
type Option func(*Server)

// WithLogger replaces the request logger. Nil keeps the default.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStdLogger is WithLogger for a *log.Logger.
func WithStdLogger(logger *log.Logger) Option {
	if logger == nil {
		return WithLogger(nil)
	}
	return WithLogger(logging.NewStdLoggerAdapter(logger))
}

// WithEventLogger sets the structured logger of the default sweep service.
// It has no effect together with WithService.
func WithEventLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.events = logger }
}

// WithService replaces the sweep service, typically with a fake in tests.
// Nil keeps the default SweepService.
func WithService(svc service.Service) Option {
	return func(s *Server) {
		if svc != nil {
			s.service = svc
		}
	}
}

// WithTimeouts replaces every server timeout at once.
func WithTimeouts(timeouts Timeouts) Option {
	return func(s *Server) { s.timeouts = timeouts }
}

// Timeouts bounds the work of one request and the server lifecycle.
type Timeouts struct {
	// RequestTimeout caps a single /sweep pass; a shorter -timeout wins.
	RequestTimeout time.Duration
	// ShutdownTimeout caps the graceful shutdown.
	ShutdownTimeout time.Duration
	// ReadTimeout, WriteTimeout and IdleTimeout feed http.Server.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerTimeouts leaves WriteTimeout long enough for a sweep at
// DefaultMaxNValue.
func DefaultServerTimeouts() Timeouts {
	return Timeouts{
		RequestTimeout:  5 * time.Minute,
		ShutdownTimeout: 30 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Minute,
		IdleTimeout:     2 * time.Minute,
	}
}
