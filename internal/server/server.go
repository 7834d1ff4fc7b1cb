// Package server exposes single sweep passes over HTTP, together with health
// and Prometheus endpoints.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/mfmprime/internal/config"
	apperrors "github.com/agbru/mfmprime/internal/errors"
	"github.com/agbru/mfmprime/internal/logging"
	"github.com/agbru/mfmprime/internal/service"
)

// Server represents the HTTP server for the sweep API.
// It wraps the standard http.Server and adds application-specific configuration
// and graceful shutdown capabilities.
type Server struct {
	service        service.Service
	cfg            config.AppConfig
	httpServer     *http.Server
	logger         logging.Logger
	events         zerolog.Logger
	rateLimiter    *RateLimiter
	securityConfig SecurityConfig
	metrics        *Metrics
	timeouts       Timeouts
}

// NewServer creates a new Server instance for the given configuration.
// It initializes the HTTP server with timeouts and a request multiplexer.
//
// Parameters:
//   - cfg: The application configuration (port, sequence defaults, engines).
//   - opts: Optional functional options for customizing the server (e.g., WithLogger).
//
// Returns:
//   - *Server: A pointer to the initialized Server.
func NewServer(cfg config.AppConfig, opts ...Option) *Server {
	s := &Server{
		cfg:            cfg,
		logger:         logging.NewLogger(os.Stdout, "server"),
		events:         zerolog.Nop(),
		securityConfig: DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		timeouts:       DefaultServerTimeouts(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.service == nil {
		s.service = service.NewSweepService(s.cfg, s.securityConfig.MaxNValue, s.events)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = NewRateLimiter(DefaultRateLimiterConfig())
	}

	mux := http.NewServeMux()
	for route, h := range map[string]http.HandlerFunc{
		"/sweep":   s.handleSweep,
		"/health":  s.handleHealth,
		"/info":    s.handleInfo,
		"/metrics": s.handleMetrics,
	} {
		mux.HandleFunc(route, s.wrapWithMiddleware(route, h))
	}

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
	}

	return s
}

// wrapWithMiddleware applies the middleware chain to the handler of route:
// Security -> RateLimit -> Logging -> Metrics -> GET only -> Handler.
func (s *Server) wrapWithMiddleware(route string, handler http.HandlerFunc) http.HandlerFunc {
	wrapped := s.metricsMiddleware(route, s.getOnly(handler))
	wrapped = s.loggingMiddleware(wrapped)
	wrapped = s.rateLimitMiddleware(wrapped)
	wrapped = s.securityMiddleware(wrapped)
	return wrapped
}

// Handler returns the routed handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server until SIGINT or SIGTERM.
func (s *Server) Start() error {
	return s.Run(context.Background())
}

// Run serves on the configured port until ctx is done or SIGINT/SIGTERM
// arrives, then shuts down gracefully within the shutdown timeout.
// A listen failure is returned as a ServerError.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer s.rateLimiter.Stop()

	s.logger.Printf("Starting server on %s (n=%d, policy=%s, basis=%s, engine=%s, prime_test=%s)",
		s.httpServer.Addr, s.cfg.NMax, s.cfg.Policy, s.cfg.Basis, s.cfg.Engine, s.cfg.PrimeTest)
	s.logger.Println("Endpoints: GET /sweep?k=<K>&n=<N>&policy=<policy>&seed=<seed>, /health, /info, /metrics")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return apperrors.NewServerError("server failed to start", err)
	case <-ctx.Done():
		s.logger.Println("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}
	s.logger.Println("Server stopped")
	return nil
}
