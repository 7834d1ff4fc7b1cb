package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/agbru/mfmprime/internal/config"
	"github.com/agbru/mfmprime/internal/correction"
	apperrors "github.com/agbru/mfmprime/internal/errors"
	"github.com/agbru/mfmprime/internal/logging"
	"github.com/agbru/mfmprime/internal/primality"
	"github.com/agbru/mfmprime/internal/service"
	"github.com/agbru/mfmprime/pkg/models"
)

// mockService implements service.Service for testing.
type mockService struct {
	record models.SweepRecord
	err    error
	got    service.SweepRequest
}

func (m *mockService) Sweep(ctx context.Context, req service.SweepRequest) (models.SweepRecord, error) {
	m.got = req
	if m.err != nil {
		return models.SweepRecord{}, m.err
	}
	rec := m.record
	rec.K = req.K
	return rec, nil
}

func testConfig() config.AppConfig {
	return config.AppConfig{
		Port:        "8080",
		NMax:        200,
		KValues:     []int{5},
		Policy:      correction.PolicyFixed,
		Amplitude:   correction.DefaultAmplitude,
		Basis:       string(correction.BasisFourier),
		Engine:      string(correction.EngineAuto),
		PrimeTest:   primality.DefaultTester,
		PrimeRounds: primality.DefaultRounds,
	}
}

func quietLogger() logging.Logger {
	return logging.NewStdLoggerAdapter(log.New(io.Discard, "", 0))
}

// createTestServer initializes a server with a mock service and no rate limit.
func createTestServer(svc service.Service) *Server {
	return NewServer(testConfig(),
		WithService(svc),
		WithLogger(quietLogger()),
		WithRateLimiter(NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 1000})))
}

// TestHandleSweep verifies the behavior of the sweep endpoint.
func TestHandleSweep(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		mockErr        error
		expectedStatus int
		expectedText   string
	}{
		{name: "Success", query: "?k=5", expectedStatus: http.StatusOK, expectedText: `"prime_count":42`},
		{name: "Missing k", query: "", expectedStatus: http.StatusBadRequest, expectedText: "Missing 'k' parameter"},
		{name: "Invalid k", query: "?k=abc", expectedStatus: http.StatusBadRequest, expectedText: "Invalid 'k' parameter"},
		{name: "Zero k", query: "?k=0", expectedStatus: http.StatusBadRequest, expectedText: "Invalid 'k' parameter"},
		{name: "Negative n", query: "?k=5&n=-3", expectedStatus: http.StatusBadRequest, expectedText: "Invalid 'n' parameter"},
		{name: "Invalid seed", query: "?k=5&seed=x", expectedStatus: http.StatusBadRequest, expectedText: "Invalid 'seed' parameter"},
		{name: "Max exceeded", query: "?k=5&n=30000", mockErr: service.ErrMaxValueExceeded, expectedStatus: http.StatusBadRequest, expectedText: "exceeds maximum allowed"},
		{name: "Validation failure", query: "?k=500", mockErr: apperrors.NewValidationError("k", "must be in [1, 200]", 500), expectedStatus: http.StatusBadRequest, expectedText: "must be in [1, 200]"},
		{name: "Timeout", query: "?k=5", mockErr: context.DeadlineExceeded, expectedStatus: http.StatusGatewayTimeout},
		{name: "Internal failure", query: "?k=5", mockErr: errors.New("boom"), expectedStatus: http.StatusInternalServerError, expectedText: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{record: models.NewSweepRecord(0, 42, 200, 0.5), err: tt.mockErr}
			server := createTestServer(svc)

			req := httptest.NewRequest(http.MethodGet, "/sweep"+tt.query, http.NoBody)
			w := httptest.NewRecorder()
			server.Handler().ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d (body %s)", tt.expectedStatus, w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected application/json, got %q", ct)
			}
			if tt.expectedText != "" && !strings.Contains(w.Body.String(), tt.expectedText) {
				t.Errorf("expected body to contain %q, got %s", tt.expectedText, w.Body.String())
			}
		})
	}
}

// TestHandleSweepResponse checks the decoded success body and the request
// forwarded to the service.
func TestHandleSweepResponse(t *testing.T) {
	svc := &mockService{record: models.NewSweepRecord(0, 42, 300, 0.25)}
	server := createTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/sweep?k=7&n=300&policy=SEEDED&seed=11", http.NoBody)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	want := service.SweepRequest{K: 7, NMax: 300, Policy: "seeded", Seed: 11}
	if svc.got != want {
		t.Errorf("service got %+v, want %+v", svc.got, want)
	}

	var resp SweepResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.K != 7 || resp.PrimeCount != 42 || resp.N != 300 || resp.Policy != "seeded" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.PrimeFraction != 42.0/300 {
		t.Errorf("PrimeFraction = %v, want %v", resp.PrimeFraction, 42.0/300)
	}
	if resp.Duration == "" {
		t.Error("expected a duration")
	}
}

// TestHandleSweepDefaults checks that omitted parameters echo the server
// configuration.
func TestHandleSweepDefaults(t *testing.T) {
	server := createTestServer(&mockService{record: models.NewSweepRecord(0, 1, 200, 0)})

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sweep?k=3", http.NoBody))

	var resp SweepResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.N != 200 || resp.Policy != correction.PolicyFixed {
		t.Errorf("expected defaults n=200 policy=fixed, got n=%d policy=%s", resp.N, resp.Policy)
	}
}

// TestHandleSweepRealService runs a small pass end to end.
func TestHandleSweepRealService(t *testing.T) {
	server := NewServer(testConfig(),
		WithLogger(quietLogger()),
		WithRateLimiter(NewRateLimiter(RateLimiterConfig{RequestsPerMinute: 1000})))

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sweep?k=5&n=100", http.NoBody))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp SweepResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.K != 5 || resp.N != 100 {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.PrimeFraction != float64(resp.PrimeCount)/100 {
		t.Errorf("PrimeFraction = %v, want %v", resp.PrimeFraction, float64(resp.PrimeCount)/100)
	}

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", http.NoBody))
	var info struct {
		BaseCache struct {
			Misses  uint64 `json:"misses"`
			Entries int    `json:"entries"`
		} `json:"base_cache"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to decode info: %v", err)
	}
	if info.BaseCache.Misses != 1 || info.BaseCache.Entries != 1 {
		t.Errorf("base_cache = %+v, want one miss and one entry", info.BaseCache)
	}
}

// TestHandleHealth verifies the health check endpoint.
func TestHandleHealth(t *testing.T) {
	server := createTestServer(&mockService{})

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected status healthy, got %v", body["status"])
	}
}

// TestHandleInfo verifies the info endpoint lists the selectable names.
func TestHandleInfo(t *testing.T) {
	server := createTestServer(&mockService{})

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", http.NoBody))

	var body struct {
		Policies   []string `json:"policies"`
		PrimeTests []string `json:"prime_tests"`
		MaxN       int      `json:"max_n"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Policies) != len(correction.Policies()) {
		t.Errorf("expected %v, got %v", correction.Policies(), body.Policies)
	}
	if len(body.PrimeTests) == 0 {
		t.Error("expected at least one prime test")
	}
	if body.MaxN != DefaultMaxNValue {
		t.Errorf("expected max_n %d, got %d", DefaultMaxNValue, body.MaxN)
	}
}

// TestMethodNotAllowed verifies that non-GET methods are rejected.
func TestMethodNotAllowed(t *testing.T) {
	server := createTestServer(&mockService{})
	for _, path := range []string{"/sweep?k=5", "/health", "/info", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, http.NoBody))
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("expected status 405, got %d", w.Code)
			}
			if got := w.Header().Get("Allow"); got != http.MethodGet {
				t.Errorf("Allow = %q, want GET", got)
			}
		})
	}
}

// Not parallel: the request counters are process-wide.
func TestMetricsMiddlewareCountsByStatus(t *testing.T) {
	server := createTestServer(&mockService{})
	ok := requestsTotal.WithLabelValues("/health", "200")
	rejected := requestsTotal.WithLabelValues("/health", "405")
	okBefore, rejectedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(rejected)

	for _, method := range []string{http.MethodGet, http.MethodGet, http.MethodPost} {
		server.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, "/health", http.NoBody))
	}

	if got := testutil.ToFloat64(ok) - okBefore; got != 2 {
		t.Errorf("200 count grew by %v, want 2", got)
	}
	if got := testutil.ToFloat64(rejected) - rejectedBefore; got != 1 {
		t.Errorf("405 count grew by %v, want 1", got)
	}
	if got := testutil.ToFloat64(activeRequests); got != 0 {
		t.Errorf("active requests = %v after all responses, want 0", got)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Port = "0"
	srv := NewServer(cfg, WithService(&mockService{}), WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunReportsListenFailure(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Port = "not-a-port"
	srv := NewServer(cfg, WithService(&mockService{}), WithLogger(quietLogger()))

	err := srv.Run(context.Background())
	var serverErr apperrors.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("Run() = %v, want a ServerError", err)
	}
}

// TestLoggingMiddleware verifies that the logging middleware executes the
// next handler and logs the status.
func TestLoggingMiddleware(t *testing.T) {
	var buf strings.Builder
	server := NewServer(testConfig(), WithStdLogger(log.New(&buf, "", 0)), WithService(&mockService{}))

	handlerCalled := false
	wrapped := server.loggingMiddleware(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusTeapot)
	})

	wrapped(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

	if !handlerCalled {
		t.Error("Handler was not called")
	}
	if !strings.Contains(buf.String(), "GET /test 418") {
		t.Errorf("expected log line with method, path and status, got %q", buf.String())
	}
}

// TestParseSweepParams verifies the query parsing.
func TestParseSweepParams(t *testing.T) {
	tests := []struct {
		query   string
		want    service.SweepRequest
		wantErr bool
	}{
		{query: "k=5", want: service.SweepRequest{K: 5}},
		{query: "k=5&n=1000&policy=Fixed&seed=3", want: service.SweepRequest{K: 5, NMax: 1000, Policy: "fixed", Seed: 3}},
		{query: "", wantErr: true},
		{query: "k=-1", wantErr: true},
		{query: "k=5&n=0", wantErr: true},
		{query: "k=99999999999", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/sweep?"+tt.query, http.NoBody)
			got, err := parseSweepParams(r)
			if tt.wantErr {
				var pe SweepParseError
				if !errors.As(err, &pe) || pe.StatusCode != http.StatusBadRequest {
					t.Fatalf("expected SweepParseError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestWithLogger verifies the WithLogger option.
func TestWithLogger(t *testing.T) {
	server := NewServer(testConfig(), WithLogger(nil))
	if server.logger == nil {
		t.Error("expected default logger to be set")
	}

	server = NewServer(testConfig(), WithStdLogger(log.New(io.Discard, "[CUSTOM] ", 0)))
	if server.logger == nil {
		t.Error("expected custom logger to be set")
	}
}

// TestWithService verifies the WithService option.
func TestWithService(t *testing.T) {
	server := NewServer(testConfig(), WithService(nil))
	if _, ok := server.service.(*service.SweepService); !ok {
		t.Errorf("expected default SweepService, got %T", server.service)
	}

	custom := &mockService{}
	server = NewServer(testConfig(), WithService(custom))
	if server.service != custom {
		t.Error("expected custom service to be set")
	}
}

// TestWithTimeouts verifies the WithTimeouts option.
func TestWithTimeouts(t *testing.T) {
	customTimeouts := Timeouts{
		RequestTimeout:  10 * time.Minute,
		ShutdownTimeout: 60 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    15 * time.Minute,
		IdleTimeout:     5 * time.Minute,
	}

	server := NewServer(testConfig(), WithTimeouts(customTimeouts))
	if server.timeouts.RequestTimeout != customTimeouts.RequestTimeout {
		t.Errorf("expected RequestTimeout=%v, got %v", customTimeouts.RequestTimeout, server.timeouts.RequestTimeout)
	}
	if server.httpServer.ReadTimeout != customTimeouts.ReadTimeout {
		t.Errorf("expected ReadTimeout=%v, got %v", customTimeouts.ReadTimeout, server.httpServer.ReadTimeout)
	}
}

func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		name    string
		request time.Duration
		sweep   time.Duration
		want    time.Duration
	}{
		{name: "ServerDefault", request: 5 * time.Minute, want: 5 * time.Minute},
		{name: "ShorterSweepTimeout", request: 5 * time.Minute, sweep: time.Minute, want: time.Minute},
		{name: "LongerSweepTimeout", request: 5 * time.Minute, sweep: time.Hour, want: 5 * time.Minute},
		{name: "NoServerTimeout", sweep: 2 * time.Minute, want: 2 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Timeout = tt.sweep
			s := NewServer(cfg, WithTimeouts(Timeouts{RequestTimeout: tt.request}), WithService(&mockService{}))
			defer s.rateLimiter.Stop()
			if got := s.requestTimeout(); got != tt.want {
				t.Errorf("requestTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestWithMaxN verifies the WithMaxN option.
func TestWithMaxN(t *testing.T) {
	server := NewServer(testConfig(), WithMaxN(1000))
	if server.securityConfig.MaxNValue != 1000 {
		t.Errorf("expected MaxN=1000, got %d", server.securityConfig.MaxNValue)
	}
}

// TestSweepParseErrorMessage verifies the SweepParseError.Error() method.
func TestSweepParseErrorMessage(t *testing.T) {
	err := SweepParseError{Message: "test error message", StatusCode: http.StatusBadRequest}
	if err.Error() != "test error message" {
		t.Errorf("expected 'test error message', got '%s'", err.Error())
	}
}
