package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/mfmprime/pkg/models"
)

var (
	activeRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mfm_active_requests",
		Help: "Requests currently being served",
	})
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mfm_requests_total",
		Help: "Served requests by route and status code",
	}, []string{"path", "code"})
	sweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mfm_sweeps_total",
		Help: "Completed sweep passes",
	})
	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mfm_sweep_duration_seconds",
		Help:    "TimeSec of completed sweep passes",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	})
	primeFraction = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mfm_prime_fraction",
		Help: "Prime fraction of the last completed pass, per K",
	}, []string{"k"})
)

// Metrics serves the default Prometheus registry and records sweep results
// into it. Per-K progress gauges come from progress.MetricsObserver.
type Metrics struct {
	handler http.Handler
}

// NewMetrics creates a Metrics backed by promhttp.Handler.
func NewMetrics() *Metrics {
	return &Metrics{handler: promhttp.Handler()}
}

// RecordSweep accounts for one completed pass.
func (m *Metrics) RecordSweep(rec models.SweepRecord) {
	sweepsTotal.Inc()
	sweepDuration.Observe(rec.TimeSec)
	primeFraction.WithLabelValues(strconv.Itoa(rec.K)).Set(rec.PrimeFraction)
}

// ServeHTTP writes the exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}

// metricsMiddleware tracks in-flight requests and counts responses of the
// route by status code.
func (s *Server) metricsMiddleware(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeRequests.Inc()
		defer activeRequests.Dec()

		rec := recordStatus(w)
		next(rec, r)
		requestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	}
}
