package progress

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// ─────────────────────────────────────────────────────────────────────────────
// Channel Observer
// ─────────────────────────────────────────────────────────────────────────────

// ChannelObserver forwards updates to a channel consumed by the UI.
type ChannelObserver struct {
	channel chan<- Update
}

// NewChannelObserver creates an observer that sends updates to ch.
// A nil channel discards updates.
func NewChannelObserver(ch chan<- Update) *ChannelObserver {
	return &ChannelObserver{channel: ch}
}

// Update sends the clamped progress without blocking; when the channel is
// full the update is dropped and the UI catches up on the next one.
func (o *ChannelObserver) Update(index int, progress float64) {
	if o.channel == nil {
		return
	}
	if progress > 1.0 {
		progress = 1.0
	}
	select {
	case o.channel <- Update{Index: index, Value: progress}:
	default:
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Logging Observer
// ─────────────────────────────────────────────────────────────────────────────

// LoggingObserver logs progress at debug level, throttled by a threshold.
type LoggingObserver struct {
	logger    zerolog.Logger
	labels    []int
	threshold float64
	lastLog   map[int]float64
	mu        sync.Mutex
}

// NewLoggingObserver creates an observer that logs an update when progress
// moved by at least threshold (default 0.1) since the last logged value.
// labels maps sweep indices to K values for the "k" field; indices without a
// label are logged as is.
func NewLoggingObserver(logger zerolog.Logger, threshold float64, labels []int) *LoggingObserver {
	if threshold <= 0 {
		threshold = 0.1
	}
	return &LoggingObserver{
		logger:    logger,
		labels:    labels,
		threshold: threshold,
		lastLog:   make(map[int]float64),
	}
}

// Update logs significant progress changes.
func (o *LoggingObserver) Update(index int, progress float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	last := o.lastLog[index]
	shouldLog := progress >= 1.0 ||
		last == 0 && progress > 0 ||
		progress-last >= o.threshold

	if shouldLog {
		o.logger.Debug().
			Int("k", label(o.labels, index)).
			Float64("progress", progress).
			Str("percent", fmt.Sprintf("%.1f%%", progress*100)).
			Msg("sweep progress")
		o.lastLog[index] = progress
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Metrics Observer (Prometheus)
// ─────────────────────────────────────────────────────────────────────────────

var progressGauge = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "mfm_sweep_progress",
		Help: "Progress of the current sweep per K value (0.0 to 1.0)",
	},
	[]string{"k"},
)

// MetricsObserver exports progress to the mfm_sweep_progress gauge.
type MetricsObserver struct {
	gauge  *prometheus.GaugeVec
	labels []int
}

// NewMetricsObserver creates an observer labelling the gauge with the K value
// of each sweep index.
func NewMetricsObserver(labels []int) *MetricsObserver {
	return &MetricsObserver{gauge: progressGauge, labels: labels}
}

// Update sets the gauge of the index's K value.
func (o *MetricsObserver) Update(index int, progress float64) {
	o.gauge.WithLabelValues(strconv.Itoa(label(o.labels, index))).Set(progress)
}

// ResetMetrics clears the gauge; called at the start of a sweep.
func (o *MetricsObserver) ResetMetrics() {
	o.gauge.Reset()
}

func label(labels []int, index int) int {
	if index >= 0 && index < len(labels) {
		return labels[index]
	}
	return index
}
