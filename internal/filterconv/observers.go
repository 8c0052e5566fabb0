package filterconv

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Report describes one completed convolution.
type Report struct {
	// Strategy is the resolved algorithm (never StrategyAuto).
	Strategy Strategy
	// Parallel tells whether the work fanned out.
	Parallel bool
	// FilterLen and SignalLen are the input lengths.
	FilterLen int
	SignalLen int
	// Blocks is the number of overlap-save segments, 0 on the direct path.
	Blocks int
	// Duration is the wall time spent computing.
	Duration time.Duration
}

// Observer receives a Report after every successful convolution.
// Implementations must be safe for concurrent use.
type Observer interface {
	Observe(r Report)
}

// ─────────────────────────────────────────────────────────────────────────────
// Logging Observer
// ─────────────────────────────────────────────────────────────────────────────

// LoggingObserver writes one debug entry per convolution.
type LoggingObserver struct {
	logger zerolog.Logger
}

// NewLoggingObserver creates an observer that logs through logger.
func NewLoggingObserver(logger zerolog.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

// Observe implements Observer.
func (o *LoggingObserver) Observe(r Report) {
	o.logger.Debug().
		Str("strategy", r.Strategy.String()).
		Bool("parallel", r.Parallel).
		Int("filter_len", r.FilterLen).
		Int("signal_len", r.SignalLen).
		Int("blocks", r.Blocks).
		Dur("duration", r.Duration).
		Msg("convolution completed")
}

// ─────────────────────────────────────────────────────────────────────────────
// Metrics Observer (Prometheus)
// ─────────────────────────────────────────────────────────────────────────────

var (
	// Registered once globally to avoid duplicate registration errors.
	convolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kdeconv_convolutions_total",
			Help: "Number of completed filter convolutions by strategy and parallelism.",
		},
		[]string{"strategy", "parallel"},
	)
	convolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kdeconv_convolution_duration_seconds",
			Help:    "Wall time of filter convolutions.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		},
		[]string{"strategy"},
	)
	convolutionSamples = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kdeconv_convolution_samples_total",
			Help: "Number of output samples produced by filter convolutions.",
		},
	)
)

// MetricsObserver exports convolution counts, durations and sample volume
// to Prometheus.
type MetricsObserver struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	samples  prometheus.Counter
}

// NewMetricsObserver creates an observer that updates the process-wide
// kdeconv collectors.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		total:    convolutionsTotal,
		duration: convolutionDuration,
		samples:  convolutionSamples,
	}
}

// Observe implements Observer.
func (o *MetricsObserver) Observe(r Report) {
	strategy := r.Strategy.String()
	o.total.WithLabelValues(strategy, strconv.FormatBool(r.Parallel)).Inc()
	o.duration.WithLabelValues(strategy).Observe(r.Duration.Seconds())
	o.samples.Add(float64(r.SignalLen))
}

// ─────────────────────────────────────────────────────────────────────────────
// Composite and No-Op Observers
// ─────────────────────────────────────────────────────────────────────────────

// MultiObserver fans a report out to several observers in order.
type MultiObserver []Observer

// Observe implements Observer.
func (m MultiObserver) Observe(r Report) {
	for _, o := range m {
		if o != nil {
			o.Observe(r)
		}
	}
}

// NoOpObserver discards all reports.
type NoOpObserver struct{}

// Observe implements Observer by doing nothing.
func (NoOpObserver) Observe(Report) {}
