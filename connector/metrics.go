package connector

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is an Observer that exports attempt and outcome counts to
// prometheus.
type Metrics struct {
	attempts *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates connector metrics under the given namespace. They must
// be registered with Register before they are scraped.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Help:      "Failed bridge connection attempts",
				Name:      "failed_attempts_total",
				Namespace: namespace,
			},
			[]string{"reason"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Help:      "Finished bridge connection sequences",
				Name:      "connections_total",
				Namespace: namespace,
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Help:      "Time from the first attempt to an established connection",
				Name:      "connect_duration_seconds",
				Namespace: namespace,
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
	}
}

// Collectors returns the failed attempt counter, the outcome counter and the
// connect duration histogram, in that order.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.attempts, m.outcomes, m.duration}
}

// Register adds all collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) AttemptFailed(_ context.Context, err *AttemptError) {
	reason := "error"
	if err.Timeout() {
		reason = "timeout"
	}
	m.attempts.WithLabelValues(reason).Inc()
}

func (m *Metrics) Connected(_ context.Context, _ string, _ int, elapsed time.Duration) {
	m.outcomes.WithLabelValues("connected").Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) Exhausted(context.Context, *ExhaustedError) {
	m.outcomes.WithLabelValues("exhausted").Inc()
}
