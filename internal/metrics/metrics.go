// Package metrics holds the Prometheus collectors of the sync manager.
//
// All recording methods are safe to call on a nil *Metrics, so callers that
// run without a registry do not need to guard every call site.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "remote_config"

// Poll outcomes used as the "outcome" label of [Metrics.Polls].
const (
	OutcomeApplied        = "applied"
	OutcomeUpToDate       = "up_to_date"
	OutcomeDisabled       = "disabled"
	OutcomeTransportError = "transport_error"
	OutcomeParseError     = "parse_error"
)

// Metrics groups the collectors registered by [NewMetrics].
type Metrics struct {
	// Polls counts finished poll cycles by outcome.
	Polls *prometheus.CounterVec

	// PollDuration observes the wall time of a poll cycle.
	PollDuration prometheus.Histogram

	// Dispatches counts handler invocations by product and action.
	Dispatches *prometheus.CounterVec

	// HandlerErrors counts rows moved to the error state by product.
	HandlerErrors *prometheus.CounterVec

	// AppliedConfigs is the number of rows in the applied table by apply state.
	AppliedConfigs *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which is what tests usually want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "polls_total",
				Help:      "Total number of poll cycles by outcome",
			},
			[]string{"outcome"},
		),
		PollDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "poll_duration_seconds",
				Help:      "Poll cycle latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
		Dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatches_total",
				Help:      "Total number of configuration dispatches by product and action",
			},
			[]string{"product", "action"},
		),
		HandlerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handler_errors_total",
				Help:      "Total number of configurations rejected by their consumer",
			},
			[]string{"product"},
		),
		AppliedConfigs: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "applied_configs",
				Help:      "Number of applied configurations by apply state",
			},
			[]string{"state"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Polls, m.PollDuration, m.Dispatches, m.HandlerErrors, m.AppliedConfigs)
	}
	return m
}

// ObservePoll records one finished poll cycle.
func (m *Metrics) ObservePoll(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.Polls.WithLabelValues(outcome).Inc()
	m.PollDuration.Observe(took.Seconds())
}

// IncDispatch records one handler invocation.
func (m *Metrics) IncDispatch(product, action string) {
	if m == nil {
		return
	}
	m.Dispatches.WithLabelValues(product, action).Inc()
}

// IncHandlerError records one rejected configuration.
func (m *Metrics) IncHandlerError(product string) {
	if m == nil {
		return
	}
	m.HandlerErrors.WithLabelValues(product).Inc()
}

// SetApplied replaces the applied-table gauge with counts keyed by state label.
func (m *Metrics) SetApplied(counts map[string]int) {
	if m == nil {
		return
	}
	m.AppliedConfigs.Reset()
	for state, n := range counts {
		m.AppliedConfigs.WithLabelValues(state).Set(float64(n))
	}
}
