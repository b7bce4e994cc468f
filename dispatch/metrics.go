package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure reasons reported for lines that did not reach a handler.
const (
	FailUnknown       = "unknown"
	FailNotRegistered = "not_registered"
	FailRegistered    = "already_registered"
	FailPrivileges    = "no_privileges"
	FailArgs          = "need_more_params"
)

// Metrics are the dispatcher's prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	Invocations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Failures    *prometheus.CounterVec
	Dropped     *prometheus.CounterVec
}

// NewMetrics registers the dispatcher collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uqircd",
			Subsystem: "dispatch",
			Name:      "invocations_total",
			Help:      "Handler invocations by command.",
		}, []string{"command"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "uqircd",
			Subsystem: "dispatch",
			Name:      "handler_duration_seconds",
			Help:      "Time spent inside handlers by command.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}, []string{"command"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uqircd",
			Subsystem: "dispatch",
			Name:      "failures_total",
			Help:      "Lines that did not reach a handler by reason.",
		}, []string{"reason"}),
		Dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uqircd",
			Subsystem: "dispatch",
			Name:      "rate_limited_total",
			Help:      "Invocations dropped by the rate limiter by command.",
		}, []string{"command"}),
	}
}

func (m *Metrics) invoked(command string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Invocations.WithLabelValues(command).Inc()
	m.Duration.WithLabelValues(command).Observe(elapsed.Seconds())
}

func (m *Metrics) failed(reason string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(reason).Inc()
}

func (m *Metrics) dropped(command string) {
	if m == nil {
		return
	}
	m.Dropped.WithLabelValues(command).Inc()
}
