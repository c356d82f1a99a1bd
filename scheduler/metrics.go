package scheduler

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the scheduler's Prometheus instrumentation. NewMetrics
// always returns a usable value. Config.Metrics may be left nil, in which
// case the scheduler records no metrics.
type Metrics struct {
	TargetsComputed *prometheus.CounterVec
	TargetsPending  prometheus.Gauge
}

// NewMetrics constructs scheduler metrics and registers them with reg. If
// reg is nil, the metrics are created but left unregistered (useful for
// tests that don't want a global registry side effect).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TargetsComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "supersrg_scheduler_targets_computed_total",
			Help: "Number of mapping targets successfully computed, by target string.",
		}, []string{"target"}),
		TargetsPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "supersrg_scheduler_targets_pending",
			Help: "Number of targets currently queued or suspended waiting on a dependency.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.TargetsComputed, m.TargetsPending)
	}
	return m
}
