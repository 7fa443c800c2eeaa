package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Reconciliation outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
)

// ReconciliationMetrics tracks verification engine activity.
type ReconciliationMetrics struct {
	transitions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	dispensed   *prometheus.CounterVec
}

// NewReconciliationMetrics registers the reconciliation metrics on the provided registerer.
func NewReconciliationMetrics(reg prometheus.Registerer) *ReconciliationMetrics {
	if reg == nil {
		return &ReconciliationMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "reading_transitions_total",
		Help:      "Meter reading state transition attempts by operation and outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "reading_transition_duration_seconds",
		Help:      "Duration of meter reading state transitions in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	dispensed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "inventory_dispensed_volume_total",
		Help:      "Volume deducted from tanks through the inventory ledger.",
	}, []string{"tank_id"})
	reg.MustRegister(transitions, duration, dispensed)
	return &ReconciliationMetrics{
		transitions: transitions,
		duration:    duration,
		dispensed:   dispensed,
	}
}

// ObserveTransition records one verify or dispute attempt.
func (m *ReconciliationMetrics) ObserveTransition(operation, outcome string, duration time.Duration) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// AddDispensed adds volume applied to a tank.
func (m *ReconciliationMetrics) AddDispensed(tankID string, volume float64) {
	if m == nil || m.dispensed == nil || volume <= 0 {
		return
	}
	m.dispensed.WithLabelValues(normalizeLabel(tankID)).Add(volume)
}
