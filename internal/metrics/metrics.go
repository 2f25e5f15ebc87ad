package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Scheduling outcomes recorded for every validation attempt.
const (
	OutcomeAccepted      = "accepted"
	OutcomeInvalid       = "invalid"
	OutcomeStaffConflict = "staff_conflict"
	OutcomeRoomConflict  = "room_conflict"
	OutcomeCheckFailed   = "check_failed"
)

// SchedulingMetrics exposes counters/histograms for the scheduling workflow.
type SchedulingMetrics struct {
	validationsTotal   *prometheus.CounterVec
	conflictCheckTimer prometheus.Histogram
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		validationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hms",
			Subsystem: "scheduling",
			Name:      "validations_total",
			Help:      "Appointment validation attempts by outcome",
		}, []string{"outcome"}),
		conflictCheckTimer: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hms",
			Subsystem: "scheduling",
			Name:      "conflict_check_seconds",
			Help:      "Latency of staff and room conflict checks",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.validationsTotal, m.conflictCheckTimer)
	return m
}

func (m *SchedulingMetrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.validationsTotal.WithLabelValues(outcome).Inc()
}

func (m *SchedulingMetrics) ObserveConflictCheck(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.conflictCheckTimer.Observe(elapsed.Seconds())
}
