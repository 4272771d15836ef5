package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hris_attendance"

// Metrics groups the attendance collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	transitions       *prometheus.CounterVec
	autoLogoutRuns    *prometheus.CounterVec
	autoLogoutRecords *prometheus.CounterVec
	autoLogoutRetries prometheus.Counter
	autoLogoutSeconds prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Attendance state transitions by action and result.",
		}, []string{"action", "result"}),
		autoLogoutRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_logout_runs_total",
			Help:      "Auto-logout reconciliation runs by result status.",
		}, []string{"status"}),
		autoLogoutRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_logout_records_total",
			Help:      "Records handled by the auto-logout job by outcome.",
		}, []string{"outcome"}),
		autoLogoutRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_logout_retries_total",
			Help:      "Extra write attempts made by the auto-logout job.",
		}),
		autoLogoutSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "auto_logout_duration_seconds",
			Help:      "Wall time of auto-logout runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.transitions,
			m.autoLogoutRuns,
			m.autoLogoutRecords,
			m.autoLogoutRetries,
			m.autoLogoutSeconds,
		)
	}
	return m
}

func (m *Metrics) ObserveTransition(action string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.transitions.WithLabelValues(action, result).Inc()
}

func (m *Metrics) ObserveAutoLogoutRecord(outcome string, attempts int) {
	if m == nil {
		return
	}
	m.autoLogoutRecords.WithLabelValues(outcome).Inc()
	if attempts > 1 {
		m.autoLogoutRetries.Add(float64(attempts - 1))
	}
}

func (m *Metrics) ObserveAutoLogoutRun(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.autoLogoutRuns.WithLabelValues(status).Inc()
	m.autoLogoutSeconds.Observe(elapsed.Seconds())
}
