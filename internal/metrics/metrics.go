// Package metrics exposes prometheus collectors for background jobs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics records one duration sample and one outcome per job run.
// A nil *JobMetrics is a no-op.
type JobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	dead     *prometheus.CounterVec
}

// NewJobMetrics registers the job collectors on reg.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	m := &JobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pos",
			Name:      "job_duration_seconds",
			Help:      "Duration of background job runs in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		success: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "job_success_total",
			Help:      "Background job runs that succeeded.",
		}, []string{"job"}),
		failure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "job_failure_total",
			Help:      "Background job attempts that failed.",
		}, []string{"job"}),
		dead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "job_dead_letter_total",
			Help:      "Jobs moved to the dead-letter list after their last attempt.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.duration, m.success, m.failure, m.dead)
	return m
}

func (m *JobMetrics) ObserveDuration(job string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(label(job)).Observe(d.Seconds())
}

func (m *JobMetrics) IncSuccess(job string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(label(job)).Inc()
}

func (m *JobMetrics) IncFailure(job string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(label(job)).Inc()
}

func (m *JobMetrics) IncDeadLetter(job string) {
	if m == nil || m.dead == nil {
		return
	}
	m.dead.WithLabelValues(label(job)).Inc()
}

func label(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
