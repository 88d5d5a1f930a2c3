package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics records runs of the housekeeping jobs.
type JobMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
}

// NewJobMetrics registers the job metrics on reg. A nil registerer yields a
// no-op recorder.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Duration of housekeeping jobs in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_runs_total",
		Help:      "Housekeeping job runs by outcome.",
	}, []string{"job", "outcome"})
	reg.MustRegister(duration, runs)
	return &JobMetrics{duration: duration, runs: runs}
}

// ObserveRun records one run of job. failed selects the outcome label.
func (m *JobMetrics) ObserveRun(job string, took time.Duration, failed bool) {
	if m == nil || m.duration == nil {
		return
	}
	name := normalizeLabel(job)
	m.duration.WithLabelValues(name).Observe(took.Seconds())
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	m.runs.WithLabelValues(name, outcome).Inc()
}
