package pipeline

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts job outcomes for the metrics endpoint.
type Metrics struct {
	JobsStarted   prometheus.Counter
	JobsCompleted prometheus.Counter
	JobsFailed    *prometheus.CounterVec
	JobDuration   prometheus.Histogram
}

// NewMetrics creates the job metrics and registers them on reg. Tests
// pass an isolated registry; the server passes the default one.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		JobsStarted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tunegrab_jobs_started_total",
				Help: "Total number of jobs accepted",
			},
		),
		JobsCompleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tunegrab_jobs_completed_total",
				Help: "Total number of jobs that reached the completed state",
			},
		),
		JobsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunegrab_jobs_failed_total",
				Help: "Total number of failed jobs by terminal cause",
			},
			[]string{"cause"},
		),
		JobDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tunegrab_job_duration_seconds",
				Help:    "End-to-end job duration",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
			},
		),
	}

	reg.MustRegister(
		m.JobsStarted,
		m.JobsCompleted,
		m.JobsFailed,
		m.JobDuration,
	)

	return m
}
