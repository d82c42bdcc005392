// Package observability provides a Prometheus-backed metrics extension.
// Register it on an engine to track enqueue rates, completion and
// failure counts, and execution latency without touching handler code.
package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xraph/spool/ext"
	"github.com/xraph/spool/job"
)

// Compile-time interface checks.
var (
	_ ext.Extension    = (*MetricsExtension)(nil)
	_ ext.JobEnqueued  = (*MetricsExtension)(nil)
	_ ext.JobStarted   = (*MetricsExtension)(nil)
	_ ext.JobCompleted = (*MetricsExtension)(nil)
	_ ext.JobFailed    = (*MetricsExtension)(nil)
)

// MetricsExtension records lifecycle metrics on a Prometheus registry.
type MetricsExtension struct {
	jobsEnqueued prometheus.Counter
	jobsStarted  prometheus.Counter
	jobsDone     *prometheus.CounterVec
	jobDuration  prometheus.Histogram
}

// NewMetricsExtension creates a MetricsExtension registered on the
// default Prometheus registerer.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWith(prometheus.DefaultRegisterer)
}

// NewMetricsExtensionWith creates a MetricsExtension registered on reg.
// Pass prometheus.NewRegistry() in tests to avoid global state.
func NewMetricsExtensionWith(reg prometheus.Registerer) *MetricsExtension {
	factory := promauto.With(reg)
	return &MetricsExtension{
		jobsEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "spool",
			Name:      "jobs_enqueued_total",
			Help:      "Jobs accepted into the queue.",
		}),
		jobsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "spool",
			Name:      "jobs_started_total",
			Help:      "Jobs picked up by a worker.",
		}),
		jobsDone: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spool",
			Name:      "jobs_done_total",
			Help:      "Jobs finished, by status.",
		}, []string{"status"}),
		jobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "spool",
			Name:      "job_duration_seconds",
			Help:      "Handler execution time for successful jobs.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnJobEnqueued implements ext.JobEnqueued.
func (m *MetricsExtension) OnJobEnqueued(_ context.Context, _ *job.Job) error {
	m.jobsEnqueued.Inc()
	return nil
}

// OnJobStarted implements ext.JobStarted.
func (m *MetricsExtension) OnJobStarted(_ context.Context, _ *job.Job) error {
	m.jobsStarted.Inc()
	return nil
}

// OnJobCompleted implements ext.JobCompleted.
func (m *MetricsExtension) OnJobCompleted(_ context.Context, _ *job.Job, elapsed time.Duration) error {
	m.jobsDone.WithLabelValues("ok").Inc()
	m.jobDuration.Observe(elapsed.Seconds())
	return nil
}

// OnJobFailed implements ext.JobFailed.
func (m *MetricsExtension) OnJobFailed(_ context.Context, _ *job.Job, _ error) error {
	m.jobsDone.WithLabelValues("error").Inc()
	return nil
}
