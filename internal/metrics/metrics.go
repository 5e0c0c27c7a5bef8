// Package metrics exposes pipeline and scheduler counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/normalizer"
)

const namespace = "tally"

// Metrics implements pipeline.Recorder and scheduler.Hooks. A nil *Metrics
// is a valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	pipelineRuns     *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
	blocksCreated    prometheus.Counter
	hoursFilled      prometheus.Counter
	eventsSkipped    *prometheus.CounterVec
	jobRuns          *prometheus.CounterVec
	jobDuration      *prometheus.HistogramVec
	jobSkipped       *prometheus.CounterVec
	lastWeekHours    prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Week processing runs by outcome.",
		}, []string{"status"}),
		pipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Histogram of week processing durations.",
			Buckets:   prometheus.DefBuckets,
		}),
		blocksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "time_blocks_created_total",
			Help:      "Time blocks written by successful runs.",
		}),
		hoursFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hours_filled_total",
			Help:      "Hours added by auto-fill.",
		}),
		eventsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_skipped_total",
			Help:      "Raw events dropped during normalization by reason.",
		}, []string{"reason"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduler job runs by job and outcome.",
		}, []string{"job", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Histogram of scheduler job durations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		jobSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_skipped_total",
			Help:      "Scheduler triggers skipped because the job was still running.",
		}, []string{"job"}),
		lastWeekHours: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_week_total_hours",
			Help:      "Total hours of the most recently processed week.",
		}),
	}

	m.registry.MustRegister(
		m.pipelineRuns,
		m.pipelineDuration,
		m.blocksCreated,
		m.hoursFilled,
		m.eventsSkipped,
		m.jobRuns,
		m.jobDuration,
		m.jobSkipped,
		m.lastWeekHours,
		collectors.NewGoCollector(),
	)
	return m
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func (m *Metrics) RecordRun(result models.ProcessingResult, stats normalizer.Stats, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(status(result.Success)).Inc()
	m.pipelineDuration.Observe(elapsed.Seconds())
	m.eventsSkipped.WithLabelValues("malformed_timestamp").Add(float64(stats.MalformedTimestamp))
	m.eventsSkipped.WithLabelValues("non_positive_duration").Add(float64(stats.NonPositiveDuration))
	m.eventsSkipped.WithLabelValues("oversized_duration").Add(float64(stats.OversizedDuration))
	if !result.Success {
		return
	}
	m.blocksCreated.Add(float64(result.TimeBlocksCreated))
	m.hoursFilled.Add(result.HoursFilled)
	m.lastWeekHours.Set(result.TotalHours)
}

func (m *Metrics) JobFinished(job string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, status(success)).Inc()
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

func (m *Metrics) JobSkipped(job string) {
	if m == nil {
		return
	}
	m.jobSkipped.WithLabelValues(job).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the private registry only, not the global default one.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
