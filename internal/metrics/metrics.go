// Package metrics exposes Prometheus instruments for the summarization pipeline.
//
// All Record* methods are safe on a nil *Collector so callers that run without
// metrics (CLI one-shots, most tests) can pass nil.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stage names used as the "stage" label.
const (
	StageStage      = "stage"
	StageTranscribe = "transcribe"
	StageSummarize  = "summarize"
)

// LLM call outcomes used as the "outcome" label.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeFallback = "fallback"
)

// Collector holds the pipeline instruments.
type Collector struct {
	jobsCreated   prometheus.Counter
	jobsCompleted prometheus.Counter
	jobsFailed    prometheus.Counter
	jobsInFlight  prometheus.Gauge

	stageDuration *prometheus.HistogramVec
	llmCalls      *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewCollector registers the pipeline metrics on prometheus.DefaultRegisterer.
func NewCollector() *Collector {
	c := &Collector{
		jobsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "digest_jobs_created_total",
			Help: "Total number of summarization jobs created",
		}),
		jobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "digest_jobs_completed_total",
			Help: "Total number of jobs that reached COMPLETED",
		}),
		jobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "digest_jobs_failed_total",
			Help: "Total number of jobs that reached FAILED",
		}),
		jobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "digest_jobs_in_flight",
			Help: "Current number of running pipelines",
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "digest_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"stage", "result"}),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digest_llm_calls_total",
			Help: "Language-model calls by outcome",
		}, []string{"outcome"}),
		gatherer: prometheus.DefaultGatherer,
	}

	prometheus.MustRegister(c.jobsCreated)
	prometheus.MustRegister(c.jobsCompleted)
	prometheus.MustRegister(c.jobsFailed)
	prometheus.MustRegister(c.jobsInFlight)
	prometheus.MustRegister(c.stageDuration)
	prometheus.MustRegister(c.llmCalls)

	if g, ok := prometheus.DefaultRegisterer.(prometheus.Gatherer); ok {
		c.gatherer = g
	}

	return c
}

// RecordCreated counts a newly created job.
func (c *Collector) RecordCreated() {
	if c == nil {
		return
	}
	c.jobsCreated.Inc()
}

// RecordStarted marks a pipeline as running.
func (c *Collector) RecordStarted() {
	if c == nil {
		return
	}
	c.jobsInFlight.Inc()
}

// RecordCompleted marks a running pipeline as finished successfully.
func (c *Collector) RecordCompleted() {
	if c == nil {
		return
	}
	c.jobsInFlight.Dec()
	c.jobsCompleted.Inc()
}

// RecordFailed marks a running pipeline as failed.
func (c *Collector) RecordFailed() {
	if c == nil {
		return
	}
	c.jobsInFlight.Dec()
	c.jobsFailed.Inc()
}

// ObserveStage records how long one stage took.
func (c *Collector) ObserveStage(stage string, d time.Duration, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.stageDuration.WithLabelValues(stage, result).Observe(d.Seconds())
}

// RecordLLMCall counts one language-model call.
func (c *Collector) RecordLLMCall(outcome string) {
	if c == nil {
		return
	}
	c.llmCalls.WithLabelValues(outcome).Inc()
}

// Handler serves the registry the collector was registered on.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
