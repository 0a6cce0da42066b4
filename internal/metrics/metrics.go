/*
PURPOSE:
  Collects run metrics (request attempts, question outcomes, request latency)
  in a private Prometheus registry.

REQUIREMENTS:
  User-specified:
  - Batch runs should be observable after the fact.

  Implementation-discovered:
  - The tester is a short-lived CLI, so metrics are exported once at the end
    in the node_exporter textfile format instead of being scraped.
  - Tests and callers without metrics pass a nil *Recorder.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (executor, runner), internal/cli (export)

ERROR HANDLING:
  - WriteTextfile returns the underlying write error.

IMPLEMENTATION RULES:
  - All methods are nil-safe.
  - Use a dedicated registry, never the global default one.

USAGE:
  rec := metrics.New()
  rec.ObserveAttempt(true, time.Since(start))
  rec.WriteTextfile("ai_tester.prom")

RELATED FILES:
  - internal/engine/client.go
  - internal/engine/runner.go
*/

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Question statuses used as the status label.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Recorder holds the run metrics.
type Recorder struct {
	registry  *prometheus.Registry
	attempts  *prometheus.CounterVec
	questions *prometheus.CounterVec
	duration  prometheus.Histogram
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_tester_request_attempts_total",
			Help: "HTTP request attempts against the conversation endpoint.",
		}, []string{"outcome"}),
		questions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_tester_questions_total",
			Help: "Questions handled by the resumable runner.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ai_tester_request_duration_seconds",
			Help:    "Duration of HTTP request attempts in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
	}
	r.registry.MustRegister(r.attempts, r.questions, r.duration)
	return r
}

// ObserveAttempt records one request attempt.
func (r *Recorder) ObserveAttempt(ok bool, d time.Duration) {
	if r == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	r.attempts.WithLabelValues(outcome).Inc()
	r.duration.Observe(d.Seconds())
}

// ObserveQuestion records the final status of one question.
func (r *Recorder) ObserveQuestion(status string) {
	if r == nil {
		return
	}
	r.questions.WithLabelValues(status).Inc()
}

// Registry exposes the underlying registry (used by tests and exporters).
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

// Attempts returns the counter for the given outcome label. A nil Recorder
// returns an unregistered counter reading zero.
func (r *Recorder) Attempts(outcome string) prometheus.Counter {
	if r == nil {
		return detached()
	}
	return r.attempts.WithLabelValues(outcome)
}

// Questions returns the counter for the given status label. A nil Recorder
// returns an unregistered counter reading zero.
func (r *Recorder) Questions(status string) prometheus.Counter {
	if r == nil {
		return detached()
	}
	return r.questions.WithLabelValues(status)
}

func detached() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Name: "ai_tester_detached_total"})
}
