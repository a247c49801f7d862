// Package metrics exposes process counters for the detection pipeline.
// Fail-open degradation is security relevant, so it gets its own counter
// operators can alert on.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DetectorFailOpen counts detector errors that degraded to a "no PII"
	// outcome instead of blocking the pipeline
	DetectorFailOpen = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pii_detector_fail_open_total",
		Help: "Detector failures treated as no-PII (fail-open degradations).",
	})

	// PagesProcessed counts pages run through the pipeline, labeled by outcome
	PagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pii_pages_processed_total",
		Help: "Pages processed by the pipeline, by outcome.",
	}, []string{"outcome"})

	// PagesArchived counts successful archive remediations
	PagesArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pii_pages_archived_total",
		Help: "Pages archived after PII detection.",
	})

	// NotificationsSent counts author notifications delivered
	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pii_notifications_sent_total",
		Help: "Author notifications delivered for detected PII.",
	})

	// JobsDeduplicated counts webhook deliveries collapsed by the dispatcher
	JobsDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pii_jobs_deduplicated_total",
		Help: "Duplicate webhook deliveries collapsed by the dispatcher.",
	})

	// QueueDepth tracks jobs waiting in the in-process dispatcher
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pii_dispatch_queue_depth",
		Help: "Jobs currently queued in the in-process dispatcher.",
	})
)

// Outcome label values for PagesProcessed
const (
	OutcomeClean    = "clean"
	OutcomeArchived = "archived"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// Handler returns the HTTP handler serving the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
