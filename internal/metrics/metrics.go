// Package metrics exposes Prometheus collectors for the analytics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReportDuration observes end-to-end creator report builds.
	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_report_duration_seconds",
			Help:    "Duration of creator analytics report builds in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"}, // "ok", "empty", "error"
	)

	// LedgerFailures counts payment ledger calls that degraded revenue to null.
	LedgerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_ledger_failures_total",
			Help: "Total number of payment ledger failures absorbed by the revenue section",
		},
		[]string{"reason"}, // "error", "circuit_open", "timeout", "panic"
	)

	// FetchTruncations counts attendance fetches that hit the row cap.
	FetchTruncations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_fetch_truncations_total",
			Help: "Total number of attendance fetches truncated at the configured cap",
		},
		[]string{"query"},
	)

	// ExportJobs counts processed report export jobs.
	ExportJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_export_jobs_total",
			Help: "Total number of report export jobs by result",
		},
		[]string{"result"}, // "ready", "retried", "failed"
	)
)
