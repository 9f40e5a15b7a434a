// Package metrics exposes Prometheus instrumentation for the sync
// endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	WebhookRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobsync_webhook_requests_total",
			Help: "Total webhook requests by terminal outcome.",
		},
		[]string{"outcome"},
	)
	ListingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobsync_listings_created_total",
			Help: "Total listings created by reconciliation.",
		},
	)
	ListingsUpdated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobsync_listings_updated_total",
			Help: "Total listings updated by reconciliation.",
		},
	)
	ListingsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobsync_listings_skipped_total",
			Help: "Total invalid or failed listings skipped by reconciliation.",
		},
	)
	ListingsRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobsync_listings_removed_total",
			Help: "Total stale listings hard-deleted by reconciliation.",
		},
	)
	ReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobsync_reconcile_duration_seconds",
			Help:    "Duration of one reconciliation batch in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Outcome labels for WebhookRequests.
const (
	OutcomeSuccess      = "success"
	OutcomeDisabled     = "disabled"
	OutcomeBadMethod    = "bad_method"
	OutcomeRateLimited  = "rate_limited"
	OutcomeUnauthorized = "unauthorized"
	OutcomeBadPayload   = "bad_payload"
	OutcomeBatchError   = "batch_error"
)

// Handler registers all collectors and returns the scrape endpoint.
func Handler() http.Handler {
	prometheus.MustRegister(
		WebhookRequests,
		ListingsCreated,
		ListingsUpdated,
		ListingsSkipped,
		ListingsRemoved,
		ReconcileDuration,
	)
	return promhttp.Handler()
}
