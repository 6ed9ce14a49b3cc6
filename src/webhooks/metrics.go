package webhooks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeProcessed = "processed"
	outcomeIgnored   = "ignored"
	outcomeDuplicate = "duplicate"
	outcomeRejected  = "rejected"
	outcomeRetry     = "retry"
)

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stripe_webhook_events_total",
			Help: "Stripe webhook events by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	eventDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stripe_webhook_duration_seconds",
			Help:    "Time spent reconciling a Stripe webhook event",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)
)
