package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_cart_mutations_total",
		Help: "Total number of applied cart mutations",
	}, []string{"action"})

	CartMutationsIgnoredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_cart_mutations_ignored_total",
		Help: "Total number of cart commands rejected or ignored by validation",
	}, []string{"command"})

	CheckoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_checkouts_total",
		Help: "Total number of completed checkouts",
	})

	CheckoutRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_checkout_rejected_total",
		Help: "Total number of checkout attempts that did not complete",
	}, []string{"reason"})

	RevenueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_revenue_total",
		Help: "Cumulative revenue of completed checkouts",
	})

	SideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_side_effect_failures_total",
		Help: "Total number of failed cache, journal and publish side effects",
	}, []string{"effect"})

	UpsellRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_upsell_requests_total",
		Help: "Total number of upsell advisor calls by outcome",
	}, []string{"outcome"})

	UpsellLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_upsell_latency_seconds",
		Help:    "Latency of upsell advisor calls",
		Buckets: prometheus.DefBuckets,
	})

	UpsellStaleDiscardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_upsell_stale_discarded_total",
		Help: "Total number of upsell suggestions discarded because the cart changed",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
