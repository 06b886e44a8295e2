package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

var (
	// Checkouts counts recorded purchases by kind.
	Checkouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "orders_total",
			Help:      "Total number of recorded purchases",
		},
		[]string{"kind"},
	)

	// Revenue sums order totals by kind.
	Revenue = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "revenue_total",
			Help:      "Sum of recorded order totals",
		},
		[]string{"kind"},
	)

	// CouponRejections counts coupons that failed validation by reason.
	CouponRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "coupon",
			Name:      "rejections_total",
			Help:      "Total number of rejected coupon applications",
		},
		[]string{"reason"},
	)

	// PersistFailures counts collection saves that did not reach the store.
	PersistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "persist_failures_total",
			Help:      "Total number of failed collection writes",
		},
		[]string{"collection"},
	)
)

var (
	// HTTPRequests counts API requests by route and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration observes API latency by route.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
