// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shop_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	VoicersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_voicers_created_total",
		Help: "Committed sales.",
	})

	SalesAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_sales_amount_total",
		Help: "Billed amount of committed sales.",
	})

	StockRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_sale_stock_rejections_total",
		Help: "Sales rejected for insufficient stock.",
	})

	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_event_publish_failures_total",
		Help: "Events that could not be published, by topic.",
	}, []string{"topic"})
)
