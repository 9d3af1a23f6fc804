package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "taxihub", Name: "orders_created_total", Help: "Total orders created"})
	OrdersCompleted = promauto.NewCounter(prometheus.CounterOpts{Namespace: "taxihub", Name: "orders_completed_total", Help: "Total orders completed"})
	OrdersCancelled = promauto.NewCounter(prometheus.CounterOpts{Namespace: "taxihub", Name: "orders_cancelled_total", Help: "Total orders cancelled"})

	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "taxihub", Name: "claims_total", Help: "Claim attempts by outcome"},
		[]string{"result"},
	)

	WatchSubscribers = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "taxihub", Name: "watch_subscribers", Help: "Live snapshot subscriptions"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "taxihub", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "taxihub",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
