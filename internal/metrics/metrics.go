package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipmarket_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clipmarket_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Webhook / settlement metrics
var (
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipmarket_webhook_events_total",
			Help: "Webhook deliveries by event type and outcome",
		},
		[]string{"type", "outcome"},
	)

	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipmarket_settlements_total",
			Help: "Settlement applications by event type and result",
		},
		[]string{"type", "result"},
	)

	PurchasesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clipmarket_purchases_completed_total",
			Help: "Purchases recorded by settlement",
		},
	)
)

// ObserveSettlement records the result of one settlement application.
func ObserveSettlement(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	SettlementsTotal.WithLabelValues(eventType, result).Inc()
}
