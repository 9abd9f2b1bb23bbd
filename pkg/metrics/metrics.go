// Package metrics defines the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersTotal counts order attempts by outcome (placed/insufficient/ignored).
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campuseats_orders_total",
			Help: "Order attempts by outcome",
		},
		[]string{"outcome"},
	)

	// AdjustmentsTotal counts quantity adjustments by direction and outcome.
	AdjustmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campuseats_adjustments_total",
			Help: "Quantity adjustments by direction and outcome",
		},
		[]string{"direction", "outcome"},
	)

	// ScreenTransitions counts entries into each screen.
	ScreenTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campuseats_screen_transitions_total",
			Help: "Screen transitions by target screen",
		},
		[]string{"screen"},
	)

	// CreditsAvailable tracks the current credit balance.
	CreditsAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campuseats_credits_available",
			Help: "Current credit balance of the session",
		},
	)

	// WebSocketClients tracks connected push clients.
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campuseats_websocket_clients",
			Help: "Connected websocket clients",
		},
	)

	// HTTPRequestDuration tracks handler latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campuseats_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)
