package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocrlens_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ocrlens_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	displayTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocrlens_display_toggles_total",
			Help: "Display flag changes by flag and origin (http or websocket)",
		},
		[]string{"flag", "source"},
	)

	clipboardCopiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocrlens_clipboard_copies_total",
			Help: "Clipboard copies by kind and result",
		},
		[]string{"kind", "result"},
	)

	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ocrlens_websocket_active_connections",
			Help: "Number of active viewer websocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocrlens_websocket_messages_total",
			Help: "Total number of websocket messages",
		},
		[]string{"direction"}, // "received" or "sent"
	)
)

func recordCopy(kind string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	clipboardCopiesTotal.WithLabelValues(kind, result).Inc()
}
