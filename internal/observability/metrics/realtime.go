package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebSocketConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_websocket_connections_active",
			Help: "Number of active WebSocket connections",
		},
	)

	WebSocketErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_websocket_errors_total",
			Help: "Total number of WebSocket errors by type",
		},
		[]string{"error_type"},
	)

	WebSocketDisconnections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_websocket_disconnections_total",
			Help: "Total number of WebSocket disconnections",
		},
		[]string{"reason"},
	)

	WebSocketBroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_broadcasts_total",
			Help: "Total number of broadcast events by type",
		},
		[]string{"event_type"},
	)

	WebSocketDroppedMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_dropped_messages_total",
			Help: "Total number of dropped messages due to slow clients",
		},
		[]string{"event_type"},
	)
)
