package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PresenceOnlineUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "presence_online_users",
			Help: "Number of users with a presence entry on this instance",
		},
	)

	PresenceEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_events_total",
			Help: "Total number of presence events by type and result",
		},
		[]string{"event", "result"},
	)

	PresenceExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "presence_expired_total",
			Help: "Total number of presence entries removed by lease expiry",
		},
	)

	PresenceStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_store_errors_total",
			Help: "Total number of presence store errors by backend and operation",
		},
		[]string{"backend", "operation"},
	)
)
