package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by result: hit, miss, error, or stale
	// for a fill discarded because the key was invalidated meanwhile.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_cache_lookups_total",
		Help: "Cache-aside lookups by result",
	}, []string{"result"})

	// ReportsCreated counts reports filed by users.
	ReportsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_reports_created_total",
		Help: "Total number of content reports filed",
	})

	// ReportsResolved counts moderation decisions by action and outcome.
	ReportsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_reports_resolved_total",
		Help: "Total number of reports resolved by action and outcome",
	}, []string{"action", "outcome"})

	// ModerationQueueSize is the number of entries in the last computed queue.
	ModerationQueueSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_moderation_queue_entries",
		Help: "Number of posts with pending reports in the last computed moderation queue",
	})

	// EventsPublished counts moderation events by transport and result.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_events_published_total",
		Help: "Moderation events published by transport and result",
	}, []string{"transport", "result"})

	// WebSocketConnections is the gauge of active admin WebSocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)
