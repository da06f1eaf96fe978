package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langbridge_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "langbridge_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "langbridge_messages_sent_total",
			Help: "Total messages persisted",
		},
	)

	MessagesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "langbridge_messages_deleted_total",
			Help: "Total messages deleted by their sender",
		},
	)

	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langbridge_deliveries_total",
			Help: "Live delivery attempts by outcome",
		},
		[]string{"outcome"}, // "pushed", "offline" or "failed"
	)

	Translations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langbridge_translations_total",
			Help: "Translation gate decisions by outcome",
		},
		[]string{"outcome"}, // "skipped", "translated", "error", "timeout"
	)

	TranslationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "langbridge_translation_latency_seconds",
			Help:    "Translation oracle latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
		},
	)

	// Realtime metrics
	ConnectionsOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "langbridge_connections_online",
			Help: "Currently registered live connections",
		},
	)

	PresenceBroadcasts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "langbridge_presence_broadcasts_total",
			Help: "Presence snapshots broadcast to all connections",
		},
	)

	PushFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langbridge_push_failures_total",
			Help: "Failed pushes to live connections",
		},
		[]string{"event"},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langbridge_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	BlockedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langbridge_blocked_requests_total",
			Help: "Total blocked requests",
		},
		[]string{"reason"},
	)

	// Infrastructure metrics
	PostgresLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "langbridge_postgres_latency_seconds",
			Help:    "PostgreSQL query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1},
		},
	)
)
