package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signquran_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signquran_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	UsersRegistered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signquran_users_registered_total",
			Help: "Total users registered",
		},
		[]string{"role"}, // "guru" or "murid"
	)

	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signquran_messages_sent_total",
			Help: "Total direct messages sent",
		},
	)

	MessagesRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signquran_messages_read_total",
			Help: "Total messages transitioned to read",
		},
	)

	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signquran_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	RoomsJoined = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signquran_rooms_joined_total",
			Help: "Total room enrollments",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signquran_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	BlockedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signquran_blocked_requests_total",
			Help: "Total blocked requests",
		},
		[]string{"reason"},
	)
)
