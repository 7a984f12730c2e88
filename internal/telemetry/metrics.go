package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BackendRequests counts hosted-backend calls by operation and result.
	BackendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_backend_requests_total",
		Help: "Total number of hosted backend calls by operation and result",
	}, []string{"operation", "result"})

	// BackendLatency records hosted-backend call latency by operation.
	BackendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shop_backend_latency_seconds",
		Help:    "Hosted backend call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// ListingLoadErrors counts listing fetches whose error was only logged.
	ListingLoadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_listing_load_errors_total",
		Help: "Listing loads that failed and left the previous listing in place",
	})

	// StaleListingLoads counts responses dropped because a newer load was issued.
	StaleListingLoads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_listing_stale_loads_total",
		Help: "Listing responses discarded because a newer filter was requested",
	})

	// LiveConnections is the gauge of open live sockets.
	LiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shop_live_connections",
		Help: "Number of open live WebSocket connections",
	})

	// SessionEvents counts session notifications by event.
	SessionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_session_events_total",
		Help: "Session notifications published by event",
	}, []string{"event"})
)

// MetricsHandler serves the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
