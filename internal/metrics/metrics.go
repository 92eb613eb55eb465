// Package metrics exposes Prometheus collectors for store synchronization.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RealtimeEventsReceived counts realtime events delivered to a store.
	RealtimeEventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bellsync_realtime_events_received_total",
			Help: "Total number of realtime events reconciled by notification stores",
		},
		[]string{"kind"},
	)

	// RealtimeMessagesRejected counts wire messages that could not be decoded.
	RealtimeMessagesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bellsync_realtime_messages_rejected_total",
			Help: "Total number of realtime messages with an unknown name or malformed payload",
		},
		[]string{"name"},
	)

	// StoreRefreshes counts store refreshes by trigger and result.
	StoreRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bellsync_store_refreshes_total",
			Help: "Total number of notification store refreshes",
		},
		[]string{"trigger", "result"},
	)

	// StoreActionFailures counts failed store actions.
	StoreActionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bellsync_store_action_failures_total",
			Help: "Total number of store actions that failed remotely or locally",
		},
		[]string{"action"},
	)

	// LiveStores tracks stores registered in directors.
	LiveStores = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bellsync_live_stores",
			Help: "Number of notification stores currently registered",
		},
	)

	// RealtimeConnects counts realtime connection attempts by result.
	RealtimeConnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bellsync_realtime_connects_total",
			Help: "Total number of realtime connection attempts",
		},
		[]string{"result"},
	)

	// RetryAttempts counts failed attempts of background retry loops.
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bellsync_retry_failed_attempts_total",
			Help: "Total number of failed attempts in background retry loops",
		},
		[]string{"task"},
	)

	// APIRequests counts API requests by method and status class.
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bellsync_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)

	// BreakerState reports the API circuit breaker state (0=closed, 1=half-open, 2=open).
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bellsync_circuit_breaker_state",
			Help: "Current state of the API circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// Result label values.
const (
	ResultOK        = "ok"
	ResultError     = "error"
	ResultDiscarded = "discarded"
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
