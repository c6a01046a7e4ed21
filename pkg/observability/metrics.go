// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the trichat relay.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM call latencies,
// ranging from 100ms to the 60s call timeout and beyond.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts HTTP requests by method, route pattern and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trichat_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trichat_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method", "route"},
	)

	// InFlightRequests tracks requests currently being served.
	InFlightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trichat_requests_in_flight",
			Help: "Requests in flight",
		},
	)

	// SlotCallsTotal counts slot calls by slot, resolved provider type and
	// outcome ("ok" or a failure kind).
	SlotCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trichat_slot_calls_total",
			Help: "Slot calls",
		},
		[]string{"slot", "provider", "outcome"},
	)

	// SlotLatency records backend call latency in seconds for slots that
	// reached the network.
	SlotLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trichat_slot_latency_seconds",
			Help:    "Slot call latency",
			Buckets: LLMBuckets,
		},
		[]string{"slot", "provider"},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trichat_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
		[]string{"scope"},
	)

	// ConfigUpdatesTotal counts slot configuration replacements and reloads
	// by store type and result.
	ConfigUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trichat_config_updates_total",
			Help: "Slot configuration updates",
		},
		[]string{"store", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		InFlightRequests,
		SlotCallsTotal,
		SlotLatency,
		RateLimitRejectedTotal,
		ConfigUpdatesTotal,
	)
}
