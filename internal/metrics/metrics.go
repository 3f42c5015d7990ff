package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "schedly"

// Request outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeHTTPError    = "http_error"
	OutcomeNetworkError = "network_error"
	OutcomeCanceled     = "canceled"
)

var (
	once sync.Once

	gatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "API requests by resource, operation and outcome.",
		},
		[]string{"resource", "op", "outcome"},
	)

	gatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "API request latency by resource and operation.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"resource", "op"},
	)

	mirrorFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mirror_fallbacks_total",
			Help:      "Calls answered from the local cache mirror after a network failure.",
		},
		[]string{"resource", "op"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(gatewayRequests, gatewayDuration, mirrorFallbacks)
	})
}

// ObserveRequest records one API call.
func ObserveRequest(resource, op, outcome string, elapsed time.Duration) {
	gatewayRequests.WithLabelValues(resource, op, outcome).Inc()
	gatewayDuration.WithLabelValues(resource, op).Observe(elapsed.Seconds())
}

// IncFallback counts a call served by the mirror.
func IncFallback(resource, op string) {
	mirrorFallbacks.WithLabelValues(resource, op).Inc()
}
