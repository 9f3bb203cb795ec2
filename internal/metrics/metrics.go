package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total number of HTTP requests handled by the gateway.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	backendCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_backend_calls_total",
			Help: "Total number of calls to the backend API.",
		},
		[]string{"operation", "status"},
	)

	backendCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_backend_call_duration_seconds",
			Help:    "Backend API call latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func Init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		backendCallsTotal,
		backendCallDuration,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one handled HTTP request. Path should be the
// registered route pattern, not the raw URL, to keep cardinality bounded.
func ObserveRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, path, code).Inc()
	httpRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// ObserveBackendCall records one outbound backend API call. Status is the HTTP
// status code, or "error" when the transport failed before a response.
func ObserveBackendCall(operation string, status string, duration time.Duration) {
	backendCallsTotal.WithLabelValues(operation, status).Inc()
	backendCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
