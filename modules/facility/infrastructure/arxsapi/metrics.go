package arxsapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arxs",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of ARXS platform calls broken down by endpoint and result class.",
	}, []string{"endpoint", "result"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "arxs",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Latency of ARXS platform calls by endpoint.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
)

func recordAPIRequest(endpoint string, status int, err error, elapsed time.Duration) {
	apiRequests.WithLabelValues(endpoint, resultClass(status, err)).Inc()
	apiRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func resultClass(status int, err error) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case err != nil || status == 0:
		return "error"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
