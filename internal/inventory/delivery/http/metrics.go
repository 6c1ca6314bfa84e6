package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_ledger_requests_total",
			Help: "Total number of requests to the stock ledger service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stock_ledger_request_duration_seconds",
			Help:    "Duration of stock ledger requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	openStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stock_ledger_open_streams",
			Help: "Number of open server-sent event streams",
		},
	)
)

func init() {
	prometheus.MustRegister(requestCounter, requestLatency, openStreams)
}

// MetricsMiddleware records request count and latency per route template
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		endpoint := routeTemplate(r)
		requestLatency.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
		requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	})
}
