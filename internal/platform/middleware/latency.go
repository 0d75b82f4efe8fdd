package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "addiscares_http_request_duration_seconds",
	Help:    "HTTP request latency by method, route and status.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route", "status"})

// Latency records request duration in a Prometheus histogram. The route
// label uses the chi route pattern, not the raw path, to keep cardinality
// bounded.
func Latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		httpLatency.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
