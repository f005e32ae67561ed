package middleware

import (
	"net/http"
	"strconv"
	"time"

	"csvserve/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// Metrics records request counts and latency for Prometheus. Requests are
// labeled by the chi route pattern, not the raw path, so label cardinality
// stays bounded.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}

		metrics.HTTPRequests.WithLabelValues(path, strconv.Itoa(ww.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}
