package middleware

import (
	"net/http"
	"time"

	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/prometheus"
)

// Metrics returns middleware that records HTTP request counters, durations,
// and payload sizes via RecordHTTPRequest.
func Metrics(metrics *prometheus.AppMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := wrapResponse(w)

			var reqSize int64
			if r.ContentLength > 0 {
				reqSize = r.ContentLength
			}

			next.ServeHTTP(rec, r)

			prometheus.RecordHTTPRequest(
				metrics,
				r.Method,
				r.URL.Path,
				rec.status,
				time.Since(start),
				reqSize,
				rec.written,
			)
		})
	}
}
