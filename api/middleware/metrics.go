package middleware

import (
	"net/http"
	"time"

	"github.com/angelmondragon/vendorkyc-backend/pkg/metrics"
)

// Metrics observes request latency keyed by the matched chi route pattern.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)

			route := routePattern(r)
			if route == "" {
				route = "unmatched"
			}
			m.Observe(r.Method, route, rec.code(), time.Since(start))
		})
	}
}
