package middleware

import (
	"net/http"
	"strconv"
	"time"

	"storefront/internal/metrics"
)

// Instrument counts requests and observes latency under a fixed route label.
func Instrument(m *metrics.Metrics, route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		m.Requests.WithLabelValues(route, strconv.Itoa(rw.statusCode)).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	})
}
