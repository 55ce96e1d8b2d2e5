package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/quickdraw/pkg/logger"
	"github.com/okian/quickdraw/pkg/metrics"
)

// WithRequestMetrics wraps a handler to record Prometheus metrics and log
// each request with a correlation id.
func WithRequestMetrics(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		elapsed := time.Since(start)
		status := strconv.Itoa(wrapped.statusCode)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, elapsed.Seconds())

		logger.Named("http").Debug(r.Context(), "request handled",
			logger.String("requestID", requestID),
			logger.String("endpoint", endpoint),
			logger.String("method", r.Method),
			logger.String("status", status),
			logger.Duration("elapsed", elapsed),
		)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
