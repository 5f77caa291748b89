package logging

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "desk_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "desk_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// RouteFunc names the route a request matched, for metric labels.
// It must return a low-cardinality template such as "/records/{id}".
type RouteFunc func(r *http.Request) string

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func skip(path string) bool {
	return strings.HasPrefix(path, "/uploads/") || path == "/health" || path == "/metrics"
}

// RequestLogger is middleware that logs HTTP requests and records request
// metrics. route may be nil, in which case metrics are labelled with the
// raw path.
func RequestLogger(route RouteFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip noisy paths
			if skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)

			name := r.URL.Path
			if route != nil {
				name = route(r)
			}
			requestsTotal.WithLabelValues(r.Method, name, strconv.Itoa(rw.status)).Inc()
			requestDuration.WithLabelValues(r.Method, name).Observe(duration.Seconds())

			level := zapcore.InfoLevel
			if rw.status >= 500 {
				level = zapcore.ErrorLevel
			} else if rw.status >= 400 {
				level = zapcore.WarnLevel
			}

			if ce := zap.L().Check(level, "request"); ce != nil {
				ce.Write(
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", rw.status),
					zap.Duration("duration", duration),
					zap.String("ip", r.RemoteAddr),
				)
			}
		})
	}
}
