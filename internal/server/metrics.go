// metrics.go - Prometheus metrics for the HTTP surface and admin writes.
package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_http_requests_total",
			Help: "HTTP requests handled, by method, route, and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	uploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_uploads_total",
		Help: "Files stored through the admin upload endpoint.",
	})

	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_upload_bytes_total",
		Help: "Bytes stored through the admin upload endpoint.",
	})

	entriesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_entries_created_total",
		Help: "Portfolio entries created.",
	})

	entriesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_entries_deleted_total",
		Help: "Portfolio entry delete requests completed.",
	})
)

// metricsRoute collapses path parameters so the route label stays bounded.
func metricsRoute(path string) string {
	switch {
	case strings.HasPrefix(path, "/entries/"):
		return "/entries/{section}"
	case strings.HasPrefix(path, "/admin/entry/"):
		return "/admin/entry/{entry_id}"
	default:
		return path
	}
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r)

		route := metricsRoute(r.URL.Path)
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(lrw.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
