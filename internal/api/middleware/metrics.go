package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Afhammirza1/sharingapp/internal/metrics"
)

// statusWriter wraps http.ResponseWriter to capture status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Metrics returns middleware that records Prometheus metrics.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := routePattern(r)

		metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method, path, strconv.Itoa(wrapped.status),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			r.Method, path,
		).Observe(duration)
	})
}

// routePattern prefers the pattern chi matched, falling back to
// normalizePath for requests that never reached a route.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return normalizePath(r.URL.Path)
}

// roomSubresources are the per-room collections exposed over HTTP.
var roomSubresources = map[string]bool{
	"files":    true,
	"messages": true,
	"signal":   true,
}

// normalizePath normalizes paths to avoid high cardinality in metrics
// and to key rate limits by route.
func normalizePath(path string) string {
	const prefix = "/api/rooms/"
	if !strings.HasPrefix(path, prefix) {
		return path
	}

	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return "/api/rooms"
	}

	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1:
		return "/api/rooms/{code}"
	case len(parts) == 2 && roomSubresources[parts[1]]:
		return "/api/rooms/{code}/" + parts[1]
	default:
		return "/api/rooms/*"
	}
}
