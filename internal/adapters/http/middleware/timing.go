package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"roster/internal/adapters/http/perf"
)

// DefaultSlowRequestMs is the default threshold for slow request warnings.
const DefaultSlowRequestMs = 200

// RequestIDHeader carries the per-request correlation ID back to the client.
const RequestIDHeader = "X-Request-ID"

// slowRequestThreshold reads ROSTER_SLOW_REQUEST_MS, falling back to DefaultSlowRequestMs.
func slowRequestThreshold() float64 {
	if v := os.Getenv("ROSTER_SLOW_REQUEST_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return float64(n)
		}
	}
	return DefaultSlowRequestMs
}

// responseRecorder captures what the handler wrote.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rw *responseRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(p []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(p)
	rw.bytes += n
	return n, err
}

// routeLabel collapses ID path segments so one route aggregates as one perf path,
// e.g. "/views/9b2c.../members/1f0e.../edit" becomes "/views/{id}/members/{id}/edit".
func routeLabel(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if _, err := uuid.Parse(seg); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

// viewIDFromPath returns the view segment of /views/{id}/..., or "".
func viewIDFromPath(path string) string {
	rest, ok := strings.CutPrefix(path, "/views/")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "/")
	return id
}

// Timing returns middleware that tags each request with an ID and logs its duration.
// The perf endpoint and static assets are not measured.
// Slow requests log at WARN, the rest at DEBUG. A nil collector disables recording.
func Timing(collector *perf.Collector) func(http.Handler) http.Handler {
	threshold := slowRequestThreshold()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if strings.HasPrefix(path, "/static/") || path == "/api/perf" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqID := uuid.NewString()
			w.Header().Set(RequestIDHeader, reqID)
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			durationMs := float64(time.Since(start).Microseconds()) / 1000.0
			route := r.Method + " " + routeLabel(path)
			attrs := []any{
				"request_id", reqID,
				"route", route,
				"status", rec.status,
				"bytes", rec.bytes,
				"duration_ms", durationMs,
			}
			if id := viewIDFromPath(path); id != "" {
				attrs = append(attrs, "view_id", id)
			}
			if durationMs >= threshold {
				slog.Warn("slow_request", attrs...)
			} else {
				slog.Debug("request", attrs...)
			}

			if collector != nil {
				collector.Record(perf.Entry{
					Kind:       perf.KindRequest,
					Path:       route,
					StatusCode: rec.status,
					DurationMs: durationMs,
					Timestamp:  start,
				})
			}
		})
	}
}
