package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roster/internal/adapters/http/perf"
)

func okHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
}

// TestTiming_RecordsRouteLabel verifies view IDs are collapsed in the recorded path.
func TestTiming_RecordsRouteLabel(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := Timing(collector)(okHandler(http.StatusOK))

	for _, id := range []string{"0b6f0f3e-3c1a-4a4e-9d55-0d1f4f0f2a11", "5d3c8c8e-8f3a-4c55-8b1e-2a6c1d9b7e42"} {
		req := httptest.NewRequest("GET", "/views/"+id, nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	snap := collector.Snapshot(time.Now().Add(-time.Minute), perf.DefaultTopN)
	if len(snap.SlowestPaths) != 1 {
		t.Fatalf("SlowestPaths = %+v, want one aggregated route", snap.SlowestPaths)
	}
	if got := snap.SlowestPaths[0]; got.Path != "GET /views/{id}" || got.Count != 2 {
		t.Errorf("stat = %+v", got)
	}
}

// TestRouteLabel covers the ID collapsing rule.
func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/members", "/members"},
		{"/views/0b6f0f3e-3c1a-4a4e-9d55-0d1f4f0f2a11/members/5d3c8c8e-8f3a-4c55-8b1e-2a6c1d9b7e42/edit", "/views/{id}/members/{id}/edit"},
		{"/views/not-an-id/search", "/views/not-an-id/search"},
		{"/", "/"},
	}
	for _, tt := range tests {
		if got := routeLabel(tt.path); got != tt.want {
			t.Errorf("routeLabel(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

// TestTiming_SkipsPerfEndpoint verifies the perf endpoint does not measure itself.
func TestTiming_SkipsPerfEndpoint(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := Timing(collector)(okHandler(http.StatusOK))

	for _, path := range []string{"/static/style.css", "/api/perf"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rr.Code)
		}
	}
	if collector.TotalRecorded() != 0 {
		t.Errorf("TotalRecorded = %d, want 0", collector.TotalRecorded())
	}
}

// TestTiming_CapturesStatusCode verifies the status code is captured.
func TestTiming_CapturesStatusCode(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := Timing(collector)(okHandler(http.StatusBadGateway))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/views", nil))

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
	snap := collector.Snapshot(time.Now().Add(-time.Minute), perf.DefaultTopN)
	if snap.ServerErrors != 1 {
		t.Errorf("ServerErrors = %d, want 1", snap.ServerErrors)
	}
}

// TestTiming_NilCollector verifies middleware works without a collector.
func TestTiming_NilCollector(t *testing.T) {
	rr := httptest.NewRecorder()
	Timing(nil)(okHandler(http.StatusOK)).ServeHTTP(rr, httptest.NewRequest("GET", "/members", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestTiming_SetsRequestID verifies every measured response carries a fresh request ID.
func TestTiming_SetsRequestID(t *testing.T) {
	handler := Timing(nil)(okHandler(http.StatusOK))

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/members", nil))
		id := rr.Header().Get(RequestIDHeader)
		if id == "" || seen[id] {
			t.Fatalf("request ID %q missing or reused", id)
		}
		seen[id] = true
	}
}

func TestViewIDFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/views/abc", "abc"},
		{"/views/abc/members/m1/edit", "abc"},
		{"/views", ""},
		{"/members", ""},
	}
	for _, tt := range tests {
		if got := viewIDFromPath(tt.path); got != tt.want {
			t.Errorf("viewIDFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
