package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var testCSRFKey = bytes.Repeat([]byte{7}, 32)

// TestRateLimiter_Allow verifies the bucket empties and is per client.
func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	defer rl.Stop()

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("first two requests must pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third request within the interval must be refused")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("another client must have its own bucket")
	}
}

// TestRateLimit_SharesBucketAcrossPorts verifies the port is not part of the client key.
func TestRateLimit_SharesBucketAcrossPorts(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	defer rl.Stop()
	handler := RateLimit(rl)(okHandler(http.StatusOK))

	codes := make([]int, 0, 2)
	for _, addr := range []string{"192.0.2.1:1000", "192.0.2.1:2000"} {
		req := httptest.NewRequest("GET", "/members", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}
}

// TestSecurityHeaders verifies the OWASP headers are set.
func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler(http.StatusOK)).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
	if !strings.Contains(rr.Header().Get("Content-Security-Policy"), "data:") {
		t.Error("CSP must allow data: URIs for the CSV export link")
	}
}

// TestCSRF verifies forms need a token while JSON requests are exempt.
func TestCSRF(t *testing.T) {
	handler := CSRF(testCSRFKey, false)(okHandler(http.StatusOK))

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"safe method", "GET", "", http.StatusOK},
		{"form without token", "POST", "application/x-www-form-urlencoded", http.StatusForbidden},
		{"json api", "POST", "application/json", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/views/x/search", strings.NewReader(""))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

// TestChain verifies the first middleware is innermost.
func TestChain(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	Chain(okHandler(http.StatusOK), mark("inner"), mark("outer")).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("order = %v", order)
	}
}
