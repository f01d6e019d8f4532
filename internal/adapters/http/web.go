package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"roster/internal/adapters/http/middleware"
	"roster/internal/adapters/http/perf"
	"roster/internal/adapters/source"
	memberStore "roster/internal/adapters/storage/member"
	viewStore "roster/internal/adapters/storage/view"
)

// Stores holds all storage dependencies.
type Stores struct {
	ViewStore   viewStore.Store
	MemberStore memberStore.Store
}

// loadCSRFKey reads the CSRF secret from ROSTER_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("ROSTER_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("ROSTER_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if isProduction() {
		log.Fatal("ROSTER_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (open forms won't survive restart). Set ROSTER_CSRF_KEY for production.")
	return key
}

func isProduction() bool {
	return os.Getenv("ROSTER_ENV") == "production"
}

// trustedOrigins reads ROSTER_TRUSTED_ORIGINS (comma-separated host:port list).
func trustedOrigins() []string {
	v := os.Getenv("ROSTER_TRUSTED_ORIGINS")
	if v == "" {
		return []string{"localhost:8080", "127.0.0.1:8080"}
	}
	var out []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global member source (set by NewMux)
var memberSource source.Fetcher

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 20

// FetchTimeout bounds the one fetch each view issues.
var FetchTimeout = source.DefaultTimeout

// MaxRequestBytes caps request bodies.
var MaxRequestBytes int64 = 64 << 10

// generateID returns a new random identifier for views, members and confirmations.
func generateID() string {
	return uuid.New().String()
}

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, src source.Fetcher, collector *perf.Collector) http.Handler {
	stores = s
	memberSource = src
	perfCollector = collector

	mux := http.NewServeMux()
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> Recoverer -> RequestSize -> RateLimit -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(loadCSRFKey(), isProduction(), trustedOrigins()...),
		middleware.RateLimit(limiter),
		chimw.RequestSize(MaxRequestBytes),
		chimw.Recoverer,
		middleware.Timing(collector),
	)
}
