package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	web "roster/internal/adapters/http"
	"roster/internal/adapters/http/perf"
	"roster/internal/adapters/source"
	"roster/internal/adapters/storage"
	memberStore "roster/internal/adapters/storage/member"
	viewStore "roster/internal/adapters/storage/view"
	"roster/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(envOrDefault("ROSTER_LOG_LEVEL", "info")),
	})))

	// :memory: databases are per connection, so OpenMemory pins the pool to one
	db, err := storage.OpenMemory()
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	stores := &web.Stores{
		ViewStore:   viewStore.NewMemoryStore(),
		MemberStore: memberStore.NewSQLiteStore(timedDB),
	}

	fetchTimeout := envDuration("ROSTER_FETCH_TIMEOUT", source.DefaultTimeout)
	web.FetchTimeout = fetchTimeout
	sourceURL := envOrDefault("ROSTER_SOURCE_URL", source.DefaultURL)
	fetcher := source.NewHTTPFetcher(sourceURL, fetchTimeout)

	// Expire abandoned views so their member rows do not accumulate
	viewTTL := envDuration("ROSTER_VIEW_TTL", orchestrators.DefaultViewTTL)
	sweeperStopCh := make(chan struct{})
	expireDeps := orchestrators.ExpireViewsDeps{Views: stores.ViewStore, Members: stores.MemberStore}
	orchestrators.StartViewSweeper(expireDeps, viewTTL, sweepInterval(viewTTL), sweeperStopCh)
	defer close(sweeperStopCh)

	mux := web.NewMux(stores, fetcher, collector)

	addr := envOrDefault("ROSTER_ADDR", ":8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Roster %s starting on %s (env=%s, source=%s)", version, addr, envOrDefault("ROSTER_ENV", "development"), sourceURL)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server_shutdown_failed", "error", err.Error())
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Fatalf("%s must be a positive duration, got %q", key, v)
	}
	return d
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// sweepInterval checks a few times per TTL, at most once a minute.
func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}
