package orchestrators

import (
	"context"
	"log/slog"
	"time"

	memberStore "roster/internal/adapters/storage/member"
	viewStore "roster/internal/adapters/storage/view"
)

// DefaultViewTTL is how long an untouched view is kept.
const DefaultViewTTL = 30 * time.Minute

// ExpireViewsInput carries the sweep cutoff.
type ExpireViewsInput struct {
	Now time.Time
	TTL time.Duration
}

// ExpireViewsDeps holds dependencies for ExpireViews.
type ExpireViewsDeps struct {
	Views   viewStore.Store
	Members memberStore.Store
}

// ExecuteExpireViews discards views idle for longer than TTL together with their members.
// PRE: TTL > 0
// POST: no view last seen before Now-TTL remains; returns how many were removed
func ExecuteExpireViews(ctx context.Context, input ExpireViewsInput, deps ExpireViewsDeps) (int, error) {
	ttl := input.TTL
	if ttl <= 0 {
		ttl = DefaultViewTTL
	}

	removed := 0
	for _, id := range deps.Views.IdleSince(input.Now.Add(-ttl)) {
		if !deps.Views.Delete(id) {
			continue
		}
		if err := deps.Members.DeleteView(ctx, id); err != nil {
			return removed, err
		}
		removed++
		slog.Info("view_event", "event", "view_expired", "view_id", id)
	}
	return removed, nil
}

// StartViewSweeper starts a background goroutine that periodically expires idle views.
// PRE: stopCh is provided to signal shutdown; interval > 0
// POST: Sweeper runs until stopCh is closed
func StartViewSweeper(deps ExpireViewsDeps, ttl, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				if _, err := ExecuteExpireViews(ctx, ExpireViewsInput{Now: now, TTL: ttl}, deps); err != nil {
					slog.Error("view_sweep_failed", "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("view_sweeper_stopped")
				return
			}
		}
	}()
}
