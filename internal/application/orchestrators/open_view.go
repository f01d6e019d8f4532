package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"roster/internal/adapters/source"
	memberStore "roster/internal/adapters/storage/member"
	viewStore "roster/internal/adapters/storage/view"
	"roster/internal/domain/listview"
	domain "roster/internal/domain/member"
)

// ErrAlreadyLoaded is returned when a view's single fetch has already resolved.
var ErrAlreadyLoaded = errors.New("member list already loaded")

// OpenViewDeps holds dependencies for OpenView and LoadMembers.
type OpenViewDeps struct {
	Views        viewStore.Store
	Members      memberStore.Store
	Source       source.Fetcher
	GenerateID   func() string
	FetchTimeout time.Duration
}

// OpenViewResult identifies the new view. Loaded is closed once the fetch has resolved.
type OpenViewResult struct {
	ViewID string
	Loaded <-chan struct{}
}

// ExecuteOpenView creates a view in the loading phase and starts its one fetch.
// The fetch runs detached from ctx so it outlives the request that opened the view.
// PRE: deps are non-nil
// POST: the view exists with Phase loading; exactly one fetch is in flight for it
func ExecuteOpenView(ctx context.Context, deps OpenViewDeps) (OpenViewResult, error) {
	id := deps.GenerateID()
	if _, err := deps.Views.Create(id, time.Now()); err != nil {
		return OpenViewResult{}, err
	}
	slog.Info("view_event", "event", "view_opened", "view_id", id)

	timeout := deps.FetchTimeout
	if timeout <= 0 {
		timeout = source.DefaultTimeout
	}

	loaded := make(chan struct{})
	go func() {
		defer close(loaded)
		fetchCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := ExecuteLoadMembers(fetchCtx, LoadMembersInput{ViewID: id}, deps); err != nil {
			slog.Error("view_load_failed", "view_id", id, "error", err.Error())
		}
	}()

	return OpenViewResult{ViewID: id, Loaded: loaded}, nil
}

// LoadMembersInput carries input for the load orchestrator.
type LoadMembersInput struct {
	ViewID string
}

// ExecuteLoadMembers fetches the member list and resolves the view's loading phase.
// A fetch failure is not an error of this call: it moves the view to the error phase.
// PRE: the view is in the loading phase
// POST: Phase is ready with the fetched members stored in source order, or Phase is error;
//
//	a view that disappeared while fetching is left alone
func ExecuteLoadMembers(ctx context.Context, input LoadMembersInput, deps OpenViewDeps) error {
	if input.ViewID == "" {
		return errors.New("view ID is required")
	}

	records, fetchErr := deps.Source.Fetch(ctx)
	if fetchErr != nil {
		slog.Warn("member_fetch_failed", "view_id", input.ViewID, "error", fetchErr.Error())
	}

	_, err := deps.Views.Update(input.ViewID, time.Now(), func(s *listview.State) error {
		if s.Phase != listview.PhaseLoading {
			return ErrAlreadyLoaded
		}
		if fetchErr != nil {
			s.MarkFailed()
			return nil
		}
		members := make([]domain.Member, len(records))
		for i, r := range records {
			members[i] = domain.Member{ID: deps.GenerateID()}
			members[i].Apply(r.Fields())
		}
		if err := deps.Members.ReplaceAll(ctx, input.ViewID, members); err != nil {
			fetchErr = fmt.Errorf("store members: %w", err)
			slog.Error("member_store_failed", "view_id", input.ViewID, "error", err.Error())
			s.MarkFailed()
			return nil
		}
		s.MarkReady()
		return nil
	})
	if errors.Is(err, viewStore.ErrViewNotFound) {
		slog.Info("view_event", "event", "load_discarded", "view_id", input.ViewID)
		return nil
	}
	if err != nil {
		return err
	}

	if fetchErr != nil {
		slog.Info("view_event", "event", "load_failed", "view_id", input.ViewID)
	} else {
		slog.Info("view_event", "event", "members_loaded", "view_id", input.ViewID, "count", len(records))
	}
	return nil
}
