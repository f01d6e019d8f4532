package orchestrators

import (
	"context"
	"log/slog"
	"time"

	memberStore "roster/internal/adapters/storage/member"
	viewStore "roster/internal/adapters/storage/view"
	"roster/internal/application/listutil"
	"roster/internal/domain/listview"
	domain "roster/internal/domain/member"
)

// CursorDeps holds dependencies for the search and pagination orchestrators.
type CursorDeps struct {
	Views   viewStore.Store
	Members memberStore.Store
}

// SearchInput carries the raw search term.
type SearchInput struct {
	ViewID string
	Term   string
}

// ExecuteSearch replaces the view's search term.
// PRE: the view is ready
// POST: Search equals Term verbatim; Page is clamped to the filtered page count
func ExecuteSearch(ctx context.Context, input SearchInput, deps CursorDeps) (viewStore.View, error) {
	return deps.Views.Update(input.ViewID, time.Now(), func(s *listview.State) error {
		if err := s.SetSearch(input.Term); err != nil {
			return err
		}
		return clampToFiltered(ctx, deps.Members, input.ViewID, s)
	})
}

// SetPageInput carries the requested page.
type SetPageInput struct {
	ViewID string
	Page   int
}

// ExecuteSetPage moves the view to a page.
// PRE: the view is ready, Page >= 1
// POST: Page is min(Page, max(1, TotalPages))
func ExecuteSetPage(ctx context.Context, input SetPageInput, deps CursorDeps) (viewStore.View, error) {
	return deps.Views.Update(input.ViewID, time.Now(), func(s *listview.State) error {
		if err := s.SetPage(input.Page); err != nil {
			return err
		}
		return clampToFiltered(ctx, deps.Members, input.ViewID, s)
	})
}

// SetPerPageInput carries the requested page size.
type SetPerPageInput struct {
	ViewID  string
	PerPage int
}

// ExecuteSetPerPage changes the page size.
// PRE: the view is ready, PerPage is one of listview.PerPageOptions
// POST: PerPage is updated and Page is 1
func ExecuteSetPerPage(ctx context.Context, input SetPerPageInput, deps CursorDeps) (viewStore.View, error) {
	v, err := deps.Views.Update(input.ViewID, time.Now(), func(s *listview.State) error {
		return s.SetPerPage(input.PerPage)
	})
	if err == nil {
		slog.Debug("view_event", "event", "per_page_changed", "view_id", input.ViewID, "per_page", input.PerPage)
	}
	return v, err
}

// clampToFiltered bounds the cursor by the number of pages the current search yields.
func clampToFiltered(ctx context.Context, members memberStore.Store, viewID string, s *listview.State) error {
	all, err := members.List(ctx, viewID)
	if err != nil {
		return err
	}
	matched := listutil.Filter(all, func(m domain.Member) bool { return m.Matches(s.Search) })
	s.ClampPage(listutil.TotalPages(len(matched), s.PerPage))
	return nil
}
