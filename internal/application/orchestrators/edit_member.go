package orchestrators

import (
	"context"
	"log/slog"
	"time"

	memberStore "roster/internal/adapters/storage/member"
	viewStore "roster/internal/adapters/storage/view"
	"roster/internal/domain/listview"
	domain "roster/internal/domain/member"
)

// EditDeps holds dependencies for the row editor orchestrators.
type EditDeps struct {
	Views      viewStore.Store
	Members    memberStore.Store
	GenerateID func() string
}

// BeginEditInput names the row to edit.
type BeginEditInput struct {
	ViewID   string
	MemberID string
}

// ExecuteBeginEdit opens a member for editing. Any other open row is abandoned.
// PRE: the view is ready and MemberID is in its list
// POST: Mode is editing with the member's fields in the scratch
func ExecuteBeginEdit(ctx context.Context, input BeginEditInput, deps EditDeps) (viewStore.View, error) {
	return deps.Views.Update(input.ViewID, time.Now(), func(s *listview.State) error {
		if s.Phase != listview.PhaseReady {
			return listview.ErrNotReady
		}
		m, err := deps.Members.GetByID(ctx, input.ViewID, input.MemberID)
		if err != nil {
			return err
		}
		return s.BeginEdit(m)
	})
}

// UpdateScratchInput carries the edited field values.
type UpdateScratchInput struct {
	ViewID string
	Fields domain.Fields
}

// ExecuteUpdateScratch replaces the uncommitted values of the open row.
// PRE: Mode is editing
// POST: Scratch equals Fields; the member list is unchanged
func ExecuteUpdateScratch(ctx context.Context, input UpdateScratchInput, deps EditDeps) (viewStore.View, error) {
	return deps.Views.Update(input.ViewID, time.Now(), func(s *listview.State) error {
		return s.UpdateScratch(input.Fields)
	})
}

// CancelEditInput names the view whose editor closes.
type CancelEditInput struct {
	ViewID string
}

// ExecuteCancelEdit leaves edit mode without committing.
// PRE: Mode is editing
// POST: Mode is viewing; the member list is unchanged
func ExecuteCancelEdit(ctx context.Context, input CancelEditInput, deps EditDeps) (viewStore.View, error) {
	return deps.Views.Update(input.ViewID, time.Now(), func(s *listview.State) error {
		return s.CancelEdit()
	})
}

// RequestSaveInput asks to commit the open row. Fields, when set, replace the scratch first.
type RequestSaveInput struct {
	ViewID string
	Fields *domain.Fields
}

// ExecuteRequestSave creates the save confirmation for the open row.
// PRE: Mode is editing
// POST: a save confirmation is pending; nothing is committed until it is accepted
func ExecuteRequestSave(ctx context.Context, input RequestSaveInput, deps EditDeps) (listview.Confirmation, error) {
	var c listview.Confirmation
	_, err := deps.Views.Update(input.ViewID, time.Now(), func(s *listview.State) error {
		if input.Fields != nil {
			if err := s.UpdateScratch(*input.Fields); err != nil {
				return err
			}
		}
		var err error
		c, err = s.RequestSave(deps.GenerateID(), time.Now())
		return err
	})
	if err != nil {
		return listview.Confirmation{}, err
	}
	slog.Info("view_event", "event", "save_requested", "view_id", input.ViewID, "member_id", c.MemberID)
	return c, nil
}

// RequestDeleteInput names the row to delete.
type RequestDeleteInput struct {
	ViewID   string
	MemberID string
}

// ExecuteRequestDelete creates the delete confirmation for a member.
// PRE: the view is ready, MemberID is in its list and is not the row being edited
// POST: a delete confirmation is pending; nothing is removed until it is accepted
func ExecuteRequestDelete(ctx context.Context, input RequestDeleteInput, deps EditDeps) (listview.Confirmation, error) {
	var c listview.Confirmation
	_, err := deps.Views.Update(input.ViewID, time.Now(), func(s *listview.State) error {
		if s.Phase != listview.PhaseReady {
			return listview.ErrNotReady
		}
		if _, err := deps.Members.GetByID(ctx, input.ViewID, input.MemberID); err != nil {
			return err
		}
		var err error
		c, err = s.RequestDelete(input.MemberID, deps.GenerateID(), time.Now())
		return err
	})
	if err != nil {
		return listview.Confirmation{}, err
	}
	slog.Info("view_event", "event", "delete_requested", "view_id", input.ViewID, "member_id", c.MemberID)
	return c, nil
}
