package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	viewStore "roster/internal/adapters/storage/view"
	"roster/internal/domain/listview"
)

// ResolveConfirmationInput answers a pending confirmation.
type ResolveConfirmationInput struct {
	ViewID         string
	ConfirmationID string
	Accept         bool
}

// ResolveConfirmationResult reports what the answer did.
type ResolveConfirmationResult struct {
	Confirmation listview.Confirmation
	Committed    bool
	View         viewStore.View
}

// ExecuteResolveConfirmation commits or drops the pending save or delete.
// PRE: ConfirmationID names the view's pending confirmation
// POST: save+accept replaces exactly that member with the scratch and returns to viewing;
//
//	save+decline keeps the editor open with its scratch;
//	delete+accept removes exactly that member, keeping the others' order;
//	delete+decline changes nothing; the page is clamped after a commit
func ExecuteResolveConfirmation(ctx context.Context, input ResolveConfirmationInput, deps EditDeps) (ResolveConfirmationResult, error) {
	var c listview.Confirmation
	v, err := deps.Views.Update(input.ViewID, time.Now(), func(s *listview.State) error {
		var err error
		c, err = s.Resolve(input.ConfirmationID)
		if err != nil || !input.Accept {
			return err
		}

		switch c.Action {
		case listview.ActionSave:
			m, err := deps.Members.GetByID(ctx, input.ViewID, c.MemberID)
			if err != nil {
				return err
			}
			m.Apply(s.Scratch)
			if err := deps.Members.Save(ctx, input.ViewID, m); err != nil {
				return err
			}
			s.CompleteSave()
		case listview.ActionDelete:
			if err := deps.Members.Delete(ctx, input.ViewID, c.MemberID); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown confirmation action %q", c.Action)
		}
		return clampToFiltered(ctx, deps.Members, input.ViewID, s)
	})
	if err != nil {
		return ResolveConfirmationResult{}, err
	}

	event := "confirmation_declined"
	if input.Accept {
		event = "member_" + string(c.Action) + "d"
	}
	slog.Info("view_event", "event", event, "view_id", input.ViewID, "member_id", c.MemberID)

	return ResolveConfirmationResult{Confirmation: c, Committed: input.Accept, View: v}, nil
}
