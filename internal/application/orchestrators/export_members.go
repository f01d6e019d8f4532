package orchestrators

import (
	"context"
	"log/slog"
	"time"

	memberStore "roster/internal/adapters/storage/member"
	viewStore "roster/internal/adapters/storage/view"
	"roster/internal/domain/export"
	"roster/internal/domain/listview"
)

// ExportMembersInput names the view to export.
type ExportMembersInput struct {
	ViewID string
}

// ExportMembersDeps holds dependencies for ExportMembers.
type ExportMembersDeps struct {
	Views   viewStore.Store
	Members memberStore.Store
}

// ExecuteExportMembers serializes the view's full member list as CSV.
// Search and page do not affect the output.
// PRE: the view is ready
// POST: Returns one CSV record per member in list order, numbered from 1
func ExecuteExportMembers(ctx context.Context, input ExportMembersInput, deps ExportMembersDeps) (export.File, error) {
	var file export.File
	err := deps.Views.Read(input.ViewID, time.Now(), func(v viewStore.View) error {
		if v.State.Phase != listview.PhaseReady {
			return listview.ErrNotReady
		}
		members, err := deps.Members.List(ctx, input.ViewID)
		if err != nil {
			return err
		}
		file, err = export.NewFile(members)
		return err
	})
	if err != nil {
		return export.File{}, err
	}
	slog.Info("view_event", "event", "members_exported", "view_id", input.ViewID, "bytes", len(file.Data))
	return file, nil
}
