package projections

import (
	"context"
	"time"

	viewStore "roster/internal/adapters/storage/view"
	"roster/internal/application/listutil"
	"roster/internal/domain/listview"
	domainMember "roster/internal/domain/member"
)

// GetMemberListQuery carries query parameters.
type GetMemberListQuery struct {
	ViewID string
}

// MemberRow is one displayed table row.
type MemberRow struct {
	Number  int                 `json:"number"` // 1-based position in the filtered list
	Member  domainMember.Member `json:"member"`
	Editing bool                `json:"editing"`
}

// Pagination describes the page controls.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int   `json:"total"`
	TotalPages int   `json:"total_pages"`
	Pages      []int `json:"pages"`
	StartRow   int   `json:"start_row"`
	EndRow     int   `json:"end_row"`
}

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	ViewID         string                 `json:"view_id"`
	Phase          listview.Phase         `json:"phase"`
	Error          string                 `json:"error,omitempty"`
	Search         string                 `json:"search"`
	Rows           []MemberRow            `json:"rows"`
	Pagination     Pagination             `json:"pagination"`
	PerPageOptions []int                  `json:"per_page_options"`
	MemberCount    int                    `json:"member_count"` // unfiltered
	NoResults      bool                   `json:"no_results"`
	Mode           listview.Mode          `json:"mode"`
	Editing        string                 `json:"editing,omitempty"`
	Scratch        *domainMember.Fields   `json:"scratch,omitempty"`
	Pending        *listview.Confirmation `json:"pending,omitempty"`
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	Views   ViewStore
	Members MemberStore
}

// QueryGetMemberList renders the current page of a view.
// PRE: ViewID names an open view
// POST: Rows hold the members of the filtered list inside the page window, in list order;
//
//	while loading or failed, Rows is empty and only Phase/Error are meaningful
//
// INVARIANT: the page is clamped to [1, max(1, TotalPages)] without mutating the view
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps) (GetMemberListResult, error) {
	var result GetMemberListResult
	err := deps.Views.Read(query.ViewID, time.Now(), func(v viewStore.View) error {
		st := v.State
		result = GetMemberListResult{
			ViewID:         v.ID,
			Phase:          st.Phase,
			Error:          st.Error,
			Search:         st.Search,
			Rows:           []MemberRow{},
			PerPageOptions: listutil.PerPageOptions,
			Mode:           st.Mode(),
			Editing:        st.Editing,
			Pending:        st.Pending,
		}
		if st.Mode() == listview.ModeEditing {
			scratch := st.Scratch
			result.Scratch = &scratch
		}
		if st.Phase != listview.PhaseReady {
			result.Pagination = toPagination(listutil.NewPageInfo(1, st.PerPage, 0))
			return nil
		}

		members, err := deps.Members.List(ctx, query.ViewID)
		if err != nil {
			return err
		}
		matched := listutil.Filter(members, func(m domainMember.Member) bool { return m.Matches(st.Search) })
		info := listutil.NewPageInfo(st.Page, st.PerPage, len(matched))

		for i, m := range listutil.Window(matched, info) {
			result.Rows = append(result.Rows, MemberRow{
				Number:  info.Offset() + i + 1,
				Member:  m,
				Editing: m.ID == st.Editing,
			})
		}
		result.Pagination = toPagination(info)
		result.MemberCount = len(members)
		result.NoResults = len(matched) == 0
		return nil
	})
	if err != nil {
		return GetMemberListResult{}, err
	}
	return result, nil
}

func toPagination(info listutil.PageInfo) Pagination {
	return Pagination{
		Page:       info.Page,
		PerPage:    info.PerPage,
		Total:      info.Total,
		TotalPages: info.TotalPages,
		Pages:      info.PageNumbers(),
		StartRow:   info.StartRow(),
		EndRow:     info.EndRow(),
	}
}
