package listutil

import (
	"net/url"
	"strconv"

	"roster/internal/domain/listview"
)

// FilterParams carries the free-text search parameter.
type FilterParams struct {
	Search string
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int // current page (1-indexed)
	PerPage    int // rows per page
	Total      int // total matching rows
	TotalPages int // ceil(Total / PerPage)
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = listview.DefaultPerPage

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = listview.PerPageOptions

// ParsePage extracts the page number from form or query values.
// PRE: none
// POST: returns the parsed page and false when it is missing or not a positive integer
func ParsePage(q url.Values) (int, bool) {
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}

// ParsePerPage extracts per_page from form or query values.
// PRE: none
// POST: returns the parsed value and false when it is not one of PerPageOptions
func ParsePerPage(q url.Values) (int, bool) {
	perPage, err := strconv.Atoi(q.Get("per_page"))
	if err != nil || !IsValidPerPage(perPage) {
		return 0, false
	}
	return perPage, true
}

// ParseFilterParams extracts the search term from form or query values.
// The term is kept verbatim.
func ParseFilterParams(q url.Values) FilterParams {
	return FilterParams{Search: q.Get("q")}
}

// TotalPages returns ceil(total / perPage).
// PRE: perPage > 0
// POST: returns 0 when total is 0
func TotalPages(total, perPage int) int {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return (total + perPage - 1) / perPage
}

// ClampPage bounds page to [1, max(1, totalPages)].
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: returns PageInfo with TotalPages computed; Page clamped to valid range
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := TotalPages(total, perPage)
	return PageInfo{
		Page:       ClampPage(page, totalPages),
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the index of the first row on the current page.
// PRE: PageInfo is valid
// POST: Returns (Page-1) * PerPage
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row number on the current page.
// PRE: PageInfo is valid
// POST: Returns 0 if Total is 0, otherwise Offset+1
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number on the current page.
// PRE: PageInfo is valid
// POST: Returns min(Offset+PerPage, Total)
func (p PageInfo) EndRow() int {
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

// PageNumbers returns one entry per page, 1..TotalPages.
// PRE: PageInfo is valid
// POST: Returns an empty slice when there are no pages
func (p PageInfo) PageNumbers() []int {
	pages := make([]int, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ShowPagination returns true if pagination controls should be displayed.
// PRE: PageInfo is valid
// POST: Returns true if there is at least one page
func (p PageInfo) ShowPagination() bool {
	return p.TotalPages > 0
}

// Filter returns the items for which keep returns true, in their original order.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Window returns the half-open slice [Offset, Offset+PerPage) of items, bounded by len(items).
// PRE: PageInfo was computed for len(items)
// POST: Returns an empty slice when the window starts past the end
func Window[T any](items []T, p PageInfo) []T {
	start := p.Offset()
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := start + p.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// IsValidPerPage reports whether n is one of PerPageOptions.
func IsValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
