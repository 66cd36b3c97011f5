package shared

import (
	"net/url"
	"strconv"
)

// ListFilters is the list screen state (search, sort, paging) that lives in
// the URL and is round-tripped through every generated link so navigation
// reproduces the exact same view.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string
}

// ParseListFilters reads filter state from a query string, applying defaults.
func ParseListFilters(q url.Values) ListFilters {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}
	dir := q.Get("dir")
	if dir != "desc" {
		dir = "asc"
	}
	return ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		SortDir: dir,
	}
}

// Query encodes the filters back into URL values. Defaults are omitted so
// links stay clean.
func (f ListFilters) Query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.SortBy != "" {
		q.Set("sort", f.SortBy)
		q.Set("dir", f.SortDir)
	}
	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 && f.Limit != 20 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// Encode renders the filters as a query suffix, or "" when at defaults.
func (f ListFilters) Encode() string {
	q := f.Query()
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Offset converts page/limit into a row offset.
func (f ListFilters) Offset() int {
	offset := (f.Page - 1) * f.Limit
	if offset < 0 {
		return 0
	}
	return offset
}

// WithPage returns a copy pointing at another page, for pagination links.
func (f ListFilters) WithPage(page int) ListFilters {
	f.Page = page
	return f
}

// CarryFilters appends the filter state found in q to location so a redirect
// lands back on the same list view the caller was looking at.
func CarryFilters(location string, q url.Values) string {
	return location + ParseListFilters(q).Encode()
}
