package listing

import (
	"encoding/json"
	"strconv"
)

// Ellipsis is how a gap in the page strip is rendered.
const Ellipsis = "…"

// PageLink is either a page number or a gap marker.
type PageLink struct {
	Number   int
	Ellipsis bool
}

func page(n int) PageLink { return PageLink{Number: n} }

var gap = PageLink{Ellipsis: true}

func (p PageLink) String() string {
	if p.Ellipsis {
		return Ellipsis
	}
	return strconv.Itoa(p.Number)
}

// MarshalJSON renders numbers as numbers and gaps as "…".
func (p PageLink) MarshalJSON() ([]byte, error) {
	if p.Ellipsis {
		return json.Marshal(Ellipsis)
	}
	return json.Marshal(p.Number)
}

// TotalPages is ceil(total / PageSize).
func TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + PageSize - 1) / PageSize
}

// Paginate lays out the page strip for total results with current selected.
func Paginate(total, current int) []PageLink {
	n := TotalPages(total)
	if n <= 5 {
		out := make([]PageLink, 0, n)
		for i := 1; i <= n; i++ {
			out = append(out, page(i))
		}
		return out
	}
	switch {
	case current <= 3:
		return []PageLink{page(1), page(2), page(3), page(4), page(5), gap, page(n)}
	case current >= n-2:
		return []PageLink{page(1), gap, page(n - 4), page(n - 3), page(n - 2), page(n - 1), page(n)}
	default:
		return []PageLink{page(1), gap, page(current - 1), page(current), page(current + 1), gap, page(n)}
	}
}

// Pagination is the page strip plus prev/next state.
type Pagination struct {
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
	HasPrev    bool       `json:"has_prev"`
	HasNext    bool       `json:"has_next"`
	Links      []PageLink `json:"links"`
}

func NewPagination(total, current int) Pagination {
	n := TotalPages(total)
	return Pagination{
		Page:       current,
		PageSize:   PageSize,
		Total:      total,
		TotalPages: n,
		HasPrev:    current > 1,
		HasNext:    current < n,
		Links:      Paginate(total, current),
	}
}
