package dto

// Pagination is a generic list envelope. Total counts every match, not
// just the current page. Page is 1-based.
type Pagination[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
