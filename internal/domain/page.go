package domain

// Paging defaults for trip history listings.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PaginationParams selects one page of a listing. Page is 1-indexed.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds PaginationParams from optional query values.
// Missing or non-positive values fall back to page 1 and DefaultPageLimit;
// the limit is clamped to MaxPageLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageLimit}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TripPage is one page of a user's trip history.
type TripPage struct {
	Trips []Trip
	Total int64
	PaginationParams
}

// TotalPages returns the number of pages needed to cover Total.
func (tp TripPage) TotalPages() int64 {
	if tp.Limit <= 0 {
		return 0
	}
	return (tp.Total + int64(tp.Limit) - 1) / int64(tp.Limit)
}
