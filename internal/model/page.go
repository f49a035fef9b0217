package model

// Page describes how to slice and sort a list query.
type Page struct {
	Page     int
	Limit    int
	SortBy   string
	SortDesc bool
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Normalize clamps page and limit to sane values.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int64 `json:"totalPages"`
}

// NewPagination computes page metadata for a total row count.
func NewPagination(page Page, total int64) Pagination {
	pages := total / int64(page.Limit)
	if total%int64(page.Limit) != 0 {
		pages++
	}
	return Pagination{
		Page:       page.Page,
		Limit:      page.Limit,
		TotalItems: total,
		TotalPages: pages,
	}
}
