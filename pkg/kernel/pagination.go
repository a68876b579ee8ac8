package kernel

// PaginationOptions controls page-based listing.
type PaginationOptions struct {
	Page     int `json:"page" query:"page"`
	PageSize int `json:"page_size" query:"page_size"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps the options to sane values.
func (p PaginationOptions) Normalize() PaginationOptions {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the SQL offset for the options.
func (p PaginationOptions) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// PageInfo describes the position of a page within a result set.
type PageInfo struct {
	Number  int  `json:"number"`
	Size    int  `json:"size"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
}

// Paginated wraps a page of items together with paging metadata.
type Paginated[T any] struct {
	Items []T      `json:"items"`
	Page  PageInfo `json:"page"`
}

// NewPaginated builds a Paginated envelope from a page of items.
func NewPaginated[T any](items []T, page, pageSize, total int) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{
		Items: items,
		Page: PageInfo{
			Number:  page,
			Size:    pageSize,
			Total:   total,
			HasNext: page*pageSize < total,
		},
	}
}
