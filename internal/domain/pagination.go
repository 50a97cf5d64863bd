package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPage         = 1_000_000
)

// Page is a normalized 1-based page request.
type Page struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// NewPage clamps page to 1..MaxPage and size to 1..MaxPageSize.
func NewPage(page, size int) Page {
	switch {
	case page <= 0:
		page = 1
	case page > MaxPage:
		page = MaxPage
	}
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return Page{Page: page, Size: size}
}

func (p Page) Offset() uint64 { return uint64((p.Page - 1) * p.Size) }
func (p Page) Limit() uint64  { return uint64(p.Size) }

// PageResult is the list envelope returned by every paginated endpoint.
type PageResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// NewPageResult never returns a nil Items slice, so it encodes as [].
func NewPageResult[T any](items []T, total int, p Page) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{Items: items, Total: total, Page: p.Page, Size: p.Size}
}
