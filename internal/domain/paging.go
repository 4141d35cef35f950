package domain

const (
	DefaultPageSize           = 20
	MaxSailingPageSize        = 50
	DefaultShipImagesPageSize = 20
	MaxShipImagesPageSize     = 20
)

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// PageRequest is a normalized page window.
type PageRequest struct {
	Page     int
	PageSize int
}

func (p PageRequest) Offset() int { return (p.Page - 1) * p.PageSize }

// NewPageRequest clamps page to >= 1 and page size to min(requested or def, max).
// A non-positive requested size counts as absent.
func NewPageRequest(page, size, def, max int) PageRequest {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = def
	}
	if size > max {
		size = max
	}
	return PageRequest{Page: page, PageSize: size}
}

func (p PageRequest) Paginate(total int64) Pagination {
	pages := 0
	if total > 0 {
		pages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	}
	return Pagination{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: total,
		TotalPages: pages,
		HasMore:    p.Page < pages,
	}
}
