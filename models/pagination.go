package models

// PageWindow is one page of a listing. Page is zero-based and always clamped
// into [0, TotalPages()-1], so out-of-range requests land on the nearest page.
type PageWindow struct {
	Page       int
	PageSize   int
	TotalItems int
}

// NewPageWindow builds a clamped window. A non-positive pageSize is treated as 1.
func NewPageWindow(page, pageSize, totalItems int) PageWindow {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}
	w := PageWindow{PageSize: pageSize, TotalItems: totalItems}
	last := w.TotalPages() - 1
	switch {
	case page < 0:
		page = 0
	case page > last:
		page = last
	}
	w.Page = page
	return w
}

// TotalPages returns the number of pages, which is at least 1 even for an empty listing
func (w PageWindow) TotalPages() int {
	if w.TotalItems == 0 {
		return 1
	}
	return (w.TotalItems + w.PageSize - 1) / w.PageSize
}

func (w PageWindow) Offset() int {
	return w.Page * w.PageSize
}

func (w PageWindow) Limit() int {
	return w.PageSize
}

func (w PageWindow) HasPrev() bool {
	return w.Page > 0
}

func (w PageWindow) HasNext() bool {
	return w.Page < w.TotalPages()-1
}

// Bounds returns the half-open slice range of the window over TotalItems
func (w PageWindow) Bounds() (start, end int) {
	start = w.Offset()
	if start > w.TotalItems {
		start = w.TotalItems
	}
	end = start + w.PageSize
	if end > w.TotalItems {
		end = w.TotalItems
	}
	return start, end
}

// Paginate slices an in-memory list to the requested page
func Paginate[T any](items []T, page, pageSize int) ([]T, PageWindow) {
	w := NewPageWindow(page, pageSize, len(items))
	start, end := w.Bounds()
	return items[start:end], w
}
