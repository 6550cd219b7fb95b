package table

// DefaultWindowSize is how many page links a window shows at most.
const DefaultWindowSize = 5

// Window is the derived pagination view: the visible slice bounds for
// client-paged data and the contiguous set of page links to render.
type Window struct {
	Page       int
	TotalPages int
	// Start and End bound the visible slice as [Start, End).
	Start   int
	End     int
	Links   []int
	HasPrev bool
	HasNext bool
}

// Paginator derives pagination windows. WindowSize defaults to
// DefaultWindowSize when zero or negative.
type Paginator struct {
	WindowSize int
}

// Window computes the pagination window for the given totals. The current
// page is clamped into [1, totalPages] and totalPages is never below 1. Page
// links form a contiguous run of at most WindowSize numbers centered as
// closely as possible on the current page.
func (p Paginator) Window(totalItems, pageSize, current int) Window {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}
	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	size := p.WindowSize
	if size < 1 {
		size = DefaultWindowSize
	}
	if size > totalPages {
		size = totalPages
	}
	first := current - size/2
	if first < 1 {
		first = 1
	}
	if first+size-1 > totalPages {
		first = totalPages - size + 1
	}
	links := make([]int, size)
	for i := range links {
		links[i] = first + i
	}

	start := (current - 1) * pageSize
	if start > totalItems {
		start = totalItems
	}
	end := start + pageSize
	if end > totalItems {
		end = totalItems
	}
	return Window{
		Page:       current,
		TotalPages: totalPages,
		Start:      start,
		End:        end,
		Links:      links,
		HasPrev:    current > 1,
		HasNext:    current < totalPages,
	}
}
