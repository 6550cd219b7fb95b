package table

import (
	"errors"

	"golang.org/x/text/language"
)

// Mode selects where pagination happens.
type Mode int

const (
	// ClientPaged means the controller holds the full row set and slices
	// the visible page locally.
	ClientPaged Mode = iota
	// ServerPaged means rows arrive already page-sliced; the controller
	// renders them as given and trusts the supplied total for page math.
	ServerPaged
)

// Query is the list-affecting state a host needs to refetch server-paged
// data. It is delivered through OnChange whenever search, filters or the
// current page change.
type Query struct {
	Page     int
	PageSize int
	Search   string
	Filters  Filters
	Sort     SortState
}

// Config wires a Controller. Columns and Key are required; Key must return a
// stable unique identifier per row since rows are often freshly built
// mappings and cannot be compared by identity.
type Config[T any] struct {
	Columns    []Column[T]
	Key        func(T) string
	Mode       Mode
	PageSize   int
	WindowSize int
	Locale     language.Tag
	// OnRowClick fires for row clicks outside the actions cell.
	OnRowClick func(T)
	// OnChange fires after search, filter or page mutations. Sort changes
	// re-render locally and deliberately do not fire it.
	OnChange func(Query)
}

const defaultPageSize = 10

var (
	errNoColumns = errors.New("table: at least one column required")
	errNoKey     = errors.New("table: key extractor required")
)

// Controller composes the sort, filter and pagination engines over one row
// set and owns the transient view state. Every interaction runs the same
// pipeline: filter/search, then sort, then the pagination window.
type Controller[T any] struct {
	cfg       Config[T]
	sorter    *Sorter[T]
	paginator Paginator

	rows    []T
	total   int
	page    int
	search  string
	filters Filters
	sort    SortState
}

// NewController validates the config and builds a controller.
func NewController[T any](cfg Config[T]) (*Controller[T], error) {
	if len(cfg.Columns) == 0 {
		return nil, errNoColumns
	}
	if cfg.Key == nil {
		return nil, errNoKey
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = defaultPageSize
	}
	return &Controller[T]{
		cfg:       cfg,
		sorter:    NewSorter[T](cfg.Locale),
		paginator: Paginator{WindowSize: cfg.WindowSize},
		page:      1,
		filters:   Filters{},
	}, nil
}

// SetRows replaces the row set in client mode. The total derives from the
// filtered row count.
func (c *Controller[T]) SetRows(rows []T) {
	c.rows = rows
	c.total = len(rows)
}

// SetServerRows replaces the current page's rows along with the
// authoritative server-side total.
func (c *Controller[T]) SetServerRows(rows []T, total int) {
	c.rows = rows
	if total < 0 {
		total = 0
	}
	c.total = total
}

// ClickColumn updates the sort state for a header click: clicking the active
// column toggles direction, any other sortable column resets to ascending.
// Clicks on the actions column or unknown keys are ignored. No refetch is
// triggered; re-sorting is purely local.
func (c *Controller[T]) ClickColumn(key string) {
	col, ok := findColumn(c.cfg.Columns, key)
	if !ok || !col.Sortable() {
		return
	}
	if c.sort.Key == key && c.sort.Direction == Ascending {
		c.sort.Direction = Descending
		return
	}
	c.sort = SortState{Key: key, Direction: Ascending}
}

// SetSort installs a sort state directly, as when it arrives in a query
// string. Unknown or unsortable keys clear the sort. Like ClickColumn this
// is local-only and does not notify the host.
func (c *Controller[T]) SetSort(state SortState) {
	if state.Key != "" {
		if col, ok := findColumn(c.cfg.Columns, state.Key); !ok || !col.Sortable() {
			state = SortState{}
		}
	}
	if state.Key != "" && state.Direction != Descending {
		state.Direction = Ascending
	}
	c.sort = state
}

// ClickRow forwards a row click to the host unless it originated inside an
// actions cell, which handles its own interactions.
func (c *Controller[T]) ClickRow(row T, fromActions bool) {
	if fromActions || c.cfg.OnRowClick == nil {
		return
	}
	c.cfg.OnRowClick(row)
}

// SetSearch updates the free-text term, resets to the first page and
// notifies the host.
func (c *Controller[T]) SetSearch(term string) {
	if c.search == term {
		return
	}
	c.search = term
	c.page = 1
	c.changed()
}

// SetFilter selects a value for one filter key; an empty value clears it.
// Resets to the first page and notifies the host.
func (c *Controller[T]) SetFilter(key, value string) {
	if c.filters[key] == value {
		return
	}
	c.filters[key] = value
	c.page = 1
	c.changed()
}

// SetPage navigates to a page, clamped into the valid range. Out-of-range
// requests (previous on the first page, next past the last) are no-ops.
func (c *Controller[T]) SetPage(page int) {
	w := c.Window()
	if page < 1 || page > w.TotalPages || page == c.page {
		return
	}
	c.page = page
	c.changed()
}

// NextPage and PrevPage move one page when possible.
func (c *Controller[T]) NextPage() { c.SetPage(c.page + 1) }
func (c *Controller[T]) PrevPage() { c.SetPage(c.page - 1) }

// Sort returns the active sort state.
func (c *Controller[T]) Sort() SortState { return c.sort }

// Search returns the active search term.
func (c *Controller[T]) Search() string { return c.search }

// Page returns the current 1-based page.
func (c *Controller[T]) Page() int { return c.page }

// Columns returns the declared column descriptors in order.
func (c *Controller[T]) Columns() []Column[T] { return c.cfg.Columns }

// Query snapshots the list-affecting state for a host refetch.
func (c *Controller[T]) Query() Query {
	return Query{
		Page:     c.page,
		PageSize: c.cfg.PageSize,
		Search:   c.search,
		Filters:  c.filters.Clone(),
		Sort:     c.sort,
	}
}

// Total returns the row total backing the page math: the filtered count in
// client mode, the server-supplied total otherwise.
func (c *Controller[T]) Total() int {
	if c.cfg.Mode == ServerPaged {
		return c.total
	}
	return len(c.filtered())
}

// Window derives the pagination window from the current state.
func (c *Controller[T]) Window() Window {
	return c.paginator.Window(c.Total(), c.cfg.PageSize, c.page)
}

// Visible runs the filter, sort, paginate pipeline and returns the rows to
// render. In server mode rows are never re-sliced locally: the server
// already paged them, only the local sort applies. An empty result is valid
// and the host renders it as a single "no data" row.
func (c *Controller[T]) Visible() []T {
	if c.cfg.Mode == ServerPaged {
		return c.sorter.Sort(c.rows, c.sort, c.cfg.Columns)
	}
	rows := c.sorter.Sort(c.filtered(), c.sort, c.cfg.Columns)
	w := c.paginator.Window(len(rows), c.cfg.PageSize, c.page)
	return rows[w.Start:w.End]
}

// Keys returns the extracted identity for each visible row, in render order.
func (c *Controller[T]) Keys() []string {
	visible := c.Visible()
	keys := make([]string, len(visible))
	for i, row := range visible {
		keys[i] = c.cfg.Key(row)
	}
	return keys
}

func (c *Controller[T]) filtered() []T {
	if c.search == "" && !c.filters.Active() {
		return c.rows
	}
	out := make([]T, 0, len(c.rows))
	for _, row := range c.rows {
		if Matches(row, c.search, c.filters, c.cfg.Columns) {
			out = append(out, row)
		}
	}
	return out
}

func (c *Controller[T]) changed() {
	if c.cfg.OnChange != nil {
		c.cfg.OnChange(c.Query())
	}
}
