package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func newTestController(t *testing.T, cfg Config[row]) *Controller[row] {
	t.Helper()
	if cfg.Columns == nil {
		cfg.Columns = testColumns()
	}
	if cfg.Key == nil {
		cfg.Key = func(r row) string { return r.id }
	}
	if cfg.Locale == (language.Tag{}) {
		cfg.Locale = language.English
	}
	ctrl, err := NewController(cfg)
	require.NoError(t, err)
	return ctrl
}

func TestNewControllerValidation(t *testing.T) {
	_, err := NewController(Config[row]{Key: func(r row) string { return r.id }})
	assert.Error(t, err)

	_, err = NewController(Config[row]{Columns: testColumns()})
	assert.Error(t, err)
}

func TestClickColumnTogglesAndResets(t *testing.T) {
	ctrl := newTestController(t, Config[row]{})

	ctrl.ClickColumn("name")
	assert.Equal(t, SortState{Key: "name", Direction: Ascending}, ctrl.Sort())

	// Same column again toggles to descending.
	ctrl.ClickColumn("name")
	assert.Equal(t, SortState{Key: "name", Direction: Descending}, ctrl.Sort())

	// And back to ascending.
	ctrl.ClickColumn("name")
	assert.Equal(t, SortState{Key: "name", Direction: Ascending}, ctrl.Sort())

	// A different column resets to ascending.
	ctrl.ClickColumn("name")
	ctrl.ClickColumn("amount")
	assert.Equal(t, SortState{Key: "amount", Direction: Ascending}, ctrl.Sort())
}

func TestClickColumnIgnoresActions(t *testing.T) {
	ctrl := newTestController(t, Config[row]{})
	ctrl.ClickColumn(ActionsKey)
	assert.Equal(t, SortState{}, ctrl.Sort())
	ctrl.ClickColumn("unknown")
	assert.Equal(t, SortState{}, ctrl.Sort())
}

func TestClickColumnDoesNotNotifyHost(t *testing.T) {
	var calls int
	ctrl := newTestController(t, Config[row]{OnChange: func(Query) { calls++ }})
	ctrl.ClickColumn("name")
	assert.Zero(t, calls)
}

func TestClickRowSuppressedFromActions(t *testing.T) {
	var clicked []string
	ctrl := newTestController(t, Config[row]{OnRowClick: func(r row) { clicked = append(clicked, r.id) }})

	ctrl.ClickRow(row{id: "1"}, false)
	ctrl.ClickRow(row{id: "2"}, true)
	assert.Equal(t, []string{"1"}, clicked)
}

func TestPipelineFilterSortPaginate(t *testing.T) {
	ctrl := newTestController(t, Config[row]{PageSize: 2})
	ctrl.SetRows([]row{
		{id: "1", name: "delta", status: "approved"},
		{id: "2", name: "alpha", status: "approved"},
		{id: "3", name: "echo", status: "pending"},
		{id: "4", name: "bravo", status: "approved"},
		{id: "5", name: "charlie", status: "approved"},
	})
	ctrl.SetFilter("status", "approved")
	ctrl.ClickColumn("name")

	// Filter leaves 4 rows; sorted alphabetically; page 1 holds 2.
	assert.Equal(t, []string{"alpha", "bravo"}, names(ctrl.Visible()))
	assert.Equal(t, 4, ctrl.Total())

	ctrl.SetPage(2)
	assert.Equal(t, []string{"charlie", "delta"}, names(ctrl.Visible()))
}

func TestSearchAndFilterResetPage(t *testing.T) {
	ctrl := newTestController(t, Config[row]{PageSize: 1})
	ctrl.SetRows([]row{
		{id: "1", name: "a"},
		{id: "2", name: "b"},
		{id: "3", name: "c"},
	})
	ctrl.SetPage(3)
	require.Equal(t, 3, ctrl.Page())

	ctrl.SetSearch("x")
	assert.Equal(t, 1, ctrl.Page())

	ctrl.SetSearch("")
	ctrl.SetPage(2)
	ctrl.SetFilter("status", "approved")
	assert.Equal(t, 1, ctrl.Page())
}

func TestSetPageBoundsAreNoOps(t *testing.T) {
	var calls int
	ctrl := newTestController(t, Config[row]{PageSize: 2, OnChange: func(Query) { calls++ }})
	ctrl.SetRows([]row{
		{id: "1", name: "a"},
		{id: "2", name: "b"},
		{id: "3", name: "c"},
	})

	ctrl.PrevPage() // already on first page
	assert.Equal(t, 1, ctrl.Page())
	assert.Zero(t, calls)

	ctrl.NextPage()
	assert.Equal(t, 2, ctrl.Page())
	assert.Equal(t, 1, calls)

	ctrl.NextPage() // already on last page
	assert.Equal(t, 2, ctrl.Page())
	assert.Equal(t, 1, calls)
}

func TestServerModeRendersRowsAsGiven(t *testing.T) {
	ctrl := newTestController(t, Config[row]{Mode: ServerPaged, PageSize: 10})
	page := []row{
		{id: "1", name: "only"},
		{id: "2", name: "these"},
	}
	ctrl.SetServerRows(page, 47)

	// No local re-slice: both rows stay visible and the server total
	// drives the page math.
	assert.Len(t, ctrl.Visible(), 2)
	assert.Equal(t, 47, ctrl.Total())
	assert.Equal(t, 5, ctrl.Window().TotalPages)
}

func TestServerModeStillSortsLocally(t *testing.T) {
	ctrl := newTestController(t, Config[row]{Mode: ServerPaged, PageSize: 10})
	ctrl.SetServerRows([]row{
		{id: "1", name: "zulu"},
		{id: "2", name: "alpha"},
	}, 2)
	ctrl.ClickColumn("name")
	assert.Equal(t, []string{"alpha", "zulu"}, names(ctrl.Visible()))
}

func TestOnChangeDeliversQuerySnapshot(t *testing.T) {
	var last Query
	ctrl := newTestController(t, Config[row]{PageSize: 5, OnChange: func(q Query) { last = q }})
	ctrl.SetRows(make([]row, 20))

	ctrl.SetSearch("alp")
	ctrl.SetFilter("status", "approved")
	assert.Equal(t, "alp", last.Search)
	assert.Equal(t, "approved", last.Filters["status"])
	assert.Equal(t, 5, last.PageSize)
	assert.Equal(t, 1, last.Page)

	// Mutating the snapshot must not leak back into the controller.
	last.Filters["status"] = "hacked"
	assert.Equal(t, "approved", ctrl.Query().Filters["status"])
}

func TestVisibleEmptyRows(t *testing.T) {
	ctrl := newTestController(t, Config[row]{})
	assert.Empty(t, ctrl.Visible())
	assert.Equal(t, 1, ctrl.Window().TotalPages)
}

func TestKeysFollowVisibleOrder(t *testing.T) {
	ctrl := newTestController(t, Config[row]{})
	ctrl.SetRows([]row{
		{id: "b1", name: "bravo"},
		{id: "a1", name: "alpha"},
	})
	ctrl.ClickColumn("name")
	assert.Equal(t, []string{"a1", "b1"}, ctrl.Keys())
}

func TestSetSortValidates(t *testing.T) {
	ctrl := newTestController(t, Config[row]{})
	ctrl.SetSort(SortState{Key: "name", Direction: "bogus"})
	assert.Equal(t, SortState{Key: "name", Direction: Ascending}, ctrl.Sort())

	ctrl.SetSort(SortState{Key: ActionsKey, Direction: Descending})
	assert.Equal(t, SortState{}, ctrl.Sort())
}
