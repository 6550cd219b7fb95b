package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func visible(rows []row, search string, filters Filters) []row {
	var out []row
	for _, r := range rows {
		if Matches(r, search, filters, testColumns()) {
			out = append(out, r)
		}
	}
	return out
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	rows := []row{
		{id: "1", name: "Alpha"},
		{id: "2", name: "Bravo"},
	}
	got := visible(rows, "alp", nil)
	assert.Equal(t, []string{"Alpha"}, names(got))
}

func TestSearchEmptyMatchesAll(t *testing.T) {
	rows := []row{
		{id: "1", name: "Alpha"},
		{id: "2", name: "Bravo"},
	}
	assert.Len(t, visible(rows, "", nil), 2)
	assert.Len(t, visible(rows, "   ", nil), 2)
}

func TestSearchSpansColumns(t *testing.T) {
	rows := []row{
		{id: "1", name: "Alpha", status: "approved"},
		{id: "2", name: "Bravo", status: "pending"},
	}
	got := visible(rows, "PEND", nil)
	assert.Equal(t, []string{"Bravo"}, names(got))
}

func TestSearchSkipsActionsColumn(t *testing.T) {
	// The actions column has no Value and must never panic or match.
	rows := []row{{id: "1", name: "Alpha"}}
	assert.Empty(t, visible(rows, "actions", nil))
}

func TestFilterExactMatch(t *testing.T) {
	rows := []row{
		{id: "1", name: "a", status: "approved"},
		{id: "2", name: "b", status: "approved-x"},
		{id: "3", name: "c", status: "pending"},
		{id: "4", name: "d", status: ""}, // status value is nil
	}
	got := visible(rows, "", Filters{"status": "approved"})
	assert.Equal(t, []string{"a"}, names(got))
}

func TestFilterClearedValueIsInactive(t *testing.T) {
	rows := []row{
		{id: "1", name: "a", status: "approved"},
		{id: "2", name: "b", status: ""},
	}
	// An empty selection is "no filter", not a filter for empty string.
	got := visible(rows, "", Filters{"status": ""})
	assert.Len(t, got, 2)
}

func TestFiltersCombineWithAnd(t *testing.T) {
	rows := []row{
		{id: "1", name: "a", amount: "10", status: "approved"},
		{id: "2", name: "b", amount: "10", status: "pending"},
		{id: "3", name: "c", amount: "20", status: "approved"},
	}
	both := visible(rows, "", Filters{"status": "approved", "amount": "10"})
	assert.Equal(t, []string{"a"}, names(both))

	// AND semantics: the combined set is the intersection of the
	// single-filter sets.
	onlyStatus := visible(rows, "", Filters{"status": "approved"})
	onlyAmount := visible(rows, "", Filters{"amount": "10"})
	inter := map[string]bool{}
	for _, r := range onlyStatus {
		inter[r.id] = true
	}
	var intersection []string
	for _, r := range onlyAmount {
		if inter[r.id] {
			intersection = append(intersection, r.name)
		}
	}
	assert.Equal(t, names(both), intersection)
}

func TestFilterUnknownKeyExcludesAll(t *testing.T) {
	rows := []row{{id: "1", name: "a"}}
	assert.Empty(t, visible(rows, "", Filters{"nope": "x"}))
}

func TestSearchAndFilterCombined(t *testing.T) {
	rows := []row{
		{id: "1", name: "Alpha", status: "approved"},
		{id: "2", name: "Alps", status: "pending"},
		{id: "3", name: "Bravo", status: "approved"},
	}
	got := visible(rows, "alp", Filters{"status": "approved"})
	assert.Equal(t, []string{"Alpha"}, names(got))
}
