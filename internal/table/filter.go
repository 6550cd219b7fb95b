package table

import (
	"fmt"
	"strings"
)

// Filters maps a filter key to the selected option value. An empty string is
// the cleared state: the filter is inactive and must never be matched as a
// real value.
type Filters map[string]string

// Active reports whether any filter holds a selection.
func (f Filters) Active() bool {
	for _, v := range f {
		if v != "" {
			return true
		}
	}
	return false
}

// Clone returns an independent copy so controller state cannot be mutated
// through a retained map.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Matches reports whether a row passes the free-text search and every active
// filter. Search matches when any searchable column value contains the term,
// case-insensitively; an empty term matches everything. Filters require the
// row's value at the filter key to stringify exactly to the selected value
// and combine with AND, so a row missing the field fails that filter.
func Matches[T any](row T, search string, filters Filters, columns []Column[T]) bool {
	if !matchesSearch(row, search, columns) {
		return false
	}
	for key, want := range filters {
		if want == "" {
			continue
		}
		col, ok := findColumn(columns, key)
		if !ok || col.Value == nil {
			return false
		}
		v := col.Value(row)
		if isMissing(v) || stringify(v) != want {
			return false
		}
	}
	return true
}

func matchesSearch[T any](row T, search string, columns []Column[T]) bool {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return true
	}
	for _, col := range columns {
		if !col.Searchable() {
			continue
		}
		v := col.Value(row)
		if isMissing(v) {
			continue
		}
		if strings.Contains(strings.ToLower(stringify(v)), term) {
			return true
		}
	}
	return false
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
