// Package table implements a generic tabular data view: column descriptors,
// a stable locale-aware sort, a combined search/filter predicate, and a
// pagination window, composed by a Controller that owns the transient view
// state. The package never inspects row shapes beyond the declared columns.
package table

// ActionsKey marks a column that renders row actions (edit/delete buttons and
// the like). Actions columns are never sortable and never participate in
// free-text search.
const ActionsKey = "actions"

// Column declares how one field of a row is displayed and accessed. Value
// extracts the raw field for sorting, searching and filtering; Render, when
// set, overrides the display representation without affecting those.
type Column[T any] struct {
	Key    string
	Header string
	Value  func(T) any
	Render func(T) string
}

// Sortable reports whether the column can drive the sort order.
func (c Column[T]) Sortable() bool {
	return c.Key != ActionsKey && c.Value != nil
}

// Searchable reports whether the column participates in free-text search.
func (c Column[T]) Searchable() bool {
	return c.Key != ActionsKey && c.Value != nil
}

func findColumn[T any](columns []Column[T], key string) (Column[T], bool) {
	for _, c := range columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}
