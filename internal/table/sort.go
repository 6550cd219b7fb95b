package table

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction orders rows ascending or descending.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState is the active sort column and direction. An empty Key means no
// sort is applied and rows keep their input order.
type SortState struct {
	Key       string
	Direction Direction
}

// Sorter orders rows by a column using locale-aware string collation.
type Sorter[T any] struct {
	coll *collate.Collator
}

// NewSorter builds a Sorter collating strings for the given locale.
func NewSorter[T any](tag language.Tag) *Sorter[T] {
	return &Sorter[T]{coll: collate.New(tag)}
}

// Sort returns the rows ordered by state. The sort is stable: rows that
// compare equal keep their relative input order. Rows missing the sort value
// always sort after rows that have one, in both directions. The input slice
// is not mutated.
func (s *Sorter[T]) Sort(rows []T, state SortState, columns []Column[T]) []T {
	if state.Key == "" {
		return rows
	}
	col, ok := findColumn(columns, state.Key)
	if !ok || !col.Sortable() {
		return rows
	}
	out := make([]T, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return s.compare(col.Value(out[i]), col.Value(out[j]), state.Direction) < 0
	})
	return out
}

func (s *Sorter[T]) compare(a, b any, dir Direction) int {
	aMissing, bMissing := isMissing(a), isMissing(b)
	switch {
	case aMissing && bMissing:
		return 0
	case aMissing:
		// Missing values go last regardless of direction, so the
		// direction flip below must not apply here.
		return 1
	case bMissing:
		return -1
	}
	cmp := 0
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			cmp = s.coll.CompareString(as, bs)
		}
	} else if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				cmp = -1
			case af > bf:
				cmp = 1
			}
		}
	}
	if dir == Descending {
		cmp = -cmp
	}
	return cmp
}

func isMissing(v any) bool {
	return v == nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
