package query

import (
	"observatory/app/columns"
	"observatory/app/values"
)

// UniqueValues returns, for every filterable column, the distinct non-falsy
// values present in rows, sorted ascending.
// Callers pass the raw rows so that filter options never shrink as other
// filters are applied.
func UniqueValues(rows []Row, cols []*columns.Column, cmp *values.Comparator) map[string][]any {
	if cmp == nil {
		cmp = values.NewComparator("")
	}

	out := make(map[string][]any)
	for _, col := range cols {
		if col == nil || !col.Filterable {
			continue
		}
		out[col.Key] = UniqueColumnValues(rows, col.Key, cmp)
	}
	return out
}

// UniqueColumnValues returns the sorted distinct non-falsy values of one field
func UniqueColumnValues(rows []Row, key string, cmp *values.Comparator) []any {
	seen := make(map[string]struct{})
	vals := make([]any, 0)
	for _, row := range rows {
		v := row.Value(key)
		if values.IsFalsy(v) {
			continue
		}
		k := values.Key(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		vals = append(vals, v)
	}
	sortValues(vals, cmp)
	return vals
}
