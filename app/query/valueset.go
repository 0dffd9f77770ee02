package query

import (
	"sort"
	"strconv"
	"strings"

	"observatory/app/values"
)

// ValueSet is the set of accepted values of one column filter, keyed by
// canonical value key so that 3 and 3.0 are the same member.
type ValueSet map[string]any

// NewValueSet creates a set holding vals
func NewValueSet(vals ...any) ValueSet {
	s := make(ValueSet, len(vals))
	for _, v := range vals {
		s.Add(v)
	}
	return s
}

// Add inserts v
func (s ValueSet) Add(v any) {
	s[values.Key(v)] = v
}

// Remove deletes v
func (s ValueSet) Remove(v any) {
	delete(s, values.Key(v))
}

// Has reports whether v is a member
func (s ValueSet) Has(v any) bool {
	_, ok := s[values.Key(v)]
	return ok
}

// Clone returns an independent copy
func (s ValueSet) Clone() ValueSet {
	out := make(ValueSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Values returns the members ordered by cmp
func (s ValueSet) Values(cmp *values.Comparator) []any {
	out := make([]any, 0, len(s))
	for _, v := range s {
		out = append(out, v)
	}
	sortValues(out, cmp)
	return out
}

// Key returns a canonical identity of the set. Members are quoted so a
// member containing the separator cannot alias two members.
func (s ValueSet) Key() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		keys[i] = strconv.Quote(k)
	}
	return strings.Join(keys, ",")
}

// sortValues orders non-nil values ascending, keeping canonical key order for ties
func sortValues(vals []any, cmp *values.Comparator) {
	sort.SliceStable(vals, func(i, j int) bool {
		if c := cmp.Compare(vals[i], vals[j]); c != 0 {
			return c < 0
		}
		return values.Key(vals[i]) < values.Key(vals[j])
	})
}
