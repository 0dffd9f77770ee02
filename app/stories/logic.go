package stories

import (
	"fmt"
	"strconv"
	"strings"

	"observatory/app/interfaces"
	"observatory/app/values"
)

type Row = interfaces.Row

// Op is a predicate comparison operator
type Op string

const (
	OpEq      Op = "="
	OpNe      Op = "!="
	OpGt      Op = ">"
	OpGte     Op = ">="
	OpLt      Op = "<"
	OpLte     Op = "<="
	OpBetween Op = "between"
)

// ExtremumType selects the maximum or minimum of a field
type ExtremumType string

const (
	Max ExtremumType = "max"
	Min ExtremumType = "min"
)

// Logic is the row selection behind a quick filter.
// A nil Logic selects every row.
type Logic interface {
	// Apply returns the rows that pass, in input order
	Apply(rows []Row) []Row

	// Key returns a stable identity used in memo keys
	Key() string
}

var comparator = values.NewComparator("")

// Apply runs l over rows, treating a nil Logic as selecting everything
func Apply(l Logic, rows []Row) []Row {
	if l == nil {
		return rows
	}
	return l.Apply(rows)
}

// LogicKey returns the memo key of l, "all" for a nil Logic
func LogicKey(l Logic) string {
	if l == nil {
		return "all"
	}
	return l.Key()
}

// Predicate compares one field against a constant.
// For OpBetween the Value is a two-element inclusive range such as []any{lo, hi}.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Match reports whether row passes the predicate.
// A missing field fails every operator except OpNe.
func (p Predicate) Match(row Row) bool {
	v := row.Value(p.Field)
	if values.IsNil(v) {
		return p.Op == OpNe
	}

	switch p.Op {
	case OpEq:
		return values.Equal(v, p.Value)
	case OpNe:
		return !values.Equal(v, p.Value)
	case OpGt, OpGte, OpLt, OpLte:
		c, ok := compare(v, p.Value)
		if !ok {
			return false
		}
		switch p.Op {
		case OpGt:
			return c > 0
		case OpGte:
			return c >= 0
		case OpLt:
			return c < 0
		default:
			return c <= 0
		}
	case OpBetween:
		lo, hi, ok := bounds(p.Value)
		if !ok {
			return false
		}
		cl, okl := compare(v, lo)
		ch, okh := compare(v, hi)
		return okl && okh && cl >= 0 && ch <= 0
	}
	return false
}

// Apply implements Logic
func (p Predicate) Apply(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if p.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Key implements Logic
func (p Predicate) Key() string {
	return fmt.Sprintf("pred:%q:%s:%q", p.Field, p.Op, valueKey(p.Value))
}

// Extremum keeps the rows whose field equals the maximum or minimum of that
// field over the input. Ties are all kept; rows missing the field are dropped.
type Extremum struct {
	Type  ExtremumType
	Field string
}

// Apply implements Logic
func (e Extremum) Apply(rows []Row) []Row {
	var best any
	found := false
	for _, r := range rows {
		v := r.Value(e.Field)
		if values.IsNil(v) {
			continue
		}
		if !found {
			best, found = v, true
			continue
		}
		c := comparator.Compare(v, best)
		if (e.Type == Min && c < 0) || (e.Type != Min && c > 0) {
			best = v
		}
	}
	if !found {
		return []Row{}
	}

	out := make([]Row, 0, 1)
	for _, r := range rows {
		v := r.Value(e.Field)
		if !values.IsNil(v) && comparator.Compare(v, best) == 0 {
			out = append(out, r)
		}
	}
	return out
}

// Key implements Logic
func (e Extremum) Key() string {
	return fmt.Sprintf("%s:%q", e.Type, e.Field)
}

// Compound is a conjunction of predicates
type Compound struct {
	Filters []Predicate
}

// Match reports whether row passes every predicate
func (c Compound) Match(row Row) bool {
	for _, p := range c.Filters {
		if !p.Match(row) {
			return false
		}
	}
	return true
}

// Apply implements Logic
func (c Compound) Apply(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Key implements Logic
func (c Compound) Key() string {
	parts := make([]string, len(c.Filters))
	for i, p := range c.Filters {
		parts[i] = strconv.Quote(p.Key())
	}
	return "and(" + strings.Join(parts, ",") + ")"
}

// compare orders a row value against a constant.
// A numeric constant only compares against numeric values.
func compare(v, constant any) (int, bool) {
	if values.IsNil(constant) {
		return 0, false
	}
	if _, ok := values.Number(constant); ok {
		if _, ok := values.Number(v); !ok {
			return 0, false
		}
	}
	return comparator.Compare(v, constant), true
}

// bounds unpacks a two-element range
func bounds(v any) (lo, hi any, ok bool) {
	switch t := v.(type) {
	case []any:
		if len(t) == 2 {
			return t[0], t[1], true
		}
	case [2]any:
		return t[0], t[1], true
	case []float64:
		if len(t) == 2 {
			return t[0], t[1], true
		}
	case [2]float64:
		return t[0], t[1], true
	case []int:
		if len(t) == 2 {
			return t[0], t[1], true
		}
	}
	return nil, nil, false
}

func valueKey(v any) string {
	if lo, hi, ok := bounds(v); ok {
		return "[" + strconv.Quote(values.Key(lo)) + ".." + strconv.Quote(values.Key(hi)) + "]"
	}
	return values.Key(v)
}
