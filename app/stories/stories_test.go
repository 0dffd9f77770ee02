package stories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"observatory/app/columns"
)

func ids(rows []Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r["id"]
	}
	return out
}

func TestPredicate_Operators(t *testing.T) {
	rows := []Row{
		{"id": 1, "latency_ms": 12000.0},
		{"id": 2, "latency_ms": 3000.0},
		{"id": 3, "latency_ms": nil},
		{"id": 4, "latency_ms": 5000},
		{"id": 5},
	}

	tests := []struct {
		name     string
		pred     Predicate
		expected []any
	}{
		{"gt", Predicate{Field: "latency_ms", Op: OpGt, Value: 5000}, []any{1}},
		{"gte", Predicate{Field: "latency_ms", Op: OpGte, Value: 5000}, []any{1, 4}},
		{"lt", Predicate{Field: "latency_ms", Op: OpLt, Value: 5000}, []any{2}},
		{"lte", Predicate{Field: "latency_ms", Op: OpLte, Value: 5000.0}, []any{2, 4}},
		{"eq", Predicate{Field: "latency_ms", Op: OpEq, Value: 3000}, []any{2}},
		{"ne keeps missing", Predicate{Field: "latency_ms", Op: OpNe, Value: 3000}, []any{1, 3, 4, 5}},
		{"between inclusive", Predicate{Field: "latency_ms", Op: OpBetween, Value: []any{3000, 5000}}, []any{2, 4}},
		{"between float bounds", Predicate{Field: "latency_ms", Op: OpBetween, Value: [2]float64{5000, 12000}}, []any{1, 4}},
		{"between malformed", Predicate{Field: "latency_ms", Op: OpBetween, Value: 5}, []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(tt.pred.Apply(rows)))
		})
	}
}

func TestPredicate_StringAgainstNumberFails(t *testing.T) {
	p := Predicate{Field: "v", Op: OpGt, Value: 10}
	assert.False(t, p.Match(Row{"v": "abc"}))
	assert.True(t, Predicate{Field: "v", Op: OpEq, Value: "abc"}.Match(Row{"v": "abc"}))
}

func TestPredicate_SlowExample(t *testing.T) {
	rows := []Row{
		{"id": 1, "latency_ms": 12000},
		{"id": 2, "latency_ms": 3000},
		{"id": 3, "latency_ms": nil},
	}
	slow := Predicate{Field: "latency_ms", Op: OpGt, Value: 5000}
	assert.Equal(t, []any{1}, ids(slow.Apply(rows)))
}

func TestExtremum(t *testing.T) {
	rows := []Row{
		{"id": 1, "cost": 0.5},
		{"id": 2, "cost": 2.0},
		{"id": 3},
		{"id": 4, "cost": 2},
		{"id": 5, "cost": 0.1},
	}

	assert.Equal(t, []any{2, 4}, ids(Extremum{Type: Max, Field: "cost"}.Apply(rows)))
	assert.Equal(t, []any{5}, ids(Extremum{Type: Min, Field: "cost"}.Apply(rows)))
	assert.Empty(t, Extremum{Type: Max, Field: "missing"}.Apply(rows))
	assert.Empty(t, Extremum{Type: Max, Field: "cost"}.Apply(nil))
}

func TestCompound(t *testing.T) {
	rows := []Row{
		{"id": 1, "cached": false, "total_cost": 0.2},
		{"id": 2, "cached": true, "total_cost": 0.2},
		{"id": 3, "cached": false, "total_cost": 0.01},
	}
	c := Compound{Filters: []Predicate{
		{Field: "cached", Op: OpEq, Value: false},
		{Field: "total_cost", Op: OpGt, Value: 0.05},
	}}
	assert.Equal(t, []any{1}, ids(c.Apply(rows)))
	assert.Equal(t, rows, Compound{}.Apply(rows))
}

func TestApply_NilLogicPassesThrough(t *testing.T) {
	rows := []Row{{"id": 1}, {"id": 2}}
	assert.Equal(t, rows, Apply(nil, rows))
	assert.Equal(t, "all", LogicKey(nil))
}

func TestLogicKeys_AreDistinct(t *testing.T) {
	keys := map[string]bool{}
	for _, s := range Default().List() {
		for _, qf := range s.QuickFilters {
			if qf.Logic == nil {
				continue
			}
			keys[qf.Logic.Key()] = true
		}
	}
	assert.Greater(t, len(keys), 20)
	assert.NotEqual(t,
		Predicate{Field: "a", Op: OpEq, Value: "1"}.Key(),
		Predicate{Field: "a", Op: OpEq, Value: 1}.Key())
}

func TestDefault_ValidatesAgainstColumns(t *testing.T) {
	r := Default()
	require.NoError(t, r.Validate(columns.Default()))

	expected := []string{Latency, Cost, Quality, TokenImbalance, SystemPrompt, Cache, Routing, Optimization}
	var got []string
	for _, s := range r.List() {
		got = append(got, s.ID)
		assert.Equal(t, AllFilterID, s.QuickFilters[0].ID)
		assert.Nil(t, s.QuickFilters[0].Logic)
	}
	assert.Equal(t, expected, got)
}

func TestRegistry_Get(t *testing.T) {
	r := Default()

	s, err := r.Get(Latency)
	require.NoError(t, err)
	assert.Equal(t, "latency_ms", s.PrimaryMetric)

	qf, ok := s.QuickFilter("slow")
	require.True(t, ok)
	assert.Equal(t, "Slow (>5s)", qf.Label)

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownStory)
}

func TestStory_ValidateRejectsUnknownColumns(t *testing.T) {
	cols := columns.Default()

	s := Story{ID: "x", QuickFilters: []QuickFilter{all}, DefaultColumns: []string{"nope"}}
	assert.ErrorIs(t, s.Validate(cols), ErrInvalidStory)

	s = Story{ID: "x", QuickFilters: []QuickFilter{{ID: "first", Logic: Predicate{Field: "latency_ms"}}}, DefaultColumns: []string{"call_id"}}
	assert.ErrorIs(t, s.Validate(cols), ErrInvalidStory)

	s = Story{ID: "x", QuickFilters: []QuickFilter{all, {ID: "bad", Logic: Extremum{Type: Max, Field: "nope"}}}, DefaultColumns: []string{"call_id"}}
	assert.ErrorIs(t, s.Validate(cols), ErrInvalidStory)

	_, err := NewRegistry(Story{ID: "a"}, Story{ID: "a"})
	assert.ErrorIs(t, err, ErrInvalidStory)
}
