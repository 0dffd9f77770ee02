package query

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"observatory/app/cache"
	"observatory/app/columns"
	"observatory/app/interfaces"
	"observatory/app/stories"
	"observatory/app/values"
)

func ids(rows []Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r["id"]
	}
	return out
}

func exampleRows() []Row {
	return []Row{
		{"id": 1, "latency_ms": 12000},
		{"id": 2, "latency_ms": 3000},
		{"id": 3, "latency_ms": nil},
	}
}

func run(t *testing.T, rows []Row, stages ...PipelineStage) *Result {
	t.Helper()
	p := NewPipeline("", nil, DefaultCacheConfig())
	for _, s := range stages {
		p.AddStage(s)
	}
	res, err := p.Execute(context.Background(), rows)
	require.NoError(t, err)
	return res
}

func TestQuickFilter_SlowExample(t *testing.T) {
	res := run(t, exampleRows(),
		NewQuickFilterStage("slow", stories.Predicate{Field: "latency_ms", Op: stories.OpGt, Value: 5000}))
	assert.Equal(t, []any{1}, ids(res.Rows))
}

func TestSort_NullLastRegardlessOfDirection(t *testing.T) {
	desc := run(t, exampleRows(), NewSortStage(SortConfig{Key: "latency_ms", Direction: interfaces.SortDesc}, nil))
	assert.Equal(t, []any{1, 2, 3}, ids(desc.Rows))

	asc := run(t, exampleRows(), NewSortStage(SortConfig{Key: "latency_ms", Direction: interfaces.SortAsc}, nil))
	assert.Equal(t, []any{2, 1, 3}, ids(asc.Rows))
}

func TestSort_IsStable(t *testing.T) {
	rows := []Row{
		{"id": 1, "model": "b"},
		{"id": 2, "model": "a"},
		{"id": 3, "model": "b"},
		{"id": 4, "model": "a"},
		{"id": 5},
		{"id": 6, "model": "b"},
		{"id": 7},
	}
	res := run(t, rows, NewSortStage(SortConfig{Key: "model", Direction: interfaces.SortAsc}, nil))
	assert.Equal(t, []any{2, 4, 1, 3, 6, 5, 7}, ids(res.Rows))

	res = run(t, rows, NewSortStage(SortConfig{Key: "model", Direction: interfaces.SortDesc}, nil))
	assert.Equal(t, []any{1, 3, 6, 2, 4, 5, 7}, ids(res.Rows))
}

func TestSort_DirectionReversesTotalOrder(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	rows := make([]Row, 50)
	for i := range rows {
		rows[i] = Row{"id": i, "cost": r.Float64()}
	}

	asc := run(t, rows, NewSortStage(SortConfig{Key: "cost", Direction: interfaces.SortAsc}, nil))
	desc := run(t, rows, NewSortStage(SortConfig{Key: "cost", Direction: interfaces.SortDesc}, nil))

	reversed := make([]any, len(asc.Rows))
	for i, id := range ids(asc.Rows) {
		reversed[len(reversed)-1-i] = id
	}
	assert.Equal(t, reversed, ids(desc.Rows))
}

func TestSort_NumericNotLexicographic(t *testing.T) {
	rows := []Row{{"id": 1, "n": 10}, {"id": 2, "n": 9.5}, {"id": 3, "n": int64(100)}}
	res := run(t, rows, NewSortStage(SortConfig{Key: "n", Direction: interfaces.SortAsc}, nil))
	assert.Equal(t, []any{2, 1, 3}, ids(res.Rows))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	rows := exampleRows()
	run(t, rows, NewSortStage(SortConfig{Key: "latency_ms", Direction: interfaces.SortAsc}, nil))
	assert.Equal(t, []any{1, 2, 3}, ids(rows))
}

func TestColumnFilters_AndAcrossOrWithin(t *testing.T) {
	rows := []Row{
		{"id": 1, "model": "gpt-4o", "cached": true},
		{"id": 2, "model": "gpt-4o-mini", "cached": true},
		{"id": 3, "model": "claude", "cached": false},
		{"id": 4, "model": "gpt-4o", "cached": false},
		{"id": 5, "cached": true},
	}
	filters := map[string]ValueSet{
		"model":  NewValueSet("gpt-4o", "claude"),
		"cached": NewValueSet(false),
	}

	res := run(t, rows, NewColumnFilterStage(filters))
	assert.Equal(t, []any{3, 4}, ids(res.Rows))
	assert.LessOrEqual(t, len(res.Rows), len(rows))

	stage := NewColumnFilterStage(filters)
	for _, r := range res.Rows {
		assert.True(t, stage.Match(r))
	}
}

func TestColumnFilters_RandomizedSubset(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	models := []string{"a", "b", "c", "d"}
	rows := make([]Row, 200)
	for i := range rows {
		rows[i] = Row{"id": i, "model": models[r.Intn(len(models))], "retries": r.Intn(3)}
	}

	for trial := 0; trial < 20; trial++ {
		filters := map[string]ValueSet{
			"model":   NewValueSet(models[r.Intn(4)], models[r.Intn(4)]),
			"retries": NewValueSet(r.Intn(3)),
		}
		res := run(t, rows, NewColumnFilterStage(filters))
		assert.LessOrEqual(t, len(res.Rows), len(rows))
		for _, row := range res.Rows {
			assert.True(t, filters["model"].Has(row["model"]))
			assert.True(t, filters["retries"].Has(row["retries"]))
		}
	}
}

func TestColumnFilters_EmptyIsNoop(t *testing.T) {
	rows := exampleRows()
	res := run(t, rows, NewColumnFilterStage(map[string]ValueSet{"latency_ms": {}}))
	assert.Equal(t, ids(rows), ids(res.Rows))
	assert.Equal(t, "none", NewColumnFilterStage(nil).CacheKey())
}

func TestPagination(t *testing.T) {
	rows := make([]Row, 45)
	for i := range rows {
		rows[i] = Row{"id": i}
	}

	var all []any
	for page := 1; page <= 3; page++ {
		res := run(t, rows, NewPageStage(page, 20))
		assert.Equal(t, 3, res.TotalPages)
		assert.Equal(t, 45, res.FilteredCount)
		assert.Equal(t, page, res.Page)
		all = append(all, ids(res.Rows)...)
	}
	assert.Equal(t, ids(rows), all)

	lengths := []int{}
	for page := 1; page <= 3; page++ {
		lengths = append(lengths, len(run(t, rows, NewPageStage(page, 20)).Rows))
	}
	assert.Equal(t, []int{20, 20, 5}, lengths)
}

func TestPagination_Properties(t *testing.T) {
	for _, n := range []int{0, 1, 19, 20, 21, 99, 100, 101} {
		for _, size := range []int{20, 50, 100} {
			rows := make([]Row, n)
			for i := range rows {
				rows[i] = Row{"id": i}
			}
			pages := TotalPages(n, size)
			expectedPages := (n + size - 1) / size
			if expectedPages < 1 {
				expectedPages = 1
			}
			require.Equal(t, expectedPages, pages, "n=%d size=%d", n, size)

			var joined []any
			for p := 1; p <= pages; p++ {
				res := run(t, rows, NewPageStage(p, size))
				want := size
				if rem := n - (p-1)*size; rem < want {
					want = rem
				}
				assert.Len(t, res.Rows, want, "n=%d size=%d page=%d", n, size, p)
				joined = append(joined, ids(res.Rows)...)
			}
			if n == 0 {
				assert.Empty(t, joined)
			} else {
				assert.Equal(t, ids(rows), joined)
			}
		}
	}
}

func TestPagination_ClampsPage(t *testing.T) {
	rows := make([]Row, 45)
	for i := range rows {
		rows[i] = Row{"id": i}
	}
	res := run(t, rows, NewPageStage(9, 20))
	assert.Equal(t, 3, res.Page)
	assert.Len(t, res.Rows, 5)

	res = run(t, rows, NewPageStage(0, 20))
	assert.Equal(t, 1, res.Page)

	res = run(t, nil, NewPageStage(4, 20))
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 1, res.TotalPages)
	assert.Empty(t, res.Rows)
}

func TestPipeline_FixedOrder(t *testing.T) {
	rows := []Row{
		{"id": 1, "model": "a", "cost": 5.0},
		{"id": 2, "model": "b", "cost": 9.0},
		{"id": 3, "model": "a", "cost": 7.0},
		{"id": 4, "model": "a", "cost": 9.0},
	}

	p := NewPipelineBuilder("", nil, DefaultCacheConfig()).
		AddQuickFilter("top", stories.Extremum{Type: stories.Max, Field: "cost"}).
		AddColumnFilters(map[string]ValueSet{"model": NewValueSet("a")}).
		AddSort(SortConfig{Key: "cost", Direction: interfaces.SortDesc}, nil).
		AddPage(1, 20).
		Build()

	res, err := p.Execute(context.Background(), rows)
	require.NoError(t, err)
	// max is taken over the raw rows, then the column filter applies
	assert.Equal(t, []any{4}, ids(res.Rows))
	assert.Len(t, p.Stages(), 4)
}

func TestPipeline_MemoizesStages(t *testing.T) {
	rows := make([]Row, 45)
	for i := range rows {
		rows[i] = Row{"id": i, "cost": float64(i % 7)}
	}
	c := cache.NewCache(0)
	fp := Fingerprint(rows)

	build := func(page int) *Pipeline {
		return NewPipelineBuilder(fp, c, DefaultCacheConfig()).
			AddQuickFilter(stories.AllFilterID, nil).
			AddColumnFilters(nil).
			AddSort(SortConfig{Key: "cost", Direction: interfaces.SortDesc}, nil).
			AddPage(page, 20).
			Build()
	}

	first, err := build(1).Execute(context.Background(), rows)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	hitsBefore := c.GetCacheStats().Hits

	second, err := build(2).Execute(context.Background(), rows)
	require.NoError(t, err)
	assert.False(t, second.Cached)
	assert.Equal(t, 2, second.Page)
	// quick, filters and sort come from the memo on a page change
	assert.Equal(t, hitsBefore+3, c.GetCacheStats().Hits)

	again, err := build(1).Execute(context.Background(), rows)
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, ids(first.Rows), ids(again.Rows))
}

func TestPipeline_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipelineBuilder("", nil, DefaultCacheConfig()).AddPage(1, 20).Build()
	_, err := p.Execute(ctx, exampleRows())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildCacheKey_PrefixChain(t *testing.T) {
	quick := NewQuickFilterStage("all", nil)
	sortStage := NewSortStage(SortConfig{Key: "cost", Direction: interfaces.SortAsc}, nil)
	page := NewPageStage(2, 50)

	short := BuildCacheKey("fp", []PipelineStage{quick, sortStage})
	long := BuildCacheKey("fp", []PipelineStage{quick, sortStage, page})
	assert.Equal(t, `rows:fp|quick:"\"all\":\"all\""|sort:"\"cost\":asc"`, short)
	assert.True(t, cache.IsCacheKeyPrefix(short, long))
	assert.Equal(t, StagePage, cache.LastStageName(long))
}

func TestColumnFilterStage_KeysDoNotAlias(t *testing.T) {
	tests := []struct {
		name string
		a, b map[string]ValueSet
	}{
		{"member with separator", map[string]ValueSet{"tag": NewValueSet("a", "b")}, map[string]ValueSet{"tag": NewValueSet("a,s:b")}},
		{"column with separator", map[string]ValueSet{"a": NewValueSet("x"), "b": NewValueSet("y")}, map[string]ValueSet{"a=s:x;b": NewValueSet("y")}},
		{"pipe in member", map[string]ValueSet{"tag": NewValueSet("a|filters:x")}, map[string]ValueSet{"tag": NewValueSet("a")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka := BuildCacheKey("fp", []PipelineStage{NewColumnFilterStage(tt.a)})
			kb := BuildCacheKey("fp", []PipelineStage{NewColumnFilterStage(tt.b)})
			assert.NotEqual(t, ka, kb)
			assert.False(t, cache.IsCacheKeyPrefix(kb, ka))
		})
	}
}

func TestPipeline_SharedCacheKeepsFilterSetsApart(t *testing.T) {
	rows := []Row{{"tag": "a,s:b"}, {"tag": "a"}, {"tag": "b"}}
	c := cache.NewCache(0)
	fp := Fingerprint(rows)

	exec := func(set ValueSet) []Row {
		p := NewPipelineBuilder(fp, c, DefaultCacheConfig()).
			AddColumnFilters(map[string]ValueSet{"tag": set}).
			Build()
		res, err := p.Execute(context.Background(), rows)
		require.NoError(t, err)
		return res.Rows
	}

	assert.Equal(t, []Row{{"tag": "a"}, {"tag": "b"}}, exec(NewValueSet("a", "b")))
	assert.Equal(t, []Row{{"tag": "a,s:b"}}, exec(NewValueSet("a,s:b")))
	assert.Equal(t, []Row{{"tag": "a"}, {"tag": "b"}}, exec(NewValueSet("b", "a")))
}

func TestFingerprint(t *testing.T) {
	a := []Row{{"id": 1, "model": "x", "cost": 0.5}, {"id": 2, "model": "y"}}
	b := []Row{{"cost": 0.5, "model": "x", "id": 1}, {"model": "y", "id": 2}}
	reordered := []Row{a[1], a[0]}
	changed := []Row{{"id": 1, "model": "x", "cost": 0.6}, {"id": 2, "model": "y"}}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(reordered))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(changed))
	assert.NotEqual(t, Fingerprint(nil), Fingerprint(a))
}

func TestUniqueValues(t *testing.T) {
	rows := []Row{
		{"model": "gpt-4o", "cached": true, "retry_count": 2, "operation": ""},
		{"model": "claude", "cached": false, "retry_count": 0},
		{"model": "gpt-4o", "cached": true, "retry_count": 1.0},
		{"model": nil, "retry_count": 1},
		{"model": "Anthropic"},
	}
	cols := columns.Default()
	got := UniqueValues(rows, cols.Columns(), values.NewComparator(""))

	assert.Equal(t, []any{"Anthropic", "claude", "gpt-4o"}, got["model"])
	assert.Equal(t, []any{true}, got["cached"])
	assert.Equal(t, []any{1.0, 2}, got["retry_count"])
	assert.Empty(t, got["operation"])

	_, hasLatency := got["latency_ms"]
	assert.False(t, hasLatency, "non-filterable columns have no options")
}

func ExampleTotalPages() {
	fmt.Println(TotalPages(45, 20), TotalPages(0, 20))
	// Output: 3 1
}
