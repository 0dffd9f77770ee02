package query

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"observatory/app/interfaces"
	"observatory/app/stories"
	"observatory/app/values"
)

// QuickFilterStage applies the logic of the active quick filter
type QuickFilterStage struct {
	id    string
	logic stories.Logic
}

// NewQuickFilterStage creates a quick filter stage. A nil logic passes every row.
func NewQuickFilterStage(id string, logic stories.Logic) *QuickFilterStage {
	return &QuickFilterStage{id: id, logic: logic}
}

// Execute implements PipelineStage
func (q *QuickFilterStage) Execute(ctx context.Context, input *StageResult) (*StageResult, error) {
	return &StageResult{Rows: stories.Apply(q.logic, input.Rows)}, nil
}

func (q *QuickFilterStage) CanCache() bool { return true }
func (q *QuickFilterStage) Name() string   { return StageQuickFilter }

// CacheKey implements PipelineStage
func (q *QuickFilterStage) CacheKey() string {
	return strconv.Quote(q.id) + ":" + strconv.Quote(stories.LogicKey(q.logic))
}

// ColumnFilterStage keeps rows whose value is a member of every active column filter.
// Filters on different columns combine by AND, values within one column by OR.
type ColumnFilterStage struct {
	filters map[string]ValueSet
	keys    []string
}

// NewColumnFilterStage creates a column filter stage. Empty sets are ignored.
func NewColumnFilterStage(filters map[string]ValueSet) *ColumnFilterStage {
	s := &ColumnFilterStage{filters: make(map[string]ValueSet, len(filters))}
	for k, set := range filters {
		if len(set) == 0 {
			continue
		}
		s.filters[k] = set
		s.keys = append(s.keys, k)
	}
	sort.Strings(s.keys)
	return s
}

// Execute implements PipelineStage
func (f *ColumnFilterStage) Execute(ctx context.Context, input *StageResult) (*StageResult, error) {
	if len(f.keys) == 0 {
		return &StageResult{Rows: input.Rows}, nil
	}

	out := make([]Row, 0, len(input.Rows))
	for i, row := range input.Rows {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if f.Match(row) {
			out = append(out, row)
		}
	}
	return &StageResult{Rows: out}, nil
}

// Match reports whether row satisfies every column filter
func (f *ColumnFilterStage) Match(row Row) bool {
	for _, k := range f.keys {
		if !f.filters[k].Has(row.Value(k)) {
			return false
		}
	}
	return true
}

func (f *ColumnFilterStage) CanCache() bool { return true }
func (f *ColumnFilterStage) Name() string   { return StageColumnFilter }

// CacheKey implements PipelineStage
func (f *ColumnFilterStage) CacheKey() string {
	if len(f.keys) == 0 {
		return "none"
	}
	parts := make([]string, len(f.keys))
	for i, k := range f.keys {
		parts[i] = strconv.Quote(k) + "=" + f.filters[k].Key()
	}
	return strings.Join(parts, ";")
}

// SortStage stable-sorts rows by one column.
// Missing values sort last in both directions.
type SortStage struct {
	sort SortConfig
	cmp  *values.Comparator
}

// NewSortStage creates a sort stage. An empty key keeps input order.
func NewSortStage(cfg SortConfig, cmp *values.Comparator) *SortStage {
	if cmp == nil {
		cmp = values.NewComparator("")
	}
	return &SortStage{sort: cfg, cmp: cmp}
}

// Execute implements PipelineStage
func (s *SortStage) Execute(ctx context.Context, input *StageResult) (*StageResult, error) {
	if !s.sort.IsSorted() {
		return &StageResult{Rows: input.Rows}, nil
	}

	// Copy so cached inputs keep their order
	rows := make([]Row, len(input.Rows))
	copy(rows, input.Rows)

	key := s.sort.Key
	desc := s.sort.Direction == interfaces.SortDesc
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Value(key), rows[j].Value(key)
		aNil, bNil := values.IsNil(a), values.IsNil(b)
		switch {
		case aNil && bNil:
			return false
		case aNil:
			return false
		case bNil:
			return true
		}
		c := s.cmp.Compare(a, b)
		if desc {
			c = -c
		}
		return c < 0
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &StageResult{Rows: rows}, nil
}

func (s *SortStage) CanCache() bool { return true }
func (s *SortStage) Name() string   { return StageSort }

// CacheKey implements PipelineStage
func (s *SortStage) CacheKey() string {
	if !s.sort.IsSorted() {
		return "none"
	}
	return fmt.Sprintf("%q:%s", s.sort.Key, s.sort.Direction)
}

// PageStage slices out one page and fills in the pagination metadata.
// The requested page is clamped to [1, TotalPages].
type PageStage struct {
	page     int
	pageSize int
}

// NewPageStage creates a page stage
func NewPageStage(page, pageSize int) *PageStage {
	if pageSize < 1 {
		pageSize = 1
	}
	return &PageStage{page: page, pageSize: pageSize}
}

// Execute implements PipelineStage
func (p *PageStage) Execute(ctx context.Context, input *StageResult) (*StageResult, error) {
	n := len(input.Rows)
	totalPages := TotalPages(n, p.pageSize)
	page := ClampPage(p.page, totalPages)

	start := (page - 1) * p.pageSize
	end := start + p.pageSize
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}

	return &StageResult{
		Rows:          input.Rows[start:end:end],
		FilteredCount: n,
		TotalPages:    totalPages,
		Page:          page,
		PageSize:      p.pageSize,
		Paged:         true,
	}, nil
}

func (p *PageStage) CanCache() bool { return true }
func (p *PageStage) Name() string   { return StagePage }

// CacheKey implements PipelineStage
func (p *PageStage) CacheKey() string {
	return fmt.Sprintf("%d:%d", p.page, p.pageSize)
}

// TotalPages returns ceil(n/pageSize), at least 1
func TotalPages(n, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	pages := (n + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage clamps page to [1, max(1, totalPages)]
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}
