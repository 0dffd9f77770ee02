package table

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"observatory/app/cache"
	"observatory/app/columns"
	"observatory/app/interfaces"
	"observatory/app/query"
	"observatory/app/stories"
	"observatory/app/values"
)

// Options configures an Engine
type Options struct {
	Cache       *cache.Cache
	CacheConfig query.CacheConfig
	Comparator  *values.Comparator
	Bus         interfaces.EventBus
	PageSize    int

	// OnRowClick receives the full row when a data row is clicked
	OnRowClick func(Row)

	// OnChange is called after an event listener changed the state outside of
	// a direct method call, so the host can re-render.
	OnChange func()
}

// Engine owns the state of one table instance and derives its visible rows.
// All methods are safe for concurrent use; event listener callbacks take the
// same lock as direct calls.
type Engine struct {
	mu sync.Mutex

	cols  *columns.Registry
	story *stories.Story
	opts  Options
	cmp   *values.Comparator

	state       State
	rows        []Row
	fingerprint string
	unique      map[string][]any
	result      *query.Result

	popover *popoverSession
	resize  *resizeSession
	drag    dragState
	closed  bool
}

// NewEngine creates the table for story. The story must validate against cols.
func NewEngine(cols *columns.Registry, story *stories.Story, opts Options) (*Engine, error) {
	if err := story.Validate(cols); err != nil {
		return nil, err
	}
	cmp := opts.Comparator
	if cmp == nil {
		cmp = values.NewComparator("")
	}
	if opts.Cache != nil && opts.CacheConfig == (query.CacheConfig{}) {
		opts.CacheConfig = query.DefaultCacheConfig()
	}

	e := &Engine{
		cols:  cols,
		story: story,
		opts:  opts,
		cmp:   cmp,
		state: NewState(story, opts.PageSize),
	}
	e.setRowsLocked(nil)
	return e, nil
}

// Story returns the story this table was created for
func (e *Engine) Story() *stories.Story {
	return e.story
}

// Columns returns the column registry
func (e *Engine) Columns() *columns.Registry {
	return e.cols
}

// State returns a copy of the current state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// RowCount returns the number of raw rows
func (e *Engine) RowCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.rows)
}

// Rows returns the raw rows backing the table
func (e *Engine) Rows() []Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rows
}

// Fingerprint returns the fingerprint of the current row set
func (e *Engine) Fingerprint() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fingerprint
}

// SetRows replaces the backing row set and returns to page 1.
// The engine does not modify rows.
func (e *Engine) SetRows(rows []Row) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setRowsLocked(rows)
	e.state = SetPage(e.state, 1)
}

func (e *Engine) setRowsLocked(rows []Row) {
	e.rows = rows
	e.unique = nil
	e.result = nil
	if e.opts.Cache != nil {
		e.fingerprint = query.Fingerprint(rows)
	} else {
		e.fingerprint = ""
	}
	slog.Debug("table rows set", "story", e.story.ID, "rows", len(rows), "fingerprint", e.fingerprint)
}

// Derive runs the query pipeline over the raw rows and returns the visible
// page. The current page is clamped to the derived page count.
func (e *Engine) Derive(ctx context.Context) (*query.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deriveLocked(ctx)
}

func (e *Engine) deriveLocked(ctx context.Context) (*query.Result, error) {
	if e.closed {
		return nil, ErrClosed
	}
	qf, ok := e.story.QuickFilter(e.state.ActiveQuickFilter)
	if !ok {
		qf = e.story.QuickFilters[0]
		e.state = ApplyQuickFilter(e.state, qf.ID)
	}

	p := query.NewPipelineBuilder(e.fingerprint, e.opts.Cache, e.opts.CacheConfig).
		AddQuickFilter(qf.ID, qf.Logic).
		AddColumnFilters(e.state.ColumnFilters).
		AddSort(e.state.Sort, e.cmp).
		AddPage(e.state.CurrentPage, e.state.PageSize).
		Build()

	res, err := p.Execute(ctx, e.rows)
	if err != nil {
		return nil, err
	}
	e.state = ClampPage(e.state, res.TotalPages)
	e.result = res
	return res, nil
}

// Filtered returns every row passing the active filters in sort order,
// without pagination. The state is not changed.
func (e *Engine) Filtered(ctx context.Context) ([]Row, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	qf, ok := e.story.QuickFilter(e.state.ActiveQuickFilter)
	if !ok {
		qf = e.story.QuickFilters[0]
	}

	p := query.NewPipelineBuilder(e.fingerprint, e.opts.Cache, e.opts.CacheConfig).
		AddQuickFilter(qf.ID, qf.Logic).
		AddColumnFilters(e.state.ColumnFilters).
		AddSort(e.state.Sort, e.cmp).
		Build()

	res, err := p.Execute(ctx, e.rows)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// Result returns the last derived result, or nil before the first Derive
func (e *Engine) Result() *query.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// UniqueValues returns the sorted distinct non-falsy values of every
// filterable column, computed from the raw rows.
func (e *Engine) UniqueValues() map[string][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.uniqueLocked()
}

func (e *Engine) uniqueLocked() map[string][]any {
	if e.unique == nil {
		e.unique = query.UniqueValues(e.rows, e.cols.Filterable(), e.cmp)
	}
	return e.unique
}

// update applies a pure transition under the lock
func (e *Engine) update(fn func(State) (State, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	next, err := fn(e.state)
	if err != nil {
		return err
	}
	e.state = next
	return nil
}

// SelectQuickFilter makes id the active quick filter
func (e *Engine) SelectQuickFilter(id string) error {
	if _, ok := e.story.QuickFilter(id); !ok {
		return fmt.Errorf("%q in story %q: %w", id, e.story.ID, ErrUnknownQuickFilter)
	}
	return e.update(func(s State) (State, error) {
		return ApplyQuickFilter(s, id), nil
	})
}

func (e *Engine) filterableColumn(key string) (*columns.Column, error) {
	col, ok := e.cols.Get(key)
	if !ok || !col.Filterable {
		return nil, fmt.Errorf("filter on %q: %w", key, ErrUnknownColumn)
	}
	return col, nil
}

// ToggleFilterValue flips the selection of value in the column filter of key
func (e *Engine) ToggleFilterValue(key string, value any) error {
	if _, err := e.filterableColumn(key); err != nil {
		return err
	}
	return e.update(func(s State) (State, error) {
		return ToggleColumnFilterValue(s, key, value), nil
	})
}

// ToggleFilterOption flips the selection of the filter option identified by
// its canonical value key, as rendered in the filter popover.
func (e *Engine) ToggleFilterOption(key, optionKey string) error {
	if _, err := e.filterableColumn(key); err != nil {
		return err
	}
	return e.update(func(s State) (State, error) {
		if set, ok := s.ColumnFilters[key]; ok {
			if v, selected := set[optionKey]; selected {
				return ApplyColumnFilter(s, key, v, false), nil
			}
		}
		for _, v := range e.uniqueLocked()[key] {
			if values.Key(v) == optionKey {
				return ApplyColumnFilter(s, key, v, true), nil
			}
		}
		return s, fmt.Errorf("no option %q for %q: %w", optionKey, key, ErrUnknownColumn)
	})
}

// ClearColumnFilter removes the filter on key
func (e *Engine) ClearColumnFilter(key string) error {
	return e.update(func(s State) (State, error) {
		return ClearColumnFilter(s, key), nil
	})
}

// ClearAllFilters removes every column filter
func (e *Engine) ClearAllFilters() error {
	return e.update(func(s State) (State, error) {
		return ClearAllFilters(s), nil
	})
}

// ToggleSort cycles the sort on key
func (e *Engine) ToggleSort(key string) error {
	col, ok := e.cols.Get(key)
	if !ok || !col.Sortable {
		return fmt.Errorf("sort on %q: %w", key, ErrUnknownColumn)
	}
	return e.update(func(s State) (State, error) {
		return ToggleSort(s, key), nil
	})
}

// SetSort replaces the sort configuration
func (e *Engine) SetSort(cfg SortConfig) error {
	if cfg.Key != "" && !e.cols.Has(cfg.Key) {
		return fmt.Errorf("sort on %q: %w", cfg.Key, ErrUnknownColumn)
	}
	return e.update(func(s State) (State, error) {
		return SetSort(s, cfg), nil
	})
}

// SetPage moves to page, clamped when rows are next derived
func (e *Engine) SetPage(page int) error {
	return e.update(func(s State) (State, error) {
		return SetPage(s, page), nil
	})
}

// NextPage moves one page forward, clamped to the last derived page
func (e *Engine) NextPage() error {
	return e.update(func(s State) (State, error) {
		next := SetPage(s, s.CurrentPage+1)
		if e.result != nil {
			next = ClampPage(next, e.result.TotalPages)
		}
		return next, nil
	})
}

// PrevPage moves one page back, never below page 1
func (e *Engine) PrevPage() error {
	return e.update(func(s State) (State, error) {
		return SetPage(s, s.CurrentPage-1), nil
	})
}

// SetPageSize changes the page size to one of PageSizes
func (e *Engine) SetPageSize(size int) error {
	return e.update(func(s State) (State, error) {
		next, err := SetPageSize(s, size)
		if err != nil {
			return s, fmt.Errorf("%d: %w", size, err)
		}
		return next, nil
	})
}

// AddColumn makes a registered column visible
func (e *Engine) AddColumn(key string) error {
	if !e.cols.Has(key) {
		return fmt.Errorf("add %q: %w", key, ErrUnknownColumn)
	}
	return e.update(func(s State) (State, error) {
		return AddColumn(s, key), nil
	})
}

// RemoveColumn hides a column. The last visible column cannot be removed.
func (e *Engine) RemoveColumn(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	next, err := RemoveColumn(e.state, key)
	if err != nil {
		return err
	}
	e.state = next
	if e.popover != nil && e.popover.key == key && !e.isFilterBarColumn(key) {
		e.closeFilterLocked()
	}
	if e.resize != nil && e.resize.key == key {
		e.endResizeLocked()
	}
	return nil
}

func (e *Engine) isFilterBarColumn(key string) bool {
	for _, k := range e.story.FilterBarColumns {
		if k == key {
			return true
		}
	}
	return false
}

// ClickRow reports the full row at index of the current page to OnRowClick
func (e *Engine) ClickRow(index int) (Row, error) {
	e.mu.Lock()
	if e.result == nil || index < 0 || index >= len(e.result.Rows) {
		e.mu.Unlock()
		return nil, fmt.Errorf("row %d: %w", index, ErrRowOutOfRange)
	}
	row := e.result.Rows[index]
	cb := e.opts.OnRowClick
	e.mu.Unlock()

	if cb != nil {
		cb(row)
	}
	return row, nil
}

// Close ends every interaction session and releases its listeners.
// Close is idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closeFilterLocked()
	e.endResizeLocked()
	e.drag = dragState{}
	e.closed = true
	slog.Debug("table closed", "story", e.story.ID)
}

// notify calls OnChange outside the lock
func (e *Engine) notify() {
	if e.opts.OnChange != nil {
		e.opts.OnChange()
	}
}

// Snapshot is a consistent read of everything the presentation layer renders
type Snapshot struct {
	State      State
	Result     *query.Result
	Unique     map[string][]any
	RowCount   int
	OpenFilter string
	Resizing   string
	DragSource string
	DragTarget string
}

// Snapshot returns the current state, the last derived result and the
// transient session state under one lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{
		State:      e.state.Clone(),
		Result:     e.result,
		Unique:     e.uniqueLocked(),
		RowCount:   len(e.rows),
		DragSource: e.drag.source,
		DragTarget: e.drag.target,
	}
	if e.popover != nil {
		snap.OpenFilter = e.popover.key
	}
	if e.resize != nil {
		snap.Resizing = e.resize.key
	}
	return snap
}

// Comparator returns the comparator used for sorting and option order
func (e *Engine) Comparator() *values.Comparator {
	return e.cmp
}
