// Package table implements the table engine: the owned table state, the pure
// transitions over it and the interaction sessions (drag, resize, filter
// popover) that feed those transitions.
package table

import (
	"errors"
	"slices"

	"observatory/app/interfaces"
	"observatory/app/query"
	"observatory/app/stories"
)

type Row = interfaces.Row
type SortConfig = interfaces.SortConfig
type ValueSet = query.ValueSet

var (
	ErrLastColumn         = errors.New("cannot remove the last visible column")
	ErrUnknownColumn      = errors.New("unknown column")
	ErrUnknownQuickFilter = errors.New("unknown quick filter")
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrRowOutOfRange      = errors.New("row index out of range")
	ErrClosed             = errors.New("table is closed")
)

// MinColumnWidth is the floor applied to every column width in pixels
const MinColumnWidth = 80

// PageSizes are the selectable page sizes
var PageSizes = []int{20, 50, 100}

// DefaultPageSize is the page size used when none is configured
const DefaultPageSize = 20

// State is the table state owned by one table instance
type State struct {
	VisibleColumns    []string            `json:"visibleColumns"`
	Sort              SortConfig          `json:"sort"`
	ActiveQuickFilter string              `json:"activeQuickFilter"`
	ColumnFilters     map[string]ValueSet `json:"columnFilters"`
	CurrentPage       int                 `json:"currentPage"`
	PageSize          int                 `json:"pageSize"`
	ColumnWidths      map[string]int      `json:"columnWidths"`
}

// NewState returns the initial state for a story
func NewState(story *stories.Story, pageSize int) State {
	if !ValidPageSize(pageSize) {
		pageSize = DefaultPageSize
	}
	return State{
		VisibleColumns:    slices.Clone(story.DefaultColumns),
		Sort:              story.DefaultSort,
		ActiveQuickFilter: stories.AllFilterID,
		ColumnFilters:     make(map[string]ValueSet),
		CurrentPage:       1,
		PageSize:          pageSize,
		ColumnWidths:      make(map[string]int),
	}
}

// Clone returns a deep copy of the state
func (s State) Clone() State {
	out := s
	out.VisibleColumns = slices.Clone(s.VisibleColumns)
	out.ColumnFilters = make(map[string]ValueSet, len(s.ColumnFilters))
	for k, set := range s.ColumnFilters {
		out.ColumnFilters[k] = set.Clone()
	}
	out.ColumnWidths = make(map[string]int, len(s.ColumnWidths))
	for k, w := range s.ColumnWidths {
		out.ColumnWidths[k] = w
	}
	return out
}

// IsVisible reports whether key is a visible column
func (s State) IsVisible(key string) bool {
	return slices.Contains(s.VisibleColumns, key)
}

// ActiveFilterCount returns the number of selected values across all column filters
func (s State) ActiveFilterCount() int {
	n := 0
	for _, set := range s.ColumnFilters {
		n += len(set)
	}
	return n
}

// ValidPageSize reports whether size is one of PageSizes
func ValidPageSize(size int) bool {
	return slices.Contains(PageSizes, size)
}

// ApplyQuickFilter makes id the active quick filter and returns to page 1
func ApplyQuickFilter(s State, id string) State {
	out := s.Clone()
	out.ActiveQuickFilter = id
	out.CurrentPage = 1
	return out
}

// ApplyColumnFilter selects or deselects one value of a column filter and
// returns to page 1. A set emptied by deselection is removed.
func ApplyColumnFilter(s State, key string, value any, selected bool) State {
	out := s.Clone()
	set, ok := out.ColumnFilters[key]
	if selected {
		if !ok {
			set = query.NewValueSet()
			out.ColumnFilters[key] = set
		}
		set.Add(value)
	} else if ok {
		set.Remove(value)
		if len(set) == 0 {
			delete(out.ColumnFilters, key)
		}
	}
	out.CurrentPage = 1
	return out
}

// ToggleColumnFilterValue flips the membership of value in the column filter of key
func ToggleColumnFilterValue(s State, key string, value any) State {
	selected := true
	if set, ok := s.ColumnFilters[key]; ok && set.Has(value) {
		selected = false
	}
	return ApplyColumnFilter(s, key, value, selected)
}

// ClearColumnFilter removes the filter on key and returns to page 1
func ClearColumnFilter(s State, key string) State {
	out := s.Clone()
	delete(out.ColumnFilters, key)
	out.CurrentPage = 1
	return out
}

// ClearAllFilters removes every column filter and returns to page 1
func ClearAllFilters(s State) State {
	out := s.Clone()
	out.ColumnFilters = make(map[string]ValueSet)
	out.CurrentPage = 1
	return out
}

// SetSort replaces the sort configuration
func SetSort(s State, cfg SortConfig) State {
	out := s.Clone()
	out.Sort = cfg
	return out
}

// ToggleSort cycles the sort of key through descending, ascending and unsorted.
// Clicking a column that is not the sort column starts at descending.
func ToggleSort(s State, key string) State {
	switch {
	case s.Sort.Key != key:
		return SetSort(s, SortConfig{Key: key, Direction: interfaces.SortDesc})
	case s.Sort.Direction == interfaces.SortDesc:
		return SetSort(s, SortConfig{Key: key, Direction: interfaces.SortAsc})
	default:
		return SetSort(s, SortConfig{})
	}
}

// SetPage moves to page. The upper bound is enforced when rows are derived.
func SetPage(s State, page int) State {
	out := s.Clone()
	if page < 1 {
		page = 1
	}
	out.CurrentPage = page
	return out
}

// ClampPage clamps the current page to [1, max(1, totalPages)]
func ClampPage(s State, totalPages int) State {
	page := query.ClampPage(s.CurrentPage, totalPages)
	if page == s.CurrentPage {
		return s
	}
	out := s.Clone()
	out.CurrentPage = page
	return out
}

// SetPageSize changes the page size to one of PageSizes and returns to page 1
func SetPageSize(s State, size int) (State, error) {
	if !ValidPageSize(size) {
		return s, ErrInvalidPageSize
	}
	out := s.Clone()
	out.PageSize = size
	out.CurrentPage = 1
	return out, nil
}

// AddColumn appends key to the visible columns unless it is already visible
func AddColumn(s State, key string) State {
	if s.IsVisible(key) {
		return s
	}
	out := s.Clone()
	out.VisibleColumns = append(out.VisibleColumns, key)
	return out
}

// RemoveColumn hides key and drops its column filter.
// Removing the last visible column is rejected and leaves the state unchanged.
func RemoveColumn(s State, key string) (State, error) {
	idx := slices.Index(s.VisibleColumns, key)
	if idx < 0 {
		return s, nil
	}
	if len(s.VisibleColumns) == 1 {
		return s, ErrLastColumn
	}
	out := s.Clone()
	out.VisibleColumns = slices.Delete(out.VisibleColumns, idx, idx+1)
	if _, filtered := out.ColumnFilters[key]; filtered {
		delete(out.ColumnFilters, key)
		out.CurrentPage = 1
	}
	return out, nil
}

// MoveColumn removes from and reinserts it at the original index of to.
// Every other column keeps its relative order. Unknown keys are a no-op.
func MoveColumn(s State, from, to string) State {
	if from == to {
		return s
	}
	fromIdx := slices.Index(s.VisibleColumns, from)
	toIdx := slices.Index(s.VisibleColumns, to)
	if fromIdx < 0 || toIdx < 0 {
		return s
	}
	out := s.Clone()
	out.VisibleColumns = slices.Delete(out.VisibleColumns, fromIdx, fromIdx+1)
	out.VisibleColumns = slices.Insert(out.VisibleColumns, toIdx, from)
	return out
}

// SetColumnWidth sets the width override of key, floored at MinColumnWidth
func SetColumnWidth(s State, key string, width int) State {
	out := s.Clone()
	out.ColumnWidths[key] = max(width, MinColumnWidth)
	return out
}
