// Package components builds the view models the frontend renders for a table:
// header cells, rows, quick filter buttons, the filter bar, filter chips, the
// add-column picker and pagination.
package components

import (
	"observatory/app/columns"
)

// Sort direction glyphs shown next to a header label
const (
	GlyphDesc = "↓"
	GlyphAsc  = "↑"
)

// FilterOption is one entry of a column filter checkbox list
type FilterOption struct {
	// Key is the canonical value key sent back when the option is toggled
	Key      string `json:"key"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// HeaderCell is the view of one visible column header
type HeaderCell struct {
	Key               string            `json:"key"`
	Label             string            `json:"label"`
	Type              columns.FieldType `json:"type"`
	SortGlyph         string            `json:"sortGlyph"`
	Sortable          bool              `json:"sortable"`
	Filterable        bool              `json:"filterable"`
	FilterOpen        bool              `json:"filterOpen"`
	Options           []FilterOption    `json:"options,omitempty"`
	ActiveFilterCount int               `json:"activeFilterCount"`
	CanRemove         bool              `json:"canRemove"`

	// Width is the override in pixels, 0 for auto sizing
	Width      int  `json:"width"`
	MinWidth   int  `json:"minWidth"`
	Dragging   bool `json:"dragging"`
	DropTarget bool `json:"dropTarget"`
	Resizing   bool `json:"resizing"`
}

// Cell is one rendered table cell
type Cell struct {
	Key     string `json:"key"`
	Text    string `json:"text"`
	Class   string `json:"class,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// RowView is one rendered table row
type RowView struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Cells []Cell `json:"cells"`
}

// QuickFilterButton is one quick filter preset button
type QuickFilterButton struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Icon   string `json:"icon,omitempty"`
	Active bool   `json:"active"`
}

// FilterDropdown is one always-visible filter of the filter bar
type FilterDropdown struct {
	Key         string         `json:"key"`
	Label       string         `json:"label"`
	Options     []FilterOption `json:"options"`
	ActiveCount int            `json:"activeCount"`
	Open        bool           `json:"open"`
}

// FilterChip is one selected column filter value
type FilterChip struct {
	Column      string `json:"column"`
	ColumnLabel string `json:"columnLabel"`
	OptionKey   string `json:"optionKey"`
	Text        string `json:"text"`
}

// PickerItem is one column in the add-column picker
type PickerItem struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// PickerGroup is one category of the add-column picker
type PickerGroup struct {
	Category string       `json:"category"`
	Items    []PickerItem `json:"items"`
}

// PaginationView is the pagination footer
type PaginationView struct {
	Page          int    `json:"page"`
	TotalPages    int    `json:"totalPages"`
	PageSize      int    `json:"pageSize"`
	PageSizes     []int  `json:"pageSizes"`
	FilteredCount int    `json:"filteredCount"`
	TotalCount    int    `json:"totalCount"`
	From          int    `json:"from"`
	To            int    `json:"to"`
	RangeLabel    string `json:"rangeLabel"`
	HasPrev       bool   `json:"hasPrev"`
	HasNext       bool   `json:"hasNext"`
}

// TableView aggregates every view model of one table
type TableView struct {
	TableID      string              `json:"tableId"`
	StoryID      string              `json:"storyId"`
	Title        string              `json:"title"`
	Headers      []HeaderCell        `json:"headers"`
	Rows         []RowView           `json:"rows"`
	QuickFilters []QuickFilterButton `json:"quickFilters"`
	FilterBar    []FilterDropdown    `json:"filterBar"`
	Chips        []FilterChip        `json:"chips"`
	Picker       []PickerGroup       `json:"picker"`
	Pagination   PaginationView      `json:"pagination"`
	Cached       bool                `json:"cached"`
}
