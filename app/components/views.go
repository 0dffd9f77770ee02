package components

import (
	"fmt"

	"observatory/app/columns"
	"observatory/app/interfaces"
	"observatory/app/stories"
	"observatory/app/table"
	"observatory/app/values"
)

// Input is everything the view builders read. Builders never mutate it.
type Input struct {
	Columns *columns.Registry
	Story   *stories.Story
	Snap    table.Snapshot
	Cmp     *values.Comparator
}

// FromEngine reads a consistent Input from an engine
func FromEngine(e *table.Engine) Input {
	return Input{
		Columns: e.Columns(),
		Story:   e.Story(),
		Snap:    e.Snapshot(),
		Cmp:     e.Comparator(),
	}
}

func (in Input) comparator() *values.Comparator {
	if in.Cmp == nil {
		return values.NewComparator("")
	}
	return in.Cmp
}

func sortGlyph(cfg interfaces.SortConfig, key string) string {
	if cfg.Key != key {
		return ""
	}
	switch cfg.Direction {
	case interfaces.SortDesc:
		return GlyphDesc
	case interfaces.SortAsc:
		return GlyphAsc
	}
	return ""
}

// filterOptions lists the unique raw values of col with their selection.
// Selected values missing from the raw rows are kept so they can be deselected.
func filterOptions(in Input, col *columns.Column) []FilterOption {
	set := in.Snap.State.ColumnFilters[col.Key]
	unique := in.Snap.Unique[col.Key]

	out := make([]FilterOption, 0, len(unique))
	seen := make(map[string]bool, len(unique))
	for _, v := range unique {
		k := values.Key(v)
		seen[k] = true
		out = append(out, FilterOption{Key: k, Label: col.Format(v), Selected: set.Has(v)})
	}
	for _, v := range set.Values(in.comparator()) {
		k := values.Key(v)
		if seen[k] {
			continue
		}
		out = append(out, FilterOption{Key: k, Label: col.Format(v), Selected: true})
	}
	return out
}

// HeaderCells returns one header per visible column, in display order
func HeaderCells(in Input) []HeaderCell {
	state := in.Snap.State
	out := make([]HeaderCell, 0, len(state.VisibleColumns))
	for _, key := range state.VisibleColumns {
		col, ok := in.Columns.Get(key)
		if !ok {
			continue
		}
		cell := HeaderCell{
			Key:               key,
			Label:             col.Label,
			Type:              col.Type,
			SortGlyph:         sortGlyph(state.Sort, key),
			Sortable:          col.Sortable,
			Filterable:        col.Filterable,
			FilterOpen:        in.Snap.OpenFilter == key,
			ActiveFilterCount: len(state.ColumnFilters[key]),
			CanRemove:         len(state.VisibleColumns) > 1,
			Width:             state.ColumnWidths[key],
			MinWidth:          table.MinColumnWidth,
			Dragging:          in.Snap.DragSource == key,
			DropTarget:        in.Snap.DragTarget == key,
			Resizing:          in.Snap.Resizing == key,
		}
		if col.Filterable && cell.FilterOpen {
			cell.Options = filterOptions(in, col)
		}
		out = append(out, cell)
	}
	return out
}

func rowID(row interfaces.Row, index int) string {
	for _, key := range []string{columns.KeyCallID, "pattern"} {
		if v := row.Value(key); !values.IsNil(v) {
			return values.String(v)
		}
	}
	return fmt.Sprintf("row-%d", index)
}

// RenderRow renders the visible cells of one row
func RenderRow(in Input, row interfaces.Row, index int) RowView {
	visible := in.Snap.State.VisibleColumns
	view := RowView{Index: index, ID: rowID(row, index), Cells: make([]Cell, 0, len(visible))}
	for _, key := range visible {
		col, ok := in.Columns.Get(key)
		if !ok {
			continue
		}
		v := row.Value(key)
		view.Cells = append(view.Cells, Cell{
			Key:     key,
			Text:    col.Format(v),
			Class:   col.CellClass(v),
			Primary: in.Story != nil && key == in.Story.PrimaryMetric,
		})
	}
	return view
}

// Rows renders the rows of the last derived page
func Rows(in Input) []RowView {
	res := in.Snap.Result
	if res == nil {
		return []RowView{}
	}
	out := make([]RowView, len(res.Rows))
	for i, row := range res.Rows {
		out[i] = RenderRow(in, row, i)
	}
	return out
}

// QuickFilterButtons renders the story's quick filter presets
func QuickFilterButtons(in Input) []QuickFilterButton {
	out := make([]QuickFilterButton, len(in.Story.QuickFilters))
	for i, qf := range in.Story.QuickFilters {
		out[i] = QuickFilterButton{
			ID:     qf.ID,
			Label:  qf.Label,
			Icon:   qf.Icon,
			Active: qf.ID == in.Snap.State.ActiveQuickFilter,
		}
	}
	return out
}

// FilterBar renders the story's always-visible column filters
func FilterBar(in Input) []FilterDropdown {
	out := make([]FilterDropdown, 0, len(in.Story.FilterBarColumns))
	for _, key := range in.Story.FilterBarColumns {
		col, ok := in.Columns.Get(key)
		if !ok || !col.Filterable {
			continue
		}
		out = append(out, FilterDropdown{
			Key:         key,
			Label:       col.Label,
			Options:     filterOptions(in, col),
			ActiveCount: len(in.Snap.State.ColumnFilters[key]),
			Open:        in.Snap.OpenFilter == key,
		})
	}
	return out
}

// FilterChips returns one chip per selected filter value, in column
// registration order.
func FilterChips(in Input) []FilterChip {
	out := make([]FilterChip, 0, in.Snap.State.ActiveFilterCount())
	for _, col := range in.Columns.Columns() {
		set, ok := in.Snap.State.ColumnFilters[col.Key]
		if !ok {
			continue
		}
		for _, v := range set.Values(in.comparator()) {
			out = append(out, FilterChip{
				Column:      col.Key,
				ColumnLabel: col.Label,
				OptionKey:   values.Key(v),
				Text:        col.Format(v),
			})
		}
	}
	return out
}

// AddColumnPicker lists every registered column grouped by category.
// Visible columns are listed but disabled.
func AddColumnPicker(in Input) []PickerGroup {
	groups := in.Columns.ByCategory()
	out := make([]PickerGroup, len(groups))
	for i, g := range groups {
		items := make([]PickerItem, len(g.Columns))
		for j, col := range g.Columns {
			items[j] = PickerItem{
				Key:      col.Key,
				Label:    col.Label,
				Disabled: in.Snap.State.IsVisible(col.Key),
			}
		}
		out[i] = PickerGroup{Category: g.Name, Items: items}
	}
	return out
}

// Pagination renders the pagination footer
func Pagination(in Input) PaginationView {
	state := in.Snap.State
	view := PaginationView{
		Page:       state.CurrentPage,
		TotalPages: 1,
		PageSize:   state.PageSize,
		PageSizes:  append([]int(nil), table.PageSizes...),
		TotalCount: in.Snap.RowCount,
	}
	if res := in.Snap.Result; res != nil {
		view.Page = res.Page
		view.TotalPages = res.TotalPages
		view.FilteredCount = res.FilteredCount
		if len(res.Rows) > 0 {
			view.From = (res.Page-1)*state.PageSize + 1
			view.To = view.From + len(res.Rows) - 1
		}
	}
	view.HasPrev = view.Page > 1
	view.HasNext = view.Page < view.TotalPages
	view.RangeLabel = rangeLabel(view)
	return view
}

func rangeLabel(p PaginationView) string {
	if p.FilteredCount == 0 {
		return "No results"
	}
	return fmt.Sprintf("%s–%s of %s",
		columns.Integer.Format(p.From),
		columns.Integer.Format(p.To),
		columns.Integer.Format(p.FilteredCount))
}

// BuildTableView builds every view model of a table
func BuildTableView(tableID string, in Input) TableView {
	view := TableView{
		TableID:      tableID,
		StoryID:      in.Story.ID,
		Title:        in.Story.Title,
		Headers:      HeaderCells(in),
		Rows:         Rows(in),
		QuickFilters: QuickFilterButtons(in),
		FilterBar:    FilterBar(in),
		Chips:        FilterChips(in),
		Picker:       AddColumnPicker(in),
		Pagination:   Pagination(in),
	}
	if in.Snap.Result != nil {
		view.Cached = in.Snap.Result.Cached
	}
	return view
}
