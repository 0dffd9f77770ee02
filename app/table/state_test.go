package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"observatory/app/interfaces"
)

func newTestState(cols ...string) State {
	return State{
		VisibleColumns:    cols,
		ActiveQuickFilter: "all",
		ColumnFilters:     map[string]ValueSet{},
		CurrentPage:       4,
		PageSize:          20,
		ColumnWidths:      map[string]int{},
	}
}

func TestToggleSort_Cycle(t *testing.T) {
	s := newTestState("a", "b")

	s = ToggleSort(s, "a")
	assert.Equal(t, SortConfig{Key: "a", Direction: interfaces.SortDesc}, s.Sort)

	s = ToggleSort(s, "a")
	assert.Equal(t, SortConfig{Key: "a", Direction: interfaces.SortAsc}, s.Sort)

	s = ToggleSort(s, "a")
	assert.False(t, s.Sort.IsSorted())

	s = ToggleSort(s, "a")
	assert.Equal(t, interfaces.SortDesc, s.Sort.Direction)

	s = ToggleSort(s, "b")
	assert.Equal(t, SortConfig{Key: "b", Direction: interfaces.SortDesc}, s.Sort)
}

func TestMoveColumn(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		expected []string
	}{
		{"forward", "A", "C", []string{"B", "C", "A", "D"}},
		{"backward", "D", "B", []string{"A", "D", "B", "C"}},
		{"to end", "A", "D", []string{"B", "C", "D", "A"}},
		{"adjacent", "B", "C", []string{"A", "C", "B", "D"}},
		{"same", "B", "B", []string{"A", "B", "C", "D"}},
		{"unknown", "X", "B", []string{"A", "B", "C", "D"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState("A", "B", "C", "D")
			out := MoveColumn(s, tt.from, tt.to)
			assert.Equal(t, tt.expected, out.VisibleColumns)
			assert.Equal(t, []string{"A", "B", "C", "D"}, s.VisibleColumns)
		})
	}
}

func TestRemoveColumn(t *testing.T) {
	s := newTestState("A", "B")
	s = ApplyColumnFilter(s, "B", "x", true)
	s = SetPage(s, 3)

	out, err := RemoveColumn(s, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, out.VisibleColumns)
	assert.NotContains(t, out.ColumnFilters, "B")
	assert.Equal(t, 1, out.CurrentPage)

	same, err := RemoveColumn(out, "A")
	assert.ErrorIs(t, err, ErrLastColumn)
	assert.Equal(t, out, same)

	same, err = RemoveColumn(out, "missing")
	require.NoError(t, err)
	assert.Equal(t, out, same)
}

func TestAddColumn_IsIdempotent(t *testing.T) {
	s := newTestState("A")
	s = AddColumn(s, "B")
	s = AddColumn(s, "B")
	assert.Equal(t, []string{"A", "B"}, s.VisibleColumns)
}

func TestSetColumnWidth_Floor(t *testing.T) {
	s := newTestState("A")
	assert.Equal(t, MinColumnWidth, SetColumnWidth(s, "A", 12).ColumnWidths["A"])
	assert.Equal(t, MinColumnWidth, SetColumnWidth(s, "A", -40).ColumnWidths["A"])
	assert.Equal(t, 240, SetColumnWidth(s, "A", 240).ColumnWidths["A"])
	assert.Empty(t, s.ColumnWidths)
}

func TestColumnFilterTransitions(t *testing.T) {
	s := newTestState("model")

	s = ApplyColumnFilter(s, "model", "a", true)
	assert.Equal(t, 1, s.CurrentPage)
	s = SetPage(s, 2)
	s = ToggleColumnFilterValue(s, "model", "b")
	assert.Equal(t, 1, s.CurrentPage)
	assert.Equal(t, 2, s.ActiveFilterCount())

	s = ToggleColumnFilterValue(s, "model", "a")
	s = ToggleColumnFilterValue(s, "model", "b")
	assert.NotContains(t, s.ColumnFilters, "model")

	s = ApplyColumnFilter(s, "model", "a", true)
	s = ApplyColumnFilter(s, "status", "error", true)
	s = ClearColumnFilter(s, "model")
	assert.Equal(t, []string{"status"}, keysOf(s.ColumnFilters))

	s = ClearAllFilters(s)
	assert.Empty(t, s.ColumnFilters)
}

func keysOf(m map[string]ValueSet) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestPageTransitions(t *testing.T) {
	s := newTestState("A")

	assert.Equal(t, 1, SetPage(s, -3).CurrentPage)
	assert.Equal(t, 2, ClampPage(s, 2).CurrentPage)
	assert.Equal(t, 1, ClampPage(s, 0).CurrentPage)
	assert.Equal(t, 4, ClampPage(s, 9).CurrentPage)

	out, err := SetPageSize(s, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, out.PageSize)
	assert.Equal(t, 1, out.CurrentPage)

	out, err = SetPageSize(s, 33)
	assert.ErrorIs(t, err, ErrInvalidPageSize)
	assert.Equal(t, s, out)
}

func TestApplyQuickFilter_ResetsPage(t *testing.T) {
	s := ApplyQuickFilter(newTestState("A"), "slow")
	assert.Equal(t, "slow", s.ActiveQuickFilter)
	assert.Equal(t, 1, s.CurrentPage)
}

func TestClone_IsDeep(t *testing.T) {
	s := newTestState("A", "B")
	s = ApplyColumnFilter(s, "A", 1, true)
	s = SetColumnWidth(s, "A", 100)

	c := s.Clone()
	c.VisibleColumns[0] = "Z"
	c.ColumnFilters["A"].Add(2)
	c.ColumnWidths["A"] = 300

	assert.Equal(t, "A", s.VisibleColumns[0])
	assert.Len(t, s.ColumnFilters["A"], 1)
	assert.Equal(t, 100, s.ColumnWidths["A"])
}
