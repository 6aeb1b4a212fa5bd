package widget

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rivo/tview"
)

type fruitRow struct {
	Name  string `header:"Name"`
	Count int    `header:"Count" data-align:"right"`
	notes string
}

func (fr *fruitRow) Strings() []string {
	return []string{fr.Name, fmt.Sprintf("%d", fr.Count)}
}

func (fr *fruitRow) LessThan(other SortableRow, column int) bool {
	o := other.(*fruitRow)
	if column == 1 {
		return fr.Count < o.Count
	}
	return fr.Name < o.Name
}

func newFruitTable() *SortedTable {
	st := NewSortedTable().SetupFromType(fruitRow{})
	st.SetRowData("b", &fruitRow{Name: "banana", Count: 3})
	st.SetRowData("a", &fruitRow{Name: "apple", Count: 7})
	st.SetRowData("c", &fruitRow{Name: "cherry", Count: 1})
	return st
}

func cellText(st *SortedTable, row, col int) string {
	return st.table.GetCell(row, col).Text
}

func column(st *SortedTable, col int) []string {
	var out []string
	for row := 1; row <= len(st.Keys()); row++ {
		out = append(out, cellText(st, row, col))
	}
	return out
}

func checkColumn(t *testing.T, st *SortedTable, col int, expected ...string) {
	t.Helper()
	if diff := cmp.Diff(expected, column(st, col)); diff != "" {
		t.Errorf("column %d mismatch (-want +got):\n%s", col, diff)
	}
}

func TestSetupFromTypeHeaders(t *testing.T) {
	st := newFruitTable()
	if cellText(st, 0, 0) != "Name" || cellText(st, 0, 1) != "Count" {
		t.Errorf("headers = %q, %q", cellText(st, 0, 0), cellText(st, 0, 1))
	}
	if align := st.columnAlign[1]; align != tview.AlignRight {
		t.Errorf("Count column align = %d", align)
	}
	if _, ok := st.columnAlign[0]; ok {
		t.Error("Name column must keep the default alignment")
	}
}

func TestInsertionOrderUntilSorted(t *testing.T) {
	st := newFruitTable()
	st.Redraw()
	checkColumn(t, st, 0, "banana", "apple", "cherry")

	st.SortBy(1, false).Redraw()
	checkColumn(t, st, 1, "1", "3", "7")

	st.SortBy(0, true).Redraw()
	checkColumn(t, st, 0, "cherry", "banana", "apple")
}

func TestHeaderClickTogglesDirection(t *testing.T) {
	st := newFruitTable()
	click := st.setSortColumn(1)
	click()
	st.Redraw()
	checkColumn(t, st, 1, "1", "3", "7")
	click()
	st.Redraw()
	checkColumn(t, st, 1, "7", "3", "1")
}

func TestSetAndClearRows(t *testing.T) {
	st := newFruitTable()
	st.SetRowData("a", &fruitRow{Name: "apricot", Count: 2})
	if diff := cmp.Diff([]string{"b", "a", "c"}, st.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	st.Redraw()
	checkColumn(t, st, 0, "banana", "apricot", "cherry")

	st.Clear()
	st.SetRowData("d", &fruitRow{Name: "date", Count: 5})
	st.Redraw()
	checkColumn(t, st, 0, "date")
	if st.table.GetRowCount() != 2 {
		t.Errorf("row count = %d, want header + 1", st.table.GetRowCount())
	}
}

func TestSelectionCallbacks(t *testing.T) {
	st := newFruitTable()
	st.Redraw()
	var changed, chosen []string
	st.SetSelectionChangedFunc(func(key string) { changed = append(changed, key) })
	st.SetSelectedFunc(func(key string) { chosen = append(chosen, key) })

	st.Select("c")
	st.Select("c")
	st.Select("a")
	st.selected(1, 0)
	st.selected(0, 0)

	if diff := cmp.Diff([]string{"c", "a"}, changed); diff != "" {
		t.Errorf("changed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, chosen); diff != "" {
		t.Errorf("chosen mismatch (-want +got):\n%s", diff)
	}
	if st.GetSelection() != "a" {
		t.Errorf("selection = %q", st.GetSelection())
	}
}

func TestEscapesCellText(t *testing.T) {
	st := NewSortedTable().SetupFromType(&fruitRow{})
	st.SetRowData("x", &fruitRow{Name: "E [meV]"})
	st.Redraw()
	if got := cellText(st, 1, 0); got != tview.Escape("E [meV]") {
		t.Errorf("cell = %q", got)
	}
}
