package widget

import (
	"reflect"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// SortableRow is one row of a SortedTable. Strings returns the cell texts in
// column order.
type SortableRow interface {
	Strings() []string
	LessThan(other SortableRow, column int) bool
}

type tableRow struct {
	key  string
	data SortableRow
}

// SortedTable wraps a tview.Table with clickable column headers that sort the
// rows. Rows are addressed by key rather than by index.
type SortedTable struct {
	table       *tview.Table
	values      []tableRow
	curRow      int
	curKey      string
	sortColumn  int
	sortReverse bool
	columnAlign map[int]int

	selectionChangedFunc func(key string)
	selectedFunc         func(key string)
}

func NewSortedTable() *SortedTable {
	st := &SortedTable{
		table:       tview.NewTable(),
		columnAlign: make(map[int]int),
		sortColumn:  -1,
	}
	st.table.SetFixed(1, 0)
	st.table.InsertRow(0)
	st.table.SetSelectionChangedFunc(st.selectionChanged)
	st.table.SetSelectedFunc(st.selected)
	return st
}

// tview.Primitive, proxied to the inner table.

func (st *SortedTable) Draw(screen tcell.Screen) {
	st.Redraw()
	st.table.Draw(screen)
}

func (st *SortedTable) GetRect() (int, int, int, int) {
	return st.table.GetRect()
}

func (st *SortedTable) SetRect(x, y, width, height int) {
	st.table.SetRect(x, y, width, height)
}

func (st *SortedTable) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return st.table.InputHandler()
}

func (st *SortedTable) Focus(delegate func(p tview.Primitive)) {
	st.table.Focus(delegate)
}

func (st *SortedTable) HasFocus() bool {
	return st.table.HasFocus()
}

func (st *SortedTable) Blur() {
	st.table.Blur()
}

func (st *SortedTable) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
		fn := st.table.MouseHandler()
		consumed, capture = fn(action, event, func(p tview.Primitive) {
			if p == st.table {
				p = st
			}
			setFocus(p)
		})
		if capture == st.table {
			capture = st
		}
		return consumed, capture
	}
}

func (st *SortedTable) SetSelectable(selectable bool) *SortedTable {
	st.table.SetSelectable(selectable, false)
	return st
}

func (st *SortedTable) SetBorder(show bool) *SortedTable {
	st.table.SetBorder(show)
	return st
}

func (st *SortedTable) SetTitleAlign(align int) *SortedTable {
	st.table.SetTitleAlign(align)
	return st
}

func (st *SortedTable) SetTitle(title string) *SortedTable {
	st.table.SetTitle(title)
	return st
}

func (st *SortedTable) SetSelectedStyle(style tcell.Style) *SortedTable {
	st.table.SetSelectedStyle(style)
	return st
}

// SetSelectionChangedFunc is called with the key of the newly highlighted row.
func (st *SortedTable) SetSelectionChangedFunc(handler func(key string)) *SortedTable {
	st.selectionChangedFunc = handler
	return st
}

// SetSelectedFunc is called with the row key when Enter is pressed on a row.
func (st *SortedTable) SetSelectedFunc(handler func(key string)) *SortedTable {
	st.selectedFunc = handler
	return st
}

func (st *SortedTable) selectionChanged(row, column int) {
	if row <= 0 {
		if st.curRow > 0 {
			st.table.Select(st.curRow, 0)
		}
		return
	}
	if row > len(st.values) {
		return
	}
	st.curRow = row
	if st.curKey != st.values[row-1].key {
		st.curKey = st.values[row-1].key
		if st.selectionChangedFunc != nil {
			st.selectionChangedFunc(st.curKey)
		}
	}
}

func (st *SortedTable) selected(row, column int) {
	if row <= 0 || row > len(st.values) || st.selectedFunc == nil {
		return
	}
	st.selectedFunc(st.values[row-1].key)
}

// SetupFromType builds the header row from the `header` struct tags of a row
// type and right-aligns columns tagged `data-align:"right"`.
func (st *SortedTable) SetupFromType(row interface{}) *SortedTable {
	t := reflect.TypeOf(row)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var headers []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		header, ok := field.Tag.Lookup("header")
		if !ok {
			continue
		}
		if field.Tag.Get("data-align") == "right" {
			st.SetColumnAlign(len(headers), tview.AlignRight)
		}
		headers = append(headers, header)
	}
	return st.SetHeaders(headers...)
}

func (st *SortedTable) SetHeaders(headers ...string) *SortedTable {
	for colIndex := len(headers); colIndex < st.table.GetColumnCount(); colIndex++ {
		cell := st.table.GetCell(0, colIndex)
		cell.Text = ""
		cell.Clicked = nil
	}
	for c, h := range headers {
		cell := tview.NewTableCell(h)
		cell.NotSelectable = true
		cell.Clicked = st.setSortColumn(c)
		st.table.SetCell(0, c, cell)
	}
	return st
}

func (st *SortedTable) SetColumnAlign(col int, align int) *SortedTable {
	st.columnAlign[col] = align
	return st
}

func (st *SortedTable) Clear() *SortedTable {
	st.values = nil
	return st
}

func (st *SortedTable) Keys() []string {
	keys := make([]string, 0, len(st.values))
	for _, row := range st.values {
		keys = append(keys, row.key)
	}
	return keys
}

func (st *SortedTable) SetRowData(key string, data SortableRow) *SortedTable {
	for idx, dr := range st.values {
		if dr.key == key {
			st.values[idx].data = data
			return st
		}
	}
	st.values = append(st.values, tableRow{key, data})
	return st
}

// SortBy sorts on column, descending when reverse is set. A negative column
// keeps insertion order.
func (st *SortedTable) SortBy(column int, reverse bool) *SortedTable {
	st.sortColumn = column
	st.sortReverse = reverse
	return st
}

func (st *SortedTable) setSortColumn(col int) func() bool {
	return func() bool {
		if st.sortColumn == col {
			st.sortReverse = !st.sortReverse
		} else {
			st.sortColumn = col
			st.sortReverse = false
		}
		return true
	}
}

func (st *SortedTable) redrawHeaders() {
	for c := 0; c < st.table.GetColumnCount(); c++ {
		color := tcell.ColorYellow
		if c == st.sortColumn {
			color = tcell.ColorGreen
			if st.sortReverse {
				color = tcell.ColorRed
			}
		}
		st.table.GetCell(0, c).SetTextColor(color)
	}
}

func (st *SortedTable) GetSelection() string {
	if st.curRow > 0 && st.curRow <= len(st.values) {
		return st.values[st.curRow-1].key
	}
	return ""
}

func (st *SortedTable) Select(key string) *SortedTable {
	for row, value := range st.values {
		if value.key == key {
			st.table.Select(row+1, 0)
			break
		}
	}
	return st
}

func (st *SortedTable) sortData() {
	if st.sortColumn < 0 {
		return
	}
	sort.SliceStable(st.values, func(row1, row2 int) bool {
		row1Value := st.values[row1].data
		row2Value := st.values[row2].data
		if row2Value == nil {
			return true
		} else if row1Value == nil {
			return false
		}
		if st.sortReverse {
			return row2Value.LessThan(row1Value, st.sortColumn)
		}
		return row1Value.LessThan(row2Value, st.sortColumn)
	})
}

func (st *SortedTable) updateData() {
	for rowIndex, rowData := range st.values {
		strData := rowData.data.Strings()
		colIndex := 0
		for ; colIndex < len(strData); colIndex++ {
			cell := tview.NewTableCell(tview.Escape(strData[colIndex]))
			if align, ok := st.columnAlign[colIndex]; ok {
				cell.Align = align
			}
			st.table.SetCell(rowIndex+1, colIndex, cell)
		}
		for ; colIndex < st.table.GetColumnCount(); colIndex++ {
			st.table.SetCell(rowIndex+1, colIndex, tview.NewTableCell(""))
		}
	}
	for st.table.GetRowCount() > len(st.values)+1 {
		st.table.RemoveRow(st.table.GetRowCount() - 1)
	}
}

// Redraw sorts the rows and refreshes the cells, keeping the selected key
// highlighted.
func (st *SortedTable) Redraw() {
	st.redrawHeaders()
	selectedKey := st.GetSelection()
	st.sortData()
	st.updateData()
	st.Select(selectedKey)
}
