package dataset

import (
	"strconv"
	"strings"
)

// Table is a column-ordered grid of text cells. Every row has exactly
// len(Columns) cells and empty cells are "" (there is no null marker).
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols, Rows: [][]string{}}
}

// Empty returns a table with no columns and no rows.
func Empty() *Table {
	return &Table{Columns: []string{}, Rows: [][]string{}}
}

// Len returns the number of rows. A nil table has zero rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// Index returns the position of the first column with the given name, or -1.
func (t *Table) Index(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// Value returns the cell of row at the named column, or "" when the column
// does not exist.
func (t *Table) Value(row int, name string) string {
	idx := t.Index(name)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return cell(t.Rows[row], idx)
}

// Record returns a row as a column-name keyed map. Duplicate column names
// keep the first occurrence.
func (t *Table) Record(row int) map[string]string {
	rec := make(map[string]string, len(t.Columns))
	for i, c := range t.Columns {
		if _, ok := rec[c]; ok {
			continue
		}
		rec[c] = cell(t.Rows[row], i)
	}
	return rec
}

// Append adds a row, padding or truncating it to the column count.
func (t *Table) Append(row []string) {
	t.Rows = append(t.Rows, fit(row, len(t.Columns)))
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	if t == nil {
		return Empty()
	}
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

// DropColumns returns a copy without the named columns. Unknown names are
// ignored.
func (t *Table) DropColumns(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	keep := make([]int, 0, len(t.Columns))
	for i, c := range t.Columns {
		if !drop[c] {
			keep = append(keep, i)
		}
	}
	return t.project(keep)
}

// MoveToEnd returns a copy with the named column moved last. The table is
// returned as is when the column is absent or already last.
func (t *Table) MoveToEnd(name string) *Table {
	idx := t.Index(name)
	if idx < 0 || idx == len(t.Columns)-1 {
		return t
	}
	positions := make([]int, 0, len(t.Columns))
	for i := range t.Columns {
		if i != idx {
			positions = append(positions, i)
		}
	}
	return t.project(append(positions, idx))
}

// Select returns a copy holding the columns at the given positions, in order.
func (t *Table) Select(positions []int) *Table {
	return t.project(positions)
}

func (t *Table) project(positions []int) *Table {
	out := &Table{
		Columns: make([]string, len(positions)),
		Rows:    make([][]string, len(t.Rows)),
	}
	for j, p := range positions {
		out.Columns[j] = t.Columns[p]
	}
	for i, r := range t.Rows {
		nr := make([]string, len(positions))
		for j, p := range positions {
			nr[j] = cell(r, p)
		}
		out.Rows[i] = nr
	}
	return out
}

// InsertColumn returns a copy with a new column at position pos whose cells
// are produced by fn(rowIndex).
func (t *Table) InsertColumn(pos int, name string, fn func(row int) string) *Table {
	if pos < 0 {
		pos = 0
	}
	if pos > len(t.Columns) {
		pos = len(t.Columns)
	}
	out := &Table{
		Columns: make([]string, 0, len(t.Columns)+1),
		Rows:    make([][]string, len(t.Rows)),
	}
	out.Columns = append(out.Columns, t.Columns[:pos]...)
	out.Columns = append(out.Columns, name)
	out.Columns = append(out.Columns, t.Columns[pos:]...)
	for i, r := range t.Rows {
		r = fit(r, len(t.Columns))
		nr := make([]string, 0, len(r)+1)
		nr = append(nr, r[:pos]...)
		nr = append(nr, fn(i))
		nr = append(nr, r[pos:]...)
		out.Rows[i] = nr
	}
	return out
}

// SetColumn returns a copy where the named column is set to value on every
// row, appending the column when it does not exist.
func (t *Table) SetColumn(name, value string) *Table {
	if idx := t.Index(name); idx >= 0 {
		out := t.Clone()
		for _, r := range out.Rows {
			r[idx] = value
		}
		return out
	}
	return t.InsertColumn(len(t.Columns), name, func(int) string { return value })
}

// Filter returns a copy holding the rows for which keep returns true.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	out := &Table{
		Columns: append([]string{}, t.Columns...),
		Rows:    make([][]string, 0, len(t.Rows)),
	}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, append([]string(nil), r...))
		}
	}
	return out
}

// Reorder returns a copy whose rows follow the given permutation of row
// indices.
func (t *Table) Reorder(order []int) *Table {
	out := &Table{
		Columns: append([]string{}, t.Columns...),
		Rows:    make([][]string, 0, len(order)),
	}
	for _, i := range order {
		out.Rows = append(out.Rows, append([]string(nil), t.Rows[i]...))
	}
	return out
}

// Renumber drops any existing sequence column and inserts a fresh dense
// 1..N sequence named column as the first column.
func (t *Table) Renumber(column string) *Table {
	base := t.DropColumns(column)
	return base.InsertColumn(0, column, func(i int) string {
		return strconv.Itoa(i + 1)
	})
}

// Concat stacks tables vertically. The resulting column set is the union of
// all columns in first-seen order; cells for columns a table lacks are "".
func Concat(tables ...*Table) *Table {
	var columns []string
	seen := make(map[string]bool)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}
	out := New(columns...)
	for _, t := range tables {
		if t == nil {
			continue
		}
		pos := make([]int, len(columns))
		for j, c := range columns {
			pos[j] = t.Index(c)
		}
		for _, r := range t.Rows {
			nr := make([]string, len(columns))
			for j, p := range pos {
				if p >= 0 {
					nr[j] = cell(r, p)
				}
			}
			out.Rows = append(out.Rows, nr)
		}
	}
	return out
}

// IsBlankRow reports whether every cell of the row is empty after trimming.
func IsBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func fit(row []string, n int) []string {
	out := make([]string, n)
	copy(out, row)
	return out
}
