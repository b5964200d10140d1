package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Table {
	t := New("A", "B", "C")
	t.Append([]string{"1", "x", "p"})
	t.Append([]string{"2", "y"})
	t.Append([]string{"3", "z", "r", "extra"})
	return t
}

func TestTable_AppendFitsRowWidth(t *testing.T) {
	tbl := sample()
	require.Len(t, tbl.Rows, 3)
	for _, r := range tbl.Rows {
		assert.Len(t, r, 3)
	}
	assert.Equal(t, "", tbl.Rows[1][2])
	assert.Equal(t, "r", tbl.Rows[2][2])
}

func TestTable_ValueAndRecord(t *testing.T) {
	tbl := sample()
	assert.Equal(t, "y", tbl.Value(1, "B"))
	assert.Equal(t, "", tbl.Value(1, "MISSING"))
	assert.Equal(t, "", tbl.Value(10, "A"))

	rec := tbl.Record(0)
	assert.Equal(t, map[string]string{"A": "1", "B": "x", "C": "p"}, rec)
}

func TestTable_DropColumns(t *testing.T) {
	tbl := sample()
	out := tbl.DropColumns("B", "NOPE")

	assert.Equal(t, []string{"A", "C"}, out.Columns)
	assert.Equal(t, []string{"1", "p"}, out.Rows[0])
	// source untouched
	assert.Equal(t, []string{"A", "B", "C"}, tbl.Columns)
}

func TestTable_MoveToEnd(t *testing.T) {
	tests := []struct {
		name string
		move string
		want []string
	}{
		{name: "middle column", move: "A", want: []string{"B", "C", "A"}},
		{name: "already last", move: "C", want: []string{"A", "B", "C"}},
		{name: "absent", move: "NOPE", want: []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := sample()
			out := tbl.MoveToEnd(tt.move)
			assert.Equal(t, tt.want, out.Columns)
			for i, c := range out.Columns {
				assert.Equal(t, tbl.Value(0, c), out.Rows[0][i])
			}
			assert.Equal(t, []string{"A", "B", "C"}, tbl.Columns)
		})
	}
}

func TestTable_InsertColumn(t *testing.T) {
	tbl := sample()
	out := tbl.InsertColumn(1, "NEW", func(i int) string { return string(rune('a' + i)) })

	assert.Equal(t, []string{"A", "NEW", "B", "C"}, out.Columns)
	assert.Equal(t, []string{"2", "b", "y", ""}, out.Rows[1])
}

func TestTable_SetColumn(t *testing.T) {
	tbl := sample()

	appended := tbl.SetColumn("D", "k")
	assert.Equal(t, []string{"A", "B", "C", "D"}, appended.Columns)
	assert.Equal(t, "k", appended.Value(2, "D"))

	overwritten := tbl.SetColumn("B", "q")
	assert.Equal(t, "q", overwritten.Value(0, "B"))
	assert.Equal(t, "x", tbl.Value(0, "B"))
}

func TestTable_Renumber(t *testing.T) {
	tbl := New("NO", "ID")
	tbl.Append([]string{"9", "a"})
	tbl.Append([]string{"9", "b"})
	tbl.Append([]string{"", "c"})

	out := tbl.Renumber("NO")

	assert.Equal(t, []string{"NO", "ID"}, out.Columns)
	assert.Equal(t, "1", out.Rows[0][0])
	assert.Equal(t, "2", out.Rows[1][0])
	assert.Equal(t, "3", out.Rows[2][0])
	assert.Equal(t, "c", out.Rows[2][1])
}

func TestTable_RenumberMovesSequenceToFront(t *testing.T) {
	tbl := New("ID", "NO")
	tbl.Append([]string{"a", "5"})

	out := tbl.Renumber("NO")
	assert.Equal(t, []string{"NO", "ID"}, out.Columns)
	assert.Equal(t, []string{"1", "a"}, out.Rows[0])
}

func TestConcat_UnionsColumns(t *testing.T) {
	a := New("X", "Y")
	a.Append([]string{"1", "2"})
	b := New("Y", "Z")
	b.Append([]string{"3", "4"})

	out := Concat(a, nil, b)

	assert.Equal(t, []string{"X", "Y", "Z"}, out.Columns)
	assert.Equal(t, [][]string{{"1", "2", ""}, {"", "3", "4"}}, out.Rows)
}

func TestTable_FilterAndReorder(t *testing.T) {
	tbl := sample()
	f := tbl.Filter(func(r []string) bool { return r[0] != "2" })
	assert.Equal(t, 2, f.Len())

	r := tbl.Reorder([]int{2, 0})
	assert.Equal(t, "3", r.Rows[0][0])
	assert.Equal(t, "1", r.Rows[1][0])
}

func TestTable_NilSafety(t *testing.T) {
	var tbl *Table
	assert.Equal(t, 0, tbl.Len())
	assert.True(t, tbl.IsEmpty())
	assert.Equal(t, -1, tbl.Index("A"))
	assert.NotNil(t, tbl.Clone())
}

func TestIsBlankRow(t *testing.T) {
	assert.True(t, IsBlankRow([]string{"", "  ", "\t"}))
	assert.False(t, IsBlankRow([]string{"", "a"}))
	assert.True(t, IsBlankRow(nil))
}
