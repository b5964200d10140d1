package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ugbmonitor/internal/dataset"
)

func sampleTable() *dataset.Table {
	t := dataset.New("NO", "ULP", "PENOMORAN UGB BARU", "ALAMAT TERPASANG")
	t.Append([]string{"1", "ULP KOTA", "007", `Jl. "Raya", No 5`})
	t.Append([]string{"2", "", "UGB-2", "multi\nline"})
	return t
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable(), WriteOptions{}))

	want := "NO,ULP,PENOMORAN UGB BARU,ALAMAT TERPASANG\n" +
		"1,ULP KOTA,007,\"Jl. \"\"Raya\"\", No 5\"\n" +
		"2,,UGB-2,\"multi\nline\"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_BOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, dataset.New("A"), WriteOptions{BOMPrefix: true}))
	assert.Equal(t, "\xEF\xBB\xBFA\n", buf.String())
}

func TestReadCSV_RoundTripKeepsStrings(t *testing.T) {
	var buf bytes.Buffer
	in := sampleTable()
	require.NoError(t, WriteCSV(&buf, in, WriteOptions{BOMPrefix: true}))

	out, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, in.Columns, out.Columns)
	assert.Equal(t, in.Rows, out.Rows)
	assert.Equal(t, "007", out.Value(0, "PENOMORAN UGB BARU"))
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		columns []string
		rows    [][]string
	}{
		{name: "empty input", in: "", columns: nil, rows: nil},
		{name: "header only", in: "A,B\n", columns: []string{"A", "B"}, rows: [][]string{}},
		{name: "short record padded", in: "A,B\nx\n", columns: []string{"A", "B"}, rows: [][]string{{"x", ""}}},
		{name: "long record trimmed", in: "A\nx,y\n", columns: []string{"A"}, rows: [][]string{{"x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ReadCSV(strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.Equal(t, len(tt.columns), len(out.Columns))
			if tt.columns != nil {
				assert.Equal(t, tt.columns, out.Columns)
			}
			assert.Equal(t, len(tt.rows), out.Len())
			for i, r := range tt.rows {
				assert.Equal(t, r, out.Rows[i])
			}
		})
	}
}
