package dataprocessing

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ugbmonitor/internal/errors"
	"ugbmonitor/internal/schema"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func header(extra ...string) []string {
	h := []string{"NO"}
	h = append(h, schema.CanonicalColumns()...)
	return append(h, extra...)
}

// row builds a data row in header() order; identifier and extra cells vary.
func row(no, up3, status, id string, extra ...string) []string {
	r := []string{no, up3, "ULP A", "", "100 KVA", status, "SN1", "Jl. Merdeka", id, "-5.39, 105.26", "", "2024-01-02", ""}
	return append(r, extra...)
}

func expectedColumns(extra ...string) []string {
	cols := schema.CanonicalColumns()
	cols = append(cols, extra...)
	return append(cols, schema.ColumnSourceSheet)
}

func TestExtractRows_StandardSheet(t *testing.T) {
	e := NewExtractor(nil, quietLogger())

	table, err := e.ExtractRows("UGB UP3 METRO", [][]string{
		header(),
		row("7", "  METRO ", "RUSAK", "UGB-01"),
		row("8", "METRO", "TERPASANG", "UGB-02"),
	})
	require.NoError(t, err)

	assert.Equal(t, expectedColumns(), table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "METRO", table.Value(0, schema.ColumnUP3), "cells are trimmed")
	assert.Equal(t, "UGB UP3 METRO", table.Value(1, schema.ColumnSourceSheet))
	assert.False(t, table.Has(schema.ColumnNO), "source NO column is never kept")
}

func TestExtractRows_HeaderReconciliation(t *testing.T) {
	e := NewExtractor(nil, quietLogger())

	h := header()
	h[1] = "UP 3"
	h[2] = "Unit Layanan Pelanggan"
	h[11] = "tgl. terpasang"

	table, err := e.ExtractRows("UGB UP3 KARANG", [][]string{h, row("1", "KARANG", "RUSAK", "UGB-9")})
	require.NoError(t, err)
	assert.Equal(t, expectedColumns(), table.Columns)
	assert.Equal(t, "KARANG", table.Value(0, schema.ColumnUP3))
}

func TestExtractRows_CollisionKeepsFirstNonBlank(t *testing.T) {
	e := NewExtractor(nil, quietLogger())

	h := header("KET")
	tests := []struct {
		name      string
		primary   string
		secondary string
		want      string
	}{
		{name: "primary blank", primary: "", secondary: "catatan A", want: "catatan A"},
		{name: "primary whitespace", primary: "   ", secondary: "catatan B", want: "catatan B"},
		{name: "primary wins", primary: "utama", secondary: "cadangan", want: "utama"},
		{name: "both blank", primary: "", secondary: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := row("1", "METRO", "RUSAK", "UGB-1", tt.secondary)
			r[3] = tt.primary

			table, err := e.ExtractRows("UGB UP3 METRO", [][]string{h, r})
			require.NoError(t, err)
			assert.Equal(t, expectedColumns(), table.Columns, "merged column is dropped")
			assert.Equal(t, tt.want, table.Value(0, schema.ColumnNote))
		})
	}
}

func TestExtractRows_MissingColumns(t *testing.T) {
	e := NewExtractor(nil, quietLogger())

	h := []string{"UP3", "ULP", "KETERANGAN", "KAPASITAS", "PENOMORAN UGB BARU", "KOORDINAT TAGGING",
		"ALAMAT TERPASANG", "TANGGAL TERPASANG", "TANGGAL TERBONGKAR"}

	_, err := e.ExtractRows("UGB UP3 KOTABUMI", [][]string{h})
	require.Error(t, err)

	var ae *apperrors.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperrors.ErrTypeMissingColumn, ae.Type)
	assert.Equal(t, "Sheet 'UGB UP3 KOTABUMI' kehilangan kolom: STATUS, NO SERI", ae.Message)
}

func TestExtractRows_OptionalColumnSynthesized(t *testing.T) {
	e := NewExtractor(nil, quietLogger())

	var h []string
	for _, c := range schema.CanonicalColumns() {
		if c != schema.ColumnRetrofit {
			h = append(h, c)
		}
	}
	r := []string{"PRINGSEWU", "ULP B", "", "50", "STAND BY", "SN", "Jl", "UGB-3", "-5,105", "2024-02-01", ""}

	table, err := e.ExtractRows("UGB UP3 PRINGSEWU", [][]string{h, r})
	require.NoError(t, err)
	assert.Equal(t, expectedColumns(), table.Columns)
	assert.Equal(t, "", table.Value(0, schema.ColumnRetrofit))
	assert.Equal(t, "2024-02-01", table.Value(0, schema.ColumnInstallDate))
}

func TestExtractRows_UnknownColumnsKeptBeforeSourceSheet(t *testing.T) {
	e := NewExtractor(nil, quietLogger())

	h := append([]string{"Foto Lapangan"}, header()...)
	r := append([]string{"foto.jpg"}, row("1", "METRO", "RUSAK", "UGB-1")...)

	table, err := e.ExtractRows("UGB UP3 METRO", [][]string{h, r})
	require.NoError(t, err)
	assert.Equal(t, expectedColumns("Foto Lapangan"), table.Columns, "unknown headers keep their raw spelling")
	assert.Equal(t, "foto.jpg", table.Value(0, "Foto Lapangan"))
}

func TestExtractRows_DuplicateAndEmptyRawHeaders(t *testing.T) {
	e := NewExtractor(nil, quietLogger())

	h := header("STATUS", "")
	r := row("1", "METRO", "RUSAK", "UGB-1", "second status", "stray")

	table, err := e.ExtractRows("UGB UP3 METRO", [][]string{h, r})
	require.NoError(t, err)
	assert.Equal(t, expectedColumns("STATUS.1", "Unnamed: 14"), table.Columns)
	assert.Equal(t, "RUSAK", table.Value(0, schema.ColumnStatus))
	assert.Equal(t, "second status", table.Value(0, "STATUS.1"))
}

func TestExtractRows_RepeatedRawHeadersGetSuffixes(t *testing.T) {
	tests := []struct {
		name      string
		extra     []string
		cells     []string
		wantExtra []string
		want      map[string]string
	}{
		{
			name:      "unknown header repeated",
			extra:     []string{"FOTO", "FOTO"},
			cells:     []string{"a.jpg", "b.jpg"},
			wantExtra: []string{"FOTO", "FOTO.1"},
			want:      map[string]string{"FOTO": "a.jpg", "FOTO.1": "b.jpg"},
		},
		{
			name:      "alias repeated",
			extra:     []string{"KET", "KET"},
			cells:     []string{"catatan 1", "catatan 2"},
			wantExtra: []string{"KET.1"},
			want:      map[string]string{schema.ColumnNote: "catatan 1", "KET.1": "catatan 2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(nil, quietLogger())

			h := header(tt.extra...)
			r := row("1", "METRO", "RUSAK", "UGB-1", tt.cells...)

			table, err := e.ExtractRows("UGB UP3 METRO", [][]string{h, r})
			require.NoError(t, err)
			assert.Equal(t, expectedColumns(tt.wantExtra...), table.Columns)
			for col, want := range tt.want {
				assert.Equal(t, want, table.Value(0, col), col)
			}
		})
	}
}

func TestExtractRows_RowFilters(t *testing.T) {
	e := NewExtractor(nil, quietLogger())

	table, err := e.ExtractRows("UGB UP3 METRO", [][]string{
		header(),
		row("1", "METRO", "RUSAK", "UGB-1"),
		{},
		{"", " ", "", "\t"},
		row("2", "METRO", "RUSAK", "   "),
		row("3", "METRO", "RUSAK", "UGB-3"),
	})
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "UGB-1", table.Value(0, schema.ColumnIdentifier))
	assert.Equal(t, "UGB-3", table.Value(1, schema.ColumnIdentifier))
}

func TestExtractRows_HeaderOnly(t *testing.T) {
	e := NewExtractor(nil, quietLogger())

	table, err := e.ExtractRows("UGB UP3 METRO", [][]string{header()})
	require.NoError(t, err)
	assert.True(t, table.IsEmpty())
	assert.Equal(t, expectedColumns(), table.Columns)
}

func TestExtractRows_CustomReconciler(t *testing.T) {
	table := schema.DefaultHeaderVariants()
	table[0].Variants = append(table[0].Variants, "UNIT INDUK")
	e := NewExtractor(schema.NewReconciler(table), quietLogger())

	h := header()
	h[1] = "Unit Induk"
	out, err := e.ExtractRows("UGB UP3 METRO", [][]string{h, row("1", "METRO", "RUSAK", "UGB-1")})
	require.NoError(t, err)
	assert.Equal(t, "METRO", out.Value(0, schema.ColumnUP3))
}

func TestIsDateFormat(t *testing.T) {
	tests := []struct {
		format string
		want   bool
	}{
		{"dd/mm/yyyy", true},
		{"[$-421]d mmmm yyyy", true},
		{"0.00", false},
		{`"kVA" 0`, false},
		{"@", false},
		{"[Red]0", false},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormat(tt.format))
		})
	}
}
