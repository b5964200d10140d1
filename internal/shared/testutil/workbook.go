package testutil

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet describes one worksheet of a fixture workbook. The first row is the
// header row.
type Sheet struct {
	Name string
	Rows [][]any
}

// StandardHeader returns a header row holding the canonical columns, led by
// the source sequence column.
func StandardHeader() []any {
	return []any{
		"NO", "UP3", "ULP", "KETERANGAN", "KAPASITAS", "STATUS", "NO SERI",
		"ALAMAT TERPASANG", "PENOMORAN UGB BARU", "KOORDINAT TAGGING",
		"MENGGUNAKAN TRAFO RETROFIT/NIAGA", "TANGGAL TERPASANG", "TANGGAL TERBONGKAR",
	}
}

// Cabinet holds the values of one data row in StandardHeader order.
type Cabinet struct {
	UP3, ULP, Note, Capacity, Status, Serial, Address string
	Identifier, Coordinate, Retrofit                   string
	Installed, Removed                                 string
}

// Row renders the cabinet as a StandardHeader-shaped row with sequence n.
func (c Cabinet) Row(n int) []any {
	return []any{
		n, c.UP3, c.ULP, c.Note, c.Capacity, c.Status, c.Serial, c.Address,
		c.Identifier, c.Coordinate, c.Retrofit, c.Installed, c.Removed,
	}
}

// BuildWorkbook writes the sheets into an in-memory xlsx and returns its
// bytes. The default "Sheet1" is removed unless a fixture sheet uses it.
func BuildWorkbook(t *testing.T, sheets ...Sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	keepDefault := false
	for i, s := range sheets {
		if s.Name == "Sheet1" {
			keepDefault = true
		} else if _, err := f.NewSheet(s.Name); err != nil {
			t.Fatalf("create sheet %q: %v", s.Name, err)
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			rowCopy := row
			if err := f.SetSheetRow(s.Name, cell, &rowCopy); err != nil {
				t.Fatalf("write sheet %q row %d: %v", s.Name, r, err)
			}
		}
		if i == 0 && s.Name != "Sheet1" {
			idx, err := f.GetSheetIndex(s.Name)
			if err == nil {
				f.SetActiveSheet(idx)
			}
		}
	}
	if !keepDefault && len(sheets) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			t.Fatalf("delete default sheet: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}
