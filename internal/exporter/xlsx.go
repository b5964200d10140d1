package exporter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"ugbmonitor/internal/config"
	"ugbmonitor/internal/dataset"
	"ugbmonitor/internal/schema"
)

// FileName returns the download name of a recap exported at the given time.
func FileName(at time.Time) string {
	return config.ExportFilePrefix + at.Format(config.TimestampLayout) + ".xlsx"
}

// PrepareExport drops the internal STATUS_NORM column and inserts a dense
// NO column first when the table has none.
func PrepareExport(t *dataset.Table) *dataset.Table {
	out := t.DropColumns(schema.ColumnStatusNorm)
	if !out.Has(schema.ColumnNO) {
		out = out.InsertColumn(0, schema.ColumnNO, func(row int) string {
			return strconv.Itoa(row + 1)
		})
	}
	return out
}

// WriteWorkbook writes t as a single "Rekap UGB" worksheet.
func WriteWorkbook(w io.Writer, t *dataset.Table) error {
	t = PrepareExport(t)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", config.ExportSheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(config.ExportSheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = excelize.Cell{StyleID: bold, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range t.Rows {
		values := make([]interface{}, len(t.Columns))
		for j, c := range t.Columns {
			v := ""
			if j < len(r) {
				v = r[j]
			}
			values[j] = cellValue(c, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
