package exporter

import (
	"strconv"

	"ugbmonitor/internal/schema"
)

// cellValue converts a table cell to the value written into a worksheet.
// The sequence column is written as a number, everything else as text so
// identifiers keep their leading zeros.
func cellValue(column, v string) interface{} {
	if column == schema.ColumnNO {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return v
}
