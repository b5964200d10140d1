package dataprocessing

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"ugbmonitor/internal/dataset"
	apperrors "ugbmonitor/internal/errors"
	"ugbmonitor/internal/schema"
)

// Extractor turns one allow-listed worksheet into a cleaned table.
type Extractor struct {
	reconciler *schema.Reconciler
	logger     *slog.Logger
}

// NewExtractor creates an extractor. A nil reconciler uses the default
// header table.
func NewExtractor(reconciler *schema.Reconciler, logger *slog.Logger) *Extractor {
	if reconciler == nil {
		reconciler = schema.DefaultReconciler()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		reconciler: reconciler,
		logger:     logger.With("component", "extractor"),
	}
}

// ValidSheets returns the workbook's sheets that are on the allow-list, in
// workbook order.
func ValidSheets(f *excelize.File) []string {
	var out []string
	for _, name := range f.GetSheetList() {
		if schema.IsValidSheet(name) {
			out = append(out, name)
		}
	}
	return out
}

// ExtractSheet reads sheet from f. Cells are read as text; date-formatted
// numeric cells are rendered with CellDateLayout.
func (e *Extractor) ExtractSheet(f *excelize.File, sheet string) (*dataset.Table, error) {
	rows, err := readSheet(f, sheet)
	if err != nil {
		return nil, apperrors.NewSheetError(sheet, err)
	}
	table, err := e.ExtractRows(sheet, rows)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("sheet extracted",
		slog.String("sheet", sheet),
		slog.Int("source_rows", max(len(rows)-1, 0)),
		slog.Int("rows", table.Len()))
	return table, nil
}

// ExtractRows applies the extraction steps to a header row followed by data
// rows. The first row is the header.
func (e *Extractor) ExtractRows(sheet string, rows [][]string) (*dataset.Table, error) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	raw := e.headerNames(header, width)

	columns := make([]string, width)
	for i, h := range raw {
		columns[i] = e.reconciler.ColumnName(h)
	}

	table := dataset.New(columns...)
	for _, r := range rows[min(1, len(rows)):] {
		table.Append(r)
	}

	table = mergeDuplicateColumns(table)
	table = table.DropColumns(schema.ColumnNO)

	var missing []string
	for _, c := range schema.CanonicalColumns() {
		if !table.Has(c) && !schema.IsOptional(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewMissingColumnError(sheet, missing)
	}
	for _, c := range schema.OptionalColumns() {
		if !table.Has(c) {
			table = table.SetColumn(c, "")
		}
	}

	table = reorderColumns(table)
	for _, r := range table.Rows {
		for i := range r {
			r[i] = strings.TrimSpace(r[i])
		}
	}
	table = table.Filter(func(r []string) bool { return !dataset.IsBlankRow(r) })
	table = table.SetColumn(schema.ColumnSourceSheet, sheet)
	return FilterIdentified(table), nil
}

// headerNames returns one raw name per column. Empty header cells become
// "Unnamed: <i>" and repeated raw names get ".1", ".2" suffixes so only
// different spellings of one column can collide after reconciliation.
func (e *Extractor) headerNames(header []string, width int) []string {
	names := make([]string, width)
	taken := make(map[string]bool, width)
	counts := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if taken[name] {
			base := name
			for taken[name] {
				counts[base]++
				name = fmt.Sprintf("%s.%d", base, counts[base])
			}
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

// mergeDuplicateColumns folds columns sharing a name into the first one,
// keeping the first non-blank value per row.
func mergeDuplicateColumns(t *dataset.Table) *dataset.Table {
	first := make(map[string]int, len(t.Columns))
	var keep []int
	var merged bool
	out := t.Clone()
	for i, c := range t.Columns {
		target, seen := first[c]
		if !seen {
			first[c] = i
			keep = append(keep, i)
			continue
		}
		merged = true
		for _, r := range out.Rows {
			if strings.TrimSpace(r[target]) == "" {
				r[target] = r[i]
			}
		}
	}
	if !merged {
		return out
	}
	return out.Select(keep)
}

// reorderColumns puts canonical columns first in canonical order, followed
// by the remaining columns in source order.
func reorderColumns(t *dataset.Table) *dataset.Table {
	order := make([]int, 0, len(t.Columns))
	for _, c := range schema.CanonicalColumns() {
		if idx := t.Index(c); idx >= 0 {
			order = append(order, idx)
		}
	}
	for i, c := range t.Columns {
		if !schema.IsCanonical(c) {
			order = append(order, i)
		}
	}
	return t.Select(order)
}

// FilterIdentified keeps rows whose identifier is not blank. Tables without
// the identifier column are returned unchanged.
func FilterIdentified(t *dataset.Table) *dataset.Table {
	idx := t.Index(schema.ColumnIdentifier)
	if idx < 0 {
		return t
	}
	return t.Filter(func(r []string) bool {
		return idx < len(r) && strings.TrimSpace(r[idx]) != ""
	})
}

func readSheet(f *excelize.File, sheet string) ([][]string, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	dates := make(map[int]bool)
	for i, r := range rows {
		for j, v := range r {
			if v == "" {
				continue
			}
			serial, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			styleID, err := f.GetCellStyle(sheet, axis)
			if err != nil || styleID == 0 {
				continue
			}
			isDate, ok := dates[styleID]
			if !ok {
				isDate = isDateStyle(f, styleID)
				dates[styleID] = isDate
			}
			if !isDate {
				continue
			}
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				r[j] = t.Format(CellDateLayout)
			}
		}
	}
	return rows, nil
}

func isDateStyle(f *excelize.File, styleID int) bool {
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormat(*style.CustomNumFmt)
	}
	switch {
	case style.NumFmt >= 14 && style.NumFmt <= 22,
		style.NumFmt >= 45 && style.NumFmt <= 47:
		return true
	}
	return false
}

// isDateFormat reports whether a custom number format renders a date: it
// has a day, month or year token outside quoted and bracketed sections.
func isDateFormat(format string) bool {
	var quoted, bracket bool
	for _, r := range strings.ToLower(format) {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		case r == 'd' || r == 'y' || r == 'm':
			return true
		}
	}
	return false
}
