package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"ugbmonitor/internal/config"
	apperrors "ugbmonitor/internal/errors"
	"ugbmonitor/internal/dataset"
)

// SheetsBackend stores the table in one worksheet of a Google spreadsheet,
// header row first.
type SheetsBackend struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *slog.Logger
}

// NewSheetsBackend connects to the Sheets API. Credentials come from the
// configured service account file unless opts supply their own.
func NewSheetsBackend(ctx context.Context, cfg config.SheetsConfig, logger *slog.Logger, opts ...option.ClientOption) (*SheetsBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SpreadsheetID == "" {
		return nil, apperrors.NewConfigError("sheets.spreadsheet_id is required for the sheets backend", nil)
	}

	var all []option.ClientOption
	if cfg.Endpoint != "" {
		all = append(all, option.WithEndpoint(cfg.Endpoint))
	}
	if len(opts) == 0 && cfg.CredentialsFile != "" {
		all = append(all, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	all = append(all, opts...)

	svc, err := sheets.NewService(ctx, all...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create sheets client", err)
	}
	return &SheetsBackend{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		logger:        logger.With(slog.String("component", "storage.sheets")),
	}, nil
}

// Name implements Backend.
func (b *SheetsBackend) Name() string { return "sheets" }

// Load implements Backend. A missing worksheet loads as an empty table.
func (b *SheetsBackend) Load(ctx context.Context) (*dataset.Table, error) {
	resp, err := b.svc.Spreadsheets.Values.Get(b.spreadsheetID, b.sheetName).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return dataset.Empty(), nil
		}
		return nil, apperrors.NewStorageError("Error membaca Google Sheets", err)
	}
	return valuesToTable(resp.Values), nil
}

// Replace implements Backend. The new values are written over the
// worksheet first; cells of the previous table that fall outside the new
// extent are cleared afterwards, so a failed write leaves the old table in
// place.
func (b *SheetsBackend) Replace(ctx context.Context, t *dataset.Table) (SaveReport, error) {
	report := SaveReport{Backend: b.Name(), Rows: t.Len()}

	oldRows, oldCols, err := b.extent(ctx)
	if err != nil {
		return report, apperrors.NewStorageError("Gagal replace Google Sheets", err)
	}

	values := tableToValues(t)
	vr := &sheets.ValueRange{Values: values}
	resp, err := b.svc.Spreadsheets.Values.Update(b.spreadsheetID, b.cellRange("A1"), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return report, apperrors.NewStorageError("Gagal replace Google Sheets", err)
	}

	if stale := b.staleRanges(oldRows, oldCols, len(values), len(t.Columns)); len(stale) > 0 {
		if _, err := b.svc.Spreadsheets.Values.BatchClear(b.spreadsheetID,
			&sheets.BatchClearValuesRequest{Ranges: stale}).Context(ctx).Do(); err != nil {
			return report, apperrors.NewStorageError("Gagal membersihkan sisa data Google Sheets", err)
		}
	}

	b.logger.InfoContext(ctx, "Worksheet replaced",
		slog.String("sheet", b.sheetName),
		slog.Int64("updated_cells", resp.UpdatedCells))
	return report, nil
}

// extent reports how many rows and columns the worksheet holds now.
func (b *SheetsBackend) extent(ctx context.Context) (rows, cols int, err error) {
	resp, err := b.svc.Spreadsheets.Values.Get(b.spreadsheetID, b.sheetName).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	for _, r := range resp.Values {
		cols = max(cols, len(r))
	}
	return len(resp.Values), cols, nil
}

// staleRanges returns the A1 ranges of the old extent lying below or to the
// right of the new one.
func (b *SheetsBackend) staleRanges(oldRows, oldCols, newRows, newCols int) []string {
	var ranges []string
	if oldRows > newRows && oldCols > 0 {
		ranges = append(ranges, b.cellRange(fmt.Sprintf("A%d:%s%d", newRows+1, columnName(oldCols), oldRows)))
	}
	if oldCols > newCols {
		last := min(oldRows, newRows)
		if last > 0 {
			ranges = append(ranges, b.cellRange(fmt.Sprintf("%s1:%s%d", columnName(newCols+1), columnName(oldCols), last)))
		}
	}
	return ranges
}

func (b *SheetsBackend) cellRange(ref string) string {
	return "'" + strings.ReplaceAll(b.sheetName, "'", "''") + "'!" + ref
}

// columnName converts a 1-based column index to its letters: 1 is A, 27 is AA.
func columnName(n int) string {
	var name []byte
	for n > 0 {
		n--
		name = append([]byte{byte('A' + n%26)}, name...)
		n /= 26
	}
	return string(name)
}

func tableToValues(t *dataset.Table) [][]interface{} {
	values := make([][]interface{}, 0, t.Len()+1)
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	values = append(values, header)
	for _, r := range t.Rows {
		row := make([]interface{}, len(t.Columns))
		for i := range t.Columns {
			if i < len(r) {
				row[i] = r[i]
			} else {
				row[i] = ""
			}
		}
		values = append(values, row)
	}
	return values
}

func valuesToTable(values [][]interface{}) *dataset.Table {
	if len(values) == 0 {
		return dataset.Empty()
	}
	header := make([]string, len(values[0]))
	for i, v := range values[0] {
		header[i] = fmt.Sprint(v)
	}
	t := dataset.New(header...)
	for _, vr := range values[1:] {
		row := make([]string, len(header))
		for i := 0; i < len(header) && i < len(vr); i++ {
			if vr[i] != nil {
				row[i] = fmt.Sprint(vr[i])
			}
		}
		t.Append(row)
	}
	return t
}
