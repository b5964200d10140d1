package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/attribute"

	"ugbmonitor/internal/dataset"
	apperrors "ugbmonitor/internal/errors"
	"ugbmonitor/internal/infrastructure"
	"ugbmonitor/internal/schema"
)

// Progress stages reported while a workbook is processed.
const (
	ProgressPrepare = 10
	ProgressRead    = 30
	ProgressCheck   = 60
)

// ProgressFunc receives upload progress as a percentage and a message.
type ProgressFunc func(percent int, message string)

// Result is the outcome of processing one workbook.
type Result struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Table      *dataset.Table `json:"-"`
	SheetCount int            `json:"sheet_count"`
	// Err holds the typed failure when Success is false.
	Err error `json:"-"`
}

// Rows returns the number of rows in the result table.
func (r Result) Rows() int {
	return r.Table.Len()
}

// Processor runs the sheet extractor over every allow-listed sheet of a
// workbook and aggregates the accepted tables.
type Processor struct {
	extractor *Extractor
	base      *slog.Logger
	logger    *slog.Logger
	metrics   *infrastructure.BusinessMetrics
}

// Option configures a Processor.
type Option func(*Processor)

// WithMetrics records ingest metrics for every processed workbook.
func WithMetrics(m *infrastructure.BusinessMetrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithReconciler replaces the default header table.
func WithReconciler(r *schema.Reconciler) Option {
	return func(p *Processor) { p.extractor = NewExtractor(r, p.base) }
}

// NewProcessor creates a processor.
func NewProcessor(logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{base: logger, logger: logger.With("component", "processor")}
	p.extractor = NewExtractor(nil, logger)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessFile opens path and processes it.
func (p *Processor) ProcessFile(ctx context.Context, path string, progress ProgressFunc) Result {
	f, err := os.Open(path)
	if err != nil {
		return p.fail(ctx, apperrors.NewFileFormatError(err), 0, time.Now())
	}
	defer f.Close()
	return p.Process(ctx, f, progress)
}

// Process reads a workbook and returns the aggregated dataset. Any rejected
// sheet fails the whole workbook; progress may be nil.
func (p *Processor) Process(ctx context.Context, r io.Reader, progress ProgressFunc) Result {
	start := time.Now()
	ctx, span := infrastructure.StartSpan(ctx, "dataprocessing.Process")
	defer span.End()

	report := func(percent int, message string) {
		if progress != nil {
			progress(percent, message)
		}
	}

	report(ProgressPrepare, "Menyiapkan file untuk diproses...")
	f, err := excelize.OpenReader(r)
	if err != nil {
		return p.fail(ctx, apperrors.NewFileFormatError(err), 0, start)
	}
	defer f.Close()

	sheets := ValidSheets(f)
	if len(sheets) == 0 {
		p.logger.WarnContext(ctx, "no allow-listed sheet",
			slog.Any("sheets", f.GetSheetList()))
		return p.fail(ctx, apperrors.NewNoValidSheetError(schema.ValidSheets()), 0, start)
	}

	report(ProgressRead, "Membaca & mengekstrak data per sheet yang valid...")
	tables := make([]*dataset.Table, 0, len(sheets))
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return p.fail(ctx, err, len(sheets), start)
		}
		table, err := p.extractor.ExtractSheet(f, sheet)
		if err != nil {
			return p.fail(ctx, err, len(sheets), start)
		}
		infrastructure.AddSpanEvent(ctx, "sheet.extracted",
			attribute.String("sheet", sheet),
			attribute.Int("rows", table.Len()))
		if !table.IsEmpty() {
			tables = append(tables, table)
		}
	}

	report(ProgressCheck, "Validasi dan persiapan data...")
	if len(tables) == 0 {
		return p.fail(ctx, apperrors.NewEmptyResultError(), len(sheets), start)
	}

	final := Aggregate(tables)
	msg := fmt.Sprintf("Berhasil memproses %d baris data dari %d sheet", final.Len(), len(sheets))

	p.logger.InfoContext(ctx, "workbook processed",
		slog.Int("rows", final.Len()),
		slog.String("sheets", strings.Join(sheets, ", ")),
		slog.Duration("duration", time.Since(start)))
	infrastructure.RecordIngestMetrics(ctx, p.metrics, "success", final.Len(), len(sheets), time.Since(start))

	return Result{Success: true, Message: msg, Table: final, SheetCount: len(sheets)}
}

func (p *Processor) fail(ctx context.Context, err error, sheets int, start time.Time) Result {
	infrastructure.RecordError(ctx, err)
	p.logger.WarnContext(ctx, "workbook rejected",
		slog.String("error", err.Error()),
		slog.String("error_type", string(apperrors.TypeOf(err))))
	infrastructure.RecordIngestMetrics(ctx, p.metrics, "failure", 0, 0, time.Since(start))

	return Result{
		Success:    false,
		Message:    Message(err),
		Table:      dataset.Empty(),
		SheetCount: sheets,
		Err:        err,
	}
}

// Message returns the user-facing text of an ingest error.
func Message(err error) string {
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
