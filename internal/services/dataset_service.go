package services

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"ugbmonitor/internal/dataprocessing"
	"ugbmonitor/internal/dataset"
	apperrors "ugbmonitor/internal/errors"
	"ugbmonitor/internal/infrastructure"
	"ugbmonitor/internal/session"
	"ugbmonitor/internal/storage"
)

// Upload progress stages after processing.
const (
	ProgressStage = 75
	ProgressSave  = 88
	ProgressDone  = 100
)

// Notifier receives upload progress and dataset change events.
type Notifier interface {
	SendProgress(ctx context.Context, sessionID string, percent int, message string)
	SendError(ctx context.Context, sessionID, code, message string)
	BroadcastDatasetChanged(ctx context.Context, reason string, rows int)
}

type nopNotifier struct{}

func (nopNotifier) SendProgress(context.Context, string, int, string)    {}
func (nopNotifier) SendError(context.Context, string, string, string)    {}
func (nopNotifier) BroadcastDatasetChanged(context.Context, string, int) {}

// UploadResult describes one upload.
type UploadResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Rows       int    `json:"rows"`
	SheetCount int    `json:"sheet_count"`
	Saved      bool   `json:"saved"`
	Backend    string `json:"backend,omitempty"`
	BackupPath string `json:"backup_path,omitempty"`
	// Warning is set when the save went through but the backup did not.
	Warning string `json:"warning,omitempty"`
}

// DatasetService ties ingestion, session working copies and the durable
// store together.
type DatasetService struct {
	processor *dataprocessing.Processor
	store     *storage.Manager
	sessions  *session.Repository
	notifier  Notifier
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// NewDatasetService creates the service. notifier may be nil.
func NewDatasetService(processor *dataprocessing.Processor, store *storage.Manager, sessions *session.Repository, notifier Notifier, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &DatasetService{
		processor: processor,
		store:     store,
		sessions:  sessions,
		notifier:  notifier,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "dataset_service")),
	}
}

// Process turns a workbook into a dataset without touching any store.
func (s *DatasetService) Process(ctx context.Context, r io.Reader) dataprocessing.Result {
	return s.processor.Process(ctx, r, nil)
}

// Save writes t to the durable store under the configured policy and
// reports whether it succeeded. A failed backup alone does not fail the
// save.
func (s *DatasetService) Save(ctx context.Context, t *dataset.Table) bool {
	report, err := s.store.Save(ctx, t)
	if err != nil {
		s.logger.ErrorContext(ctx, "Save failed",
			slog.String("error", err.Error()),
			slog.String("backend", s.store.Backend().Name()))
		return false
	}
	if report.BackupErr != nil {
		s.logger.WarnContext(ctx, "Saved without backup", slog.String("error", report.BackupErr.Error()))
	}
	return true
}

// Load returns the durable dataset, or an empty one when it cannot be
// read.
func (s *DatasetService) Load(ctx context.Context) *dataset.Table {
	t, err := s.store.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Load failed", slog.String("error", err.Error()))
		return dataset.Empty()
	}
	return t
}

// Upload processes a workbook for a session, stages the result as the
// session's working copy and commits it to the durable store. Progress is
// pushed to the session as it goes.
//
// A rejected workbook returns the ingest error and leaves every store
// untouched. A failed commit returns a storage error; the working copy
// stays staged.
func (s *DatasetService) Upload(ctx context.Context, sessionID string, r io.Reader) (UploadResult, error) {
	ctx, span := infrastructure.StartSpan(ctx, "services.Upload")
	defer span.End()

	progress := func(percent int, message string) {
		s.notifier.SendProgress(ctx, sessionID, percent, message)
	}

	res := s.processor.Process(ctx, r, progress)
	result := UploadResult{Success: res.Success, Message: res.Message, Rows: res.Rows(), SheetCount: res.SheetCount}
	if !res.Success {
		s.notifier.SendError(ctx, sessionID, string(apperrors.TypeOf(res.Err)), res.Message)
		return result, res.Err
	}

	progress(ProgressStage, "Menyimpan data ke sesi...")
	if err := s.sessions.Stage(ctx, sessionID, res.Table); err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.RecordSystemError(ctx, s.metrics, "session_stage", "dataset_service")
		s.notifier.SendError(ctx, sessionID, string(apperrors.ErrTypeStorage), "Gagal menyimpan data sesi")
		return result, apperrors.NewStorageError("Gagal menyimpan data sesi", err)
	}

	progress(ProgressSave, "Menyimpan ke database...")
	report, err := s.sessions.Commit(ctx, sessionID)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		msg := "Gagal menyimpan data ke database"
		s.notifier.SendError(ctx, sessionID, string(apperrors.ErrTypeStorage), msg)
		s.logger.ErrorContext(ctx, "Commit failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		var ae *apperrors.AppError
		if !errors.As(err, &ae) {
			err = apperrors.NewStorageError(msg, err)
		}
		return result, err
	}

	result.Saved = true
	result.Backend = report.Backend
	result.BackupPath = report.BackupPath
	if report.BackupErr != nil {
		result.Warning = dataprocessing.Message(report.BackupErr)
	}
	progress(ProgressDone, "Selesai")
	s.notifier.BroadcastDatasetChanged(ctx, "upload", report.Rows)

	s.logger.InfoContext(ctx, "Upload committed",
		slog.String("session_id", sessionID),
		slog.Int("rows", report.Rows),
		slog.String("backend", report.Backend))
	return result, nil
}

// Current returns the table a session is looking at: its working copy
// when it has one, otherwise the durable dataset.
func (s *DatasetService) Current(ctx context.Context, sessionID string) (*dataset.Table, error) {
	t, err := s.sessions.Current(ctx, sessionID)
	if err != nil {
		return nil, apperrors.NewStorageError("Gagal memuat data", err)
	}
	return t, nil
}

// Reload drops the session's working copy and rereads the durable store.
func (s *DatasetService) Reload(ctx context.Context, sessionID string) (*dataset.Table, error) {
	t, err := s.sessions.Reload(ctx, sessionID)
	if err != nil {
		return nil, apperrors.NewStorageError("Gagal memuat ulang data", err)
	}
	return t, nil
}

// Filters returns the session's stored filter selection.
func (s *DatasetService) Filters(ctx context.Context, sessionID string) (map[string][]string, error) {
	return s.sessions.Filters(ctx, sessionID)
}

// SetFilters stores the session's filter selection.
func (s *DatasetService) SetFilters(ctx context.Context, sessionID string, filters map[string][]string) error {
	return s.sessions.SetFilters(ctx, sessionID, filters)
}
