package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	apperrors "ugbmonitor/internal/errors"
	"ugbmonitor/internal/dataset"
	"ugbmonitor/internal/exporter"
	"ugbmonitor/internal/files"
)

// LocalBackend stores the table as a CSV file and keeps a timestamped copy
// of the previous file on every write.
type LocalBackend struct {
	path      string
	backupDir string
	files     *files.Manager
	now       func() time.Time
	logger    *slog.Logger
}

// NewLocalBackend creates a CSV backend at path backing up into backupDir.
// An empty backupDir disables backups.
func NewLocalBackend(path, backupDir string, fm *files.Manager, logger *slog.Logger) *LocalBackend {
	if logger == nil {
		logger = slog.Default()
	}
	if fm == nil {
		fm = files.NewManager(nil, logger)
	}
	return &LocalBackend{
		path:      path,
		backupDir: backupDir,
		files:     fm,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "storage.local")),
	}
}

// Name implements Backend.
func (b *LocalBackend) Name() string { return "local" }

// Path returns the resolved store location.
func (b *LocalBackend) Path() string { return b.files.ResolvePath(b.path) }

// Load implements Backend.
func (b *LocalBackend) Load(ctx context.Context) (*dataset.Table, error) {
	f, err := os.Open(b.Path())
	if os.IsNotExist(err) {
		return dataset.Empty(), nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("Error membaca database", err)
	}
	defer f.Close()

	t, err := exporter.ReadCSV(f)
	if err != nil {
		return nil, apperrors.NewStorageError("Error membaca database", err)
	}
	return t, nil
}

// Replace implements Backend. The previous file is copied first on a best
// effort basis, then the new content is written to a temp file and renamed
// over the store.
func (b *LocalBackend) Replace(ctx context.Context, t *dataset.Table) (SaveReport, error) {
	report := SaveReport{Backend: b.Name(), Rows: t.Len()}

	if b.backupDir != "" {
		dst, err := b.files.Backup(b.path, b.backupDir, b.now())
		if err != nil {
			report.BackupErr = apperrors.NewBackupError("Backup gagal", err)
			b.logger.WarnContext(ctx, "Backup failed, continuing with save",
				slog.String("store", b.Path()),
				slog.String("error", err.Error()))
		} else if dst != "" {
			report.BackupPath = dst
			b.logger.InfoContext(ctx, "Backup written", slog.String("backup", dst))
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	err := b.files.WriteFileAtomic(b.path, func(w io.Writer) error {
		return exporter.WriteCSV(w, t, exporter.WriteOptions{})
	})
	if err != nil {
		return report, apperrors.NewStorageError(fmt.Sprintf("Error menyimpan database ke %s", filepath.Base(b.Path())), err)
	}
	return report, nil
}
