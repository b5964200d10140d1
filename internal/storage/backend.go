package storage

import (
	"context"

	apperrors "ugbmonitor/internal/errors"
	"ugbmonitor/internal/dataset"
)

var (
	// ErrBackupFailed marks a backup copy that could not be written. It
	// never aborts a save.
	ErrBackupFailed = apperrors.NewAppError(apperrors.ErrTypeBackup, "", nil)
	// ErrStorage marks a failed read or write of the durable store.
	ErrStorage = apperrors.NewAppError(apperrors.ErrTypeStorage, "", nil)
)

// Backend is a durable store holding exactly one cabinet table.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Load returns the stored table, or an empty table when nothing has
	// been stored yet.
	Load(ctx context.Context) (*dataset.Table, error)
	// Replace overwrites the whole store with t.
	Replace(ctx context.Context, t *dataset.Table) (SaveReport, error)
}

// SaveReport describes a completed write.
type SaveReport struct {
	Backend string `json:"backend"`
	Rows    int    `json:"rows"`
	// BackupPath is the copy of the previous store, if one was made.
	BackupPath string `json:"backup_path,omitempty"`
	// BackupErr is set when the previous store could not be copied. The
	// write itself still succeeded.
	BackupErr error `json:"-"`
}
