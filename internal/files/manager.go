package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ugbmonitor/internal/config"
)

// Manager provides file management operations rooted at the configured
// application directories.
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger.With(slog.String("component", "files"))}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	fullPath := m.ResolvePath(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	m.logger.Debug("FileExists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// EnsureDirectory creates a directory if it doesn't exist
func (m *Manager) EnsureDirectory(path string) error {
	fullPath := m.ResolvePath(path)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		m.logger.Debug("Creating directory", slog.String("full_path", fullPath))
		return os.MkdirAll(fullPath, 0o755)
	}
	return nil
}

// CopyFile copies a file from source to destination
func (m *Manager) CopyFile(src, dst string) error {
	srcPath := m.ResolvePath(src)
	dstPath := m.ResolvePath(dst)

	m.logger.Info("Copying file",
		slog.String("src_path", srcPath),
		slog.String("dst_path", dstPath))

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	return dstFile.Sync()
}

// WriteFileAtomic writes the output of write to a temporary file next to
// path and renames it into place. On any failure the existing file is left
// untouched and the temporary file is removed.
func (m *Manager) WriteFileAtomic(path string, write func(io.Writer) error) error {
	fullPath := m.ResolvePath(path)
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if err := write(tmp); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", fullPath, err)
	}

	m.logger.Debug("File written", slog.String("full_path", fullPath))
	return nil
}

// BackupName returns "<stem>_<YYYYMMDD_HHMMSS><ext>" for path.
func BackupName(path string, at time.Time) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return stem + "_" + at.Format(config.TimestampLayout) + ext
}

// Backup copies path into dir under its BackupName and returns the backup
// location. A missing source is not an error and returns "".
func (m *Manager) Backup(path, dir string, at time.Time) (string, error) {
	if !m.FileExists(path) {
		return "", nil
	}
	dst := filepath.Join(m.ResolvePath(dir), BackupName(path, at))
	if err := m.CopyFile(path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// ReadFile reads the entire content of a file
func (m *Manager) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(m.ResolvePath(path))
}

// ResolvePath resolves a path relative to the appropriate base directory.
// Absolute paths are returned unchanged.
func (m *Manager) ResolvePath(path string) string {
	if filepath.IsAbs(path) || m.paths == nil {
		return path
	}

	switch {
	case strings.HasPrefix(path, "logs/"):
		return filepath.Join(m.paths.LogsDir, strings.TrimPrefix(path, "logs/"))
	case strings.HasPrefix(path, "backup/"):
		return filepath.Join(m.paths.BackupDir, strings.TrimPrefix(path, "backup/"))
	default:
		return filepath.Join(m.paths.DataDir, path)
	}
}
