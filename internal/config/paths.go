package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds resolved, absolute file system locations.
type Paths struct {
	BaseDir      string
	DataDir      string
	LogsDir      string
	BackupDir    string
	DatabaseFile string
	LogFile      string
}

// ResolvePaths resolves configured locations against the base directory.
// An empty base directory means the working directory.
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	return &Paths{
		BaseDir:      base,
		DataDir:      resolve(base, c.Paths.DataDir),
		LogsDir:      resolve(base, c.Paths.LogsDir),
		BackupDir:    resolve(base, c.Storage.BackupDir),
		DatabaseFile: resolve(base, c.Storage.DatabasePath),
		LogFile:      resolve(base, c.Logging.FilePath),
	}, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.LogsDir,
		p.BackupDir,
		filepath.Dir(p.DatabaseFile),
	}

	for _, dir := range directories {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPathResolution logs the resolved locations.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("logs", p.LogsDir),
			slog.String("backup", p.BackupDir),
		),
		slog.Group("files",
			slog.String("database", p.DatabaseFile),
			slog.String("log", p.LogFile),
		))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
