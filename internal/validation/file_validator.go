package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ugbmonitor/internal/config"
	apperrors "ugbmonitor/internal/errors"
)

// FileValidator checks workbooks before they reach the ingest pipeline.
type FileValidator struct {
	logger     *slog.Logger
	maxBytes   int64
	extensions []string
}

// NewFileValidator creates a validator enforcing the upload limits.
func NewFileValidator(logger *slog.Logger, cfg config.UploadConfig) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	exts := make([]string, 0, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return &FileValidator{
		logger:     logger.With(slog.String("component", "file_validator")),
		maxBytes:   cfg.MaxSizeMB * 1024 * 1024,
		extensions: exts,
	}
}

// MaxBytes returns the upload size limit.
func (v *FileValidator) MaxBytes() int64 { return v.maxBytes }

// ValidateUpload checks the name and size of an uploaded workbook.
func (v *FileValidator) ValidateUpload(name string, size int64) error {
	if err := v.checkName(name); err != nil {
		return err
	}
	if size == 0 {
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is empty", name))
	}
	if v.maxBytes > 0 && size > v.maxBytes {
		v.logger.Warn("Upload exceeds size limit",
			slog.String("file", name),
			slog.Int64("size", size),
			slog.Int64("max_size", v.maxBytes))
		return apperrors.ErrPayloadTooLarge
	}
	return nil
}

// ValidateWorkbookFile checks that path is a readable workbook on disk.
func (v *FileValidator) ValidateWorkbookFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if err := v.checkName(path); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)
	return nil
}

func (v *FileValidator) checkName(name string) error {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejecting temporary Excel file", slog.String("file", name))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is a temporary Excel file", base))
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range v.extensions {
		if ext == e {
			return nil
		}
	}
	v.logger.Warn("Unsupported file type",
		slog.String("file", name),
		slog.String("extension", ext))
	return apperrors.ErrUnsupportedFile
}
