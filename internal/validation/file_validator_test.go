package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ugbmonitor/internal/config"
	apperrors "ugbmonitor/internal/errors"
)

func newValidator() *FileValidator {
	return NewFileValidator(nil, config.UploadConfig{MaxSizeMB: 1, Extensions: []string{".xlsx", "xlsm", " "}})
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		size    int64
		wantErr error
	}{
		{name: "xlsx", file: "rekap.xlsx", size: 10},
		{name: "upper case xlsm", file: "REKAP.XLSM", size: 10},
		{name: "at the limit", file: "a.xlsx", size: 1024 * 1024},
		{name: "too large", file: "a.xlsx", size: 1024*1024 + 1, wantErr: apperrors.ErrPayloadTooLarge},
		{name: "legacy xls", file: "a.xls", size: 10, wantErr: apperrors.ErrUnsupportedFile},
		{name: "csv", file: "a.csv", size: 10, wantErr: apperrors.ErrUnsupportedFile},
		{name: "no extension", file: "xlsx", size: 10, wantErr: apperrors.ErrUnsupportedFile},
	}
	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpload(tt.file, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestValidateUpload_TypedRejections(t *testing.T) {
	v := newValidator()
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(v.ValidateUpload("empty.xlsx", 0)))
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(v.ValidateUpload("~$lock.xlsx", 10)))
	assert.Equal(t, int64(1024*1024), v.MaxBytes())
}

func TestValidateWorkbookFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "rekap.xlsx")
	require.NoError(t, os.WriteFile(good, []byte("x"), 0o644))
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))

	v := newValidator()
	assert.NoError(t, v.ValidateWorkbookFile(good))
	assert.Error(t, v.ValidateWorkbookFile(filepath.Join(dir, "missing.xlsx")))
	assert.Error(t, v.ValidateWorkbookFile(dir))
	assert.ErrorIs(t, v.ValidateWorkbookFile(txt), apperrors.ErrUnsupportedFile)
}

func TestValidateOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	v := newValidator()
	require.NoError(t, v.ValidateOutputDirectory(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file removed")

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	assert.Error(t, v.ValidateOutputDirectory(filepath.Join(blocker, "sub")))
}
