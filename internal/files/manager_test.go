package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ugbmonitor/internal/config"
)

func testManager(t *testing.T) (*Manager, *config.Paths) {
	t.Helper()
	root := t.TempDir()
	paths := &config.Paths{
		BaseDir:   root,
		DataDir:   filepath.Join(root, "data"),
		LogsDir:   filepath.Join(root, "logs"),
		BackupDir: filepath.Join(root, "data", "backup"),
	}
	return NewManager(paths, nil), paths
}

func TestResolvePath(t *testing.T) {
	m, paths := testManager(t)

	tests := []struct {
		in   string
		want string
	}{
		{"ugb_database.csv", filepath.Join(paths.DataDir, "ugb_database.csv")},
		{"logs/ugb.log", filepath.Join(paths.LogsDir, "ugb.log")},
		{"backup/a.csv", filepath.Join(paths.BackupDir, "a.csv")},
		{"/abs/file.csv", "/abs/file.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, m.ResolvePath(tt.in))
		})
	}

	assert.Equal(t, "rel.csv", NewManager(nil, nil).ResolvePath("rel.csv"))
}

func TestWriteFileAtomic(t *testing.T) {
	m, paths := testManager(t)
	target := filepath.Join(paths.DataDir, "store.csv")

	require.NoError(t, m.WriteFileAtomic(target, func(w io.Writer) error {
		_, err := io.WriteString(w, "v1")
		return err
	}))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))

	boom := errors.New("boom")
	err = m.WriteFileAtomic(target, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	require.ErrorIs(t, err, boom)

	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data), "failed write leaves store untouched")

	entries, err := os.ReadDir(paths.DataDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file removed")
}

func TestBackupName(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "ugb_database_20240309_140507.csv", BackupName("/x/ugb_database.csv", at))
	assert.Equal(t, "store_20240309_140507", BackupName("store", at))
}

func TestBackup(t *testing.T) {
	m, paths := testManager(t)
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	dst, err := m.Backup("ugb_database.csv", "backup/", at)
	require.NoError(t, err)
	assert.Empty(t, dst, "nothing to back up")

	require.NoError(t, os.MkdirAll(paths.DataDir, 0o755))
	src := filepath.Join(paths.DataDir, "ugb_database.csv")
	require.NoError(t, os.WriteFile(src, []byte("NO,ULP\n1,A\n"), 0o644))

	dst, err = m.Backup("ugb_database.csv", "backup/", at)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.BackupDir, "ugb_database_20240309_140507.csv"), dst)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "NO,ULP\n1,A\n", string(data))
}

func TestBackup_UnwritableDirectory(t *testing.T) {
	m, paths := testManager(t)
	require.NoError(t, os.MkdirAll(paths.DataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(paths.DataDir, "s.csv"), []byte("x"), 0o644))

	// A regular file where the backup directory should be.
	blocker := filepath.Join(paths.BaseDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := m.Backup("s.csv", filepath.Join(blocker, "sub"), time.Now())
	assert.Error(t, err)
}

func TestFindWorkbooks(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"b.xlsx", "a.XLSM", "~$a.xlsx", "notes.txt", "old.xls"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		mt := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(p, mt, mt))
	}

	found, err := FindWorkbooks(dir)
	require.NoError(t, err)
	var names []string
	for _, f := range found {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"b.xlsx", "a.XLSM"}, names)

	latest, ok := GetLatestFile(found)
	require.True(t, ok)
	assert.Equal(t, "a.XLSM", latest.Name)

	_, ok = GetLatestFile(nil)
	assert.False(t, ok)

	missing, err := FindWorkbooks(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestFindBackups(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"ugb_database_20240101_080000.csv",
		"ugb_database_20240301_080000.csv",
		"ugb_database_latest.csv",
		"other_20240101_080000.csv",
		"ugb_database_20240201_080000.xlsx",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	found, err := FindBackups(dir, "/data/ugb_database.csv")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "ugb_database_20240301_080000.csv", found[0].Name)
	assert.Equal(t, "ugb_database_20240101_080000.csv", found[1].Name)
}

func TestIsWorkbook(t *testing.T) {
	for name, want := range map[string]bool{
		"a.xlsx": true, "a.XLSX": true, "a.xlsm": true, "a.xls": false, "a.csv": false, "xlsx": false,
	} {
		assert.Equal(t, want, IsWorkbook(name), fmt.Sprintf("name %q", name))
	}
}
