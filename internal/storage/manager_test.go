package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ugbmonitor/internal/config"
	"ugbmonitor/internal/dataset"
	"ugbmonitor/internal/files"
)

// memoryBackend records what the manager writes.
type memoryBackend struct {
	mu      sync.Mutex
	stored  *dataset.Table
	loadErr error
	saveErr error
	writes  int
}

func (b *memoryBackend) Name() string { return "memory" }

func (b *memoryBackend) Load(context.Context) (*dataset.Table, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	if b.stored == nil {
		return dataset.Empty(), nil
	}
	return b.stored.Clone(), nil
}

func (b *memoryBackend) Replace(_ context.Context, t *dataset.Table) (SaveReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return SaveReport{Backend: b.Name()}, b.saveErr
	}
	b.writes++
	b.stored = t.Clone()
	return SaveReport{Backend: b.Name(), Rows: t.Len()}, nil
}

func withNO(t *dataset.Table, nos ...string) *dataset.Table {
	out := t.Clone()
	for i, n := range nos {
		out.Rows[i][0] = n
	}
	return out
}

func TestManager_ReplaceRegeneratesNO(t *testing.T) {
	backend := &memoryBackend{stored: cabinets("OLD")}
	m := NewManager(backend)

	report, err := m.Save(context.Background(), withNO(cabinets("A", "B"), "9", "3"))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Rows)

	assert.Equal(t, []string{"A", "B"}, ids(backend.stored))
	assert.Equal(t, "1", backend.stored.Value(0, "NO"))
	assert.Equal(t, "2", backend.stored.Value(1, "NO"))
	assert.Equal(t, "NO", backend.stored.Columns[0])
}

func TestManager_MergePolicy(t *testing.T) {
	backend := &memoryBackend{stored: cabinets("E-1", "E-2")}
	m := NewManager(backend, WithReplaceOnUpload(false))

	_, err := m.Save(context.Background(), cabinets("N-1"))
	require.NoError(t, err)

	assert.Equal(t, []string{"N-1", "E-1", "E-2"}, ids(backend.stored))
	assert.Equal(t, "3", backend.stored.Value(2, "NO"))
}

func TestManager_MergeIntoEmptyStore(t *testing.T) {
	backend := &memoryBackend{}
	m := NewManager(backend, WithReplaceOnUpload(false))

	_, err := m.Merge(context.Background(), cabinets("N-1", "N-2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"N-1", "N-2"}, ids(backend.stored))
}

func TestManager_MergeWithDedupe(t *testing.T) {
	backend := &memoryBackend{stored: cabinets("X-1", "E-2")}
	m := NewManager(backend,
		WithReplaceOnUpload(false),
		WithMergeStrategy(AppendDedupeByKey{Columns: []string{"PENOMORAN UGB BARU"}}))

	_, err := m.Save(context.Background(), cabinets("x-1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x-1", "E-2"}, ids(backend.stored))
}

func TestManager_Errors(t *testing.T) {
	loadErr := errors.New("load")
	m := NewManager(&memoryBackend{loadErr: loadErr}, WithReplaceOnUpload(false))
	_, err := m.Save(context.Background(), cabinets("A"))
	assert.ErrorIs(t, err, loadErr)

	_, err = m.Load(context.Background())
	assert.ErrorIs(t, err, loadErr)

	saveErr := errors.New("save")
	m = NewManager(&memoryBackend{saveErr: saveErr})
	_, err = m.Save(context.Background(), cabinets("A"))
	assert.ErrorIs(t, err, saveErr)
}

func TestManager_ConcurrentSaves(t *testing.T) {
	backend := &memoryBackend{}
	m := NewManager(backend, WithReplaceOnUpload(false))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Save(context.Background(), cabinets("A"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, got.Len(), "no merge lost an update")
	assert.Equal(t, 10, backend.writes)
}

func TestNewFromConfig_Local(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.ReplaceOnUpload = false
	cfg.Storage.DedupeOnMerge = true
	paths := &config.Paths{
		BaseDir:      dir,
		DataDir:      dir,
		BackupDir:    filepath.Join(dir, "backup"),
		DatabaseFile: filepath.Join(dir, "ugb_database.csv"),
	}

	m, err := NewFromConfig(context.Background(), cfg, paths, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "local", m.Backend().Name())
	assert.IsType(t, AppendDedupeByKey{}, m.strategy)

	ctx := context.Background()
	_, err = m.Save(ctx, cabinets("A", "a"))
	require.NoError(t, err)

	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids(got))

	backups, err := files.FindBackups(paths.BackupDir, paths.DatabaseFile)
	require.NoError(t, err)
	assert.Empty(t, backups, "first save has nothing to back up")
}

func TestNewFromConfig_SheetsNeedsID(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "sheets"
	cfg.Sheets.SpreadsheetID = ""
	_, err := NewFromConfig(context.Background(), cfg, &config.Paths{}, nil, nil)
	require.Error(t, err)
}
