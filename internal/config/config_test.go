package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, "data/ugb_database.csv", cfg.Storage.DatabasePath)
	assert.Equal(t, "data/backup", cfg.Storage.BackupDir)
	assert.True(t, cfg.Storage.ReplaceOnUpload)
	assert.False(t, cfg.Storage.DedupeOnMerge)
	assert.Equal(t, []string{"PENOMORAN UGB BARU"}, cfg.Storage.DedupeKeyColumns)
	assert.Equal(t, "UGB_Master", cfg.Sheets.SheetName)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, []string{".xlsx", ".xlsm"}, cfg.Upload.Extensions)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFile_DefaultsMatchDefault(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Server, cfg.Server)
	assert.Equal(t, def.Storage, cfg.Storage)
	assert.Equal(t, def.Session, cfg.Session)
	assert.Equal(t, def.Sheets, cfg.Sheets)
	assert.Equal(t, def.Telemetry, cfg.Telemetry)
}

func TestLoadFile_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
storage:
  replace_on_upload: false
  dedupe_on_merge: true
upload:
  extensions: [XLSX]
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Storage.ReplaceOnUpload)
	assert.True(t, cfg.Storage.DedupeOnMerge)
	assert.Equal(t, []string{".xlsx"}, cfg.Upload.Extensions)
	// untouched values keep their defaults
	assert.Equal(t, "UGB_Master", cfg.Sheets.SheetName)
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
storage:
  database_path: from-file.csv
`)
	t.Setenv("UGB_SERVER_PORT", "7070")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "from-file.csv", cfg.Storage.DatabasePath)
}

func TestLoadFile_NestedEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
security:
  rate_limit:
    rps: 5
    burst: 9
session:
  ttl: 1h
`)
	t.Setenv("UGB_SECURITY_RATE_LIMIT_RPS", "12.5")
	t.Setenv("UGB_SESSION_TTL", "90m")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 12.5, cfg.Security.RateLimit.RPS)
	assert.Equal(t, 9, cfg.Security.RateLimit.Burst)
	assert.Equal(t, 90*time.Minute, cfg.Session.TTL)
}

func TestLoadFile_Validation(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		wantErr       bool
		errorContains string
	}{
		{
			name:          "unknown storage backend",
			env:           map[string]string{"UGB_STORAGE_BACKEND": "ftp"},
			wantErr:       true,
			errorContains: "Backend",
		},
		{
			name:          "sheets without spreadsheet id",
			env:           map[string]string{"UGB_STORAGE_BACKEND": "sheets"},
			wantErr:       true,
			errorContains: "spreadsheet_id",
		},
		{
			name: "sheets configured",
			env: map[string]string{
				"UGB_STORAGE_BACKEND":       "sheets",
				"UGB_SHEETS_SPREADSHEET_ID": "abc",
			},
		},
		{
			name:          "bad port",
			env:           map[string]string{"UGB_SERVER_PORT": "70000"},
			wantErr:       true,
			errorContains: "Port",
		},
		{
			name:          "bad session backend",
			env:           map[string]string{"UGB_SESSION_BACKEND": "memcached"},
			wantErr:       true,
			errorContains: "Backend",
		},
		{
			name: "redis sessions",
			env: map[string]string{
				"UGB_SESSION_BACKEND":    "redis",
				"UGB_SESSION_REDIS_ADDR": "127.0.0.1:6380",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadFile("")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoadFile_BadYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [")
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.BaseDir = base
	cfg.Storage.BackupDir = filepath.Join(base, "abs-backup")

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "data", "ugb_database.csv"), paths.DatabaseFile)
	assert.Equal(t, filepath.Join(base, "abs-backup"), paths.BackupDir)
	assert.Equal(t, filepath.Join(base, "logs", "ugb.log"), paths.LogFile)

	require.NoError(t, paths.EnsureDirectories())
	assert.DirExists(t, paths.DataDir)
	assert.DirExists(t, paths.BackupDir)
	assert.True(t, FileExists(paths.LogsDir))
}
