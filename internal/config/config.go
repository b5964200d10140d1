package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. UGB_STORAGE_BACKEND.
const EnvPrefix = "UGB"

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server" envconfig:"SERVER"`
	Security      SecurityConfig      `yaml:"security" envconfig:"SECURITY"`
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Paths         PathsConfig         `yaml:"paths" envconfig:"PATHS"`
	Upload        UploadConfig        `yaml:"upload" envconfig:"UPLOAD"`
	Storage       StorageConfig       `yaml:"storage" envconfig:"STORAGE"`
	Sheets        SheetsConfig        `yaml:"sheets" envconfig:"SHEETS"`
	Session       SessionConfig       `yaml:"session" envconfig:"SESSION"`
	Normalization NormalizationConfig `yaml:"normalization" envconfig:"NORMALIZATION"`
	Telemetry     TelemetryConfig     `yaml:"telemetry" envconfig:"TELEMETRY"`
	WebSocket     WebSocketConfig     `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	UploadTimeout   time.Duration `yaml:"upload_timeout" envconfig:"UPLOAD_TIMEOUT" default:"2m" validate:"gt=0"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/ugb.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// UploadConfig limits accepted workbooks.
type UploadConfig struct {
	MaxSizeMB  int64    `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB" default:"50" validate:"gt=0"`
	Extensions []string `yaml:"extensions" envconfig:"EXTENSIONS" default:".xlsx,.xlsm" validate:"min=1"`
}

// StorageConfig selects and configures the durable store.
type StorageConfig struct {
	Backend          string   `yaml:"backend" envconfig:"BACKEND" default:"local" validate:"oneof=local sheets"`
	DatabasePath     string   `yaml:"database_path" envconfig:"DATABASE_PATH" default:"data/ugb_database.csv" validate:"required"`
	BackupDir        string   `yaml:"backup_dir" envconfig:"BACKUP_DIR" default:"data/backup"`
	ReplaceOnUpload  bool     `yaml:"replace_on_upload" envconfig:"REPLACE_ON_UPLOAD" default:"true"`
	DedupeOnMerge    bool     `yaml:"dedupe_on_merge" envconfig:"DEDUPE_ON_MERGE" default:"false"`
	DedupeKeyColumns []string `yaml:"dedupe_key_columns" envconfig:"DEDUPE_KEY_COLUMNS" default:"PENOMORAN UGB BARU"`
}

// SheetsConfig configures the Google Sheets backend.
type SheetsConfig struct {
	SpreadsheetID   string        `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	SheetName       string        `yaml:"sheet_name" envconfig:"SHEET_NAME" default:"UGB_Master"`
	CredentialsFile string        `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE" default:"credentials.json"`
	Endpoint        string        `yaml:"endpoint" envconfig:"ENDPOINT"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
}

// SessionConfig configures where per-session working copies live.
type SessionConfig struct {
	Backend   string        `yaml:"backend" envconfig:"BACKEND" default:"memory" validate:"oneof=memory redis"`
	RedisAddr string        `yaml:"redis_addr" envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPass string        `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB   int           `yaml:"redis_db" envconfig:"REDIS_DB" default:"0" validate:"gte=0"`
	KeyPrefix string        `yaml:"key_prefix" envconfig:"KEY_PREFIX" default:"ugb:session:"`
	TTL       time.Duration `yaml:"ttl" envconfig:"TTL" default:"12h" validate:"gt=0"`
	Cookie    string        `yaml:"cookie" envconfig:"COOKIE" default:"ugb_session"`
}

// NormalizationConfig points at optional vocabulary overrides.
type NormalizationConfig struct {
	DictionaryFile string `yaml:"dictionary_file" envconfig:"DICTIONARY_FILE"`
}

// TelemetryConfig configures OpenTelemetry.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"ugb-monitor"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none" validate:"oneof=none stdout"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED" default:"true"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Upload.MaxSizeMB << 20
}

// Load loads configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit YAML file. An empty path skips the file.
func LoadFile(configFile string) (*Config, error) {
	var cfg Config

	// defaults and environment
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
		// the file overrode defaults, environment still wins
		if err := applyEnvOverrides(&cfg); err != nil {
			return nil, fmt.Errorf("failed to apply env overrides: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides copies onto cfg every field whose variable is set in
// the environment.
func applyEnvOverrides(cfg *Config) error {
	var fromEnv Config
	if err := envconfig.Process(EnvPrefix, &fromEnv); err != nil {
		return err
	}
	overlayEnv(reflect.ValueOf(cfg).Elem(), reflect.ValueOf(&fromEnv).Elem(), EnvPrefix)
	return nil
}

// overlayEnv walks dst and src in step. Keys follow envconfig's naming:
// PREFIX_TAG, nested structs extend the prefix, and the bare tag is the
// fallback name.
func overlayEnv(dst, src reflect.Value, prefix string) {
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("envconfig")
		name := tag
		if name == "" {
			name = f.Name
		}
		key := strings.ToUpper(prefix + "_" + name)

		if f.Type.Kind() == reflect.Struct {
			overlayEnv(dst.Field(i), src.Field(i), key)
			continue
		}

		_, set := os.LookupEnv(key)
		if !set && tag != "" {
			_, set = os.LookupEnv(strings.ToUpper(tag))
		}
		if set {
			dst.Field(i).Set(src.Field(i))
		}
	}
}

var configValidator = validator.New()

// validate validates the configuration
func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	// JSON is the only supported log format
	c.Logging.Format = "json"

	for i, ext := range c.Upload.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Upload.Extensions[i] = ext
	}

	if c.Storage.Backend == "sheets" {
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("sheets backend requires sheets.spreadsheet_id")
		}
		if c.Sheets.SheetName == "" {
			return fmt.Errorf("sheets backend requires sheets.sheet_name")
		}
	}

	if c.Session.Backend == "redis" && c.Session.RedisAddr == "" {
		return fmt.Errorf("redis session backend requires session.redis_addr")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			UploadTimeout:   2 * time.Minute,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/ugb.log",
		},
		Paths: PathsConfig{
			DataDir: "data",
			LogsDir: "logs",
		},
		Upload: UploadConfig{
			MaxSizeMB:  50,
			Extensions: []string{".xlsx", ".xlsm"},
		},
		Storage: StorageConfig{
			Backend:          "local",
			DatabasePath:     "data/ugb_database.csv",
			BackupDir:        "data/backup",
			ReplaceOnUpload:  true,
			DedupeKeyColumns: []string{"PENOMORAN UGB BARU"},
		},
		Sheets: SheetsConfig{
			SheetName:       "UGB_Master",
			CredentialsFile: "credentials.json",
			Timeout:         30 * time.Second,
		},
		Session: SessionConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
			KeyPrefix: "ugb:session:",
			TTL:       12 * time.Hour,
			Cookie:    "ugb_session",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "ugb-monitor",
			TraceExporter:  "none",
			MetricsEnabled: true,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}
