package storage

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"

	"ugbmonitor/internal/config"
	"ugbmonitor/internal/dataset"
	"ugbmonitor/internal/files"
	"ugbmonitor/internal/infrastructure"
	"ugbmonitor/internal/normalize"
	"ugbmonitor/internal/schema"
)

// Manager persists processed tables through a Backend. Saves and loads
// are serialized within the process.
type Manager struct {
	mu       sync.Mutex
	backend  Backend
	replace  bool
	strategy MergeStrategy
	logger   *slog.Logger
	metrics  *infrastructure.BusinessMetrics
}

// Option configures a Manager.
type Option func(*Manager)

// WithReplaceOnUpload selects the replace policy (true) or the merge
// policy (false) used by Save.
func WithReplaceOnUpload(replace bool) Option {
	return func(m *Manager) { m.replace = replace }
}

// WithMergeStrategy sets the strategy used by the merge policy.
func WithMergeStrategy(s MergeStrategy) Option {
	return func(m *Manager) {
		if s != nil {
			m.strategy = s
		}
	}
}

// WithMetrics records save outcomes.
func WithMetrics(metrics *infrastructure.BusinessMetrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a manager using the replace policy and AppendAll.
func NewManager(backend Backend, opts ...Option) *Manager {
	m := &Manager{
		backend:  backend,
		replace:  true,
		strategy: AppendAll{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(slog.String("component", "storage"), slog.String("backend", backend.Name()))
	return m
}

// NewFromConfig builds the configured backend and wraps it in a Manager.
func NewFromConfig(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger, metrics *infrastructure.BusinessMetrics, sheetsOpts ...option.ClientOption) (*Manager, error) {
	var backend Backend
	switch cfg.Storage.Backend {
	case "sheets":
		sb, err := NewSheetsBackend(ctx, cfg.Sheets, logger, sheetsOpts...)
		if err != nil {
			return nil, err
		}
		backend = sb
	default:
		backend = NewLocalBackend(paths.DatabaseFile, paths.BackupDir, files.NewManager(paths, logger), logger)
	}

	var strategy MergeStrategy = AppendAll{}
	if cfg.Storage.DedupeOnMerge {
		strategy = AppendDedupeByKey{Columns: cfg.Storage.DedupeKeyColumns}
		if cfg.Normalization.DictionaryFile != "" {
			dict, err := normalize.LoadDictionary(cfg.Normalization.DictionaryFile)
			if err != nil {
				return nil, err
			}
			strategy = AppendDedupeByKey{Columns: cfg.Storage.DedupeKeyColumns, Normalizer: normalize.New(dict)}
		}
	}

	return NewManager(backend,
		WithReplaceOnUpload(cfg.Storage.ReplaceOnUpload),
		WithMergeStrategy(strategy),
		WithMetrics(metrics),
		WithLogger(logger),
	), nil
}

// Backend returns the underlying store.
func (m *Manager) Backend() Backend { return m.backend }

// Save persists t with the configured policy.
func (m *Manager) Save(ctx context.Context, t *dataset.Table) (SaveReport, error) {
	if m.replace {
		return m.Replace(ctx, t)
	}
	return m.Merge(ctx, t)
}

// Replace writes t as the entire store with a fresh NO sequence.
func (m *Manager) Replace(ctx context.Context, t *dataset.Table) (SaveReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.write(ctx, "replace", t.Renumber(schema.ColumnNO))
}

// Merge places t above the stored rows, applies the merge strategy and
// writes the result with a fresh NO sequence.
func (m *Manager) Merge(ctx context.Context, t *dataset.Table) (SaveReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, err := m.load(ctx)
	if err != nil {
		infrastructure.RecordStorageMetrics(ctx, m.metrics, m.backend.Name(), 0, err, nil)
		return SaveReport{Backend: m.backend.Name()}, err
	}
	merged := m.strategy.Merge(t, existing)
	m.logger.DebugContext(ctx, "Merged with stored rows",
		slog.Int("incoming", t.Len()),
		slog.Int("existing", existing.Len()),
		slog.Int("merged", merged.Len()))
	return m.write(ctx, "merge", merged.Renumber(schema.ColumnNO))
}

func (m *Manager) write(ctx context.Context, policy string, t *dataset.Table) (SaveReport, error) {
	ctx, span := infrastructure.StartSpan(ctx, "storage.Save",
		attribute.String("storage.backend", m.backend.Name()),
		attribute.String("storage.policy", policy),
		attribute.Int("storage.rows", t.Len()))
	defer span.End()

	report, err := m.backend.Replace(ctx, t)
	infrastructure.RecordStorageMetrics(ctx, m.metrics, m.backend.Name(), t.Len(), err, report.BackupErr)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		m.logger.ErrorContext(ctx, "Save failed",
			slog.String("policy", policy),
			slog.String("error", err.Error()))
		return report, err
	}
	if report.BackupErr != nil {
		infrastructure.AddSpanEvent(ctx, "backup_failed")
	}

	m.logger.InfoContext(ctx, "Dataset saved",
		slog.String("policy", policy),
		slog.Int("rows", report.Rows),
		slog.String("backup", report.BackupPath))
	return report, nil
}

// Load returns the stored table, empty when nothing is stored.
func (m *Manager) Load(ctx context.Context) (*dataset.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

func (m *Manager) load(ctx context.Context) (*dataset.Table, error) {
	ctx, span := infrastructure.StartSpan(ctx, "storage.Load",
		attribute.String("storage.backend", m.backend.Name()))
	defer span.End()

	t, err := m.backend.Load(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		m.logger.ErrorContext(ctx, "Load failed", slog.String("error", err.Error()))
		return nil, err
	}
	span.SetAttributes(attribute.Int("storage.rows", t.Len()))
	return t, nil
}
