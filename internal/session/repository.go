package session

import (
	"context"
	"errors"
	"log/slog"

	"ugbmonitor/internal/dataset"
	"ugbmonitor/internal/schema"
	"ugbmonitor/internal/storage"
)

// ErrNothingStaged is returned by Commit when the session has no working
// copy.
var ErrNothingStaged = errors.New("no working copy to commit")

// Durable is the store behind the working copies.
type Durable interface {
	Load(ctx context.Context) (*dataset.Table, error)
	Save(ctx context.Context, t *dataset.Table) (storage.SaveReport, error)
}

// Repository layers per-session working copies over the durable store. A
// non-empty working copy takes precedence over the durable copy.
type Repository struct {
	store   Store
	durable Durable
	logger  *slog.Logger
}

// NewRepository creates a repository.
func NewRepository(store Store, durable Durable, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{store: store, durable: durable, logger: logger.With(slog.String("component", "session"))}
}

func (r *Repository) state(ctx context.Context, id string) (*State, error) {
	s, err := r.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return &State{}, nil
	}
	return s, err
}

// Current returns the table the session is looking at.
func (r *Repository) Current(ctx context.Context, id string) (*dataset.Table, error) {
	s, err := r.state(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Table.IsEmpty() {
		return s.Table, nil
	}
	return r.durable.Load(ctx)
}

// Stage replaces the working copy with t, renumbered, and clears the
// session's filters.
func (r *Repository) Stage(ctx context.Context, id string, t *dataset.Table) error {
	s := &State{Table: t.Renumber(schema.ColumnNO)}
	if err := r.store.Put(ctx, id, s); err != nil {
		return err
	}
	r.logger.DebugContext(ctx, "Working copy staged", slog.String("session_id", id), slog.Int("rows", t.Len()))
	return nil
}

// Commit saves the working copy to the durable store.
func (r *Repository) Commit(ctx context.Context, id string) (storage.SaveReport, error) {
	s, err := r.state(ctx, id)
	if err != nil {
		return storage.SaveReport{}, err
	}
	if s.Table == nil {
		return storage.SaveReport{}, ErrNothingStaged
	}
	return r.durable.Save(ctx, s.Table)
}

// Reload drops the working copy, keeping the filters, and returns the
// durable table.
func (r *Repository) Reload(ctx context.Context, id string) (*dataset.Table, error) {
	s, err := r.state(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Table != nil {
		s.Table = nil
		if err := r.store.Put(ctx, id, s); err != nil {
			return nil, err
		}
	}
	return r.durable.Load(ctx)
}

// Filters returns the filter selection of the session.
func (r *Repository) Filters(ctx context.Context, id string) (map[string][]string, error) {
	s, err := r.state(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Filters == nil {
		return map[string][]string{}, nil
	}
	return s.Filters, nil
}

// SetFilters stores the filter selection of the session.
func (r *Repository) SetFilters(ctx context.Context, id string, filters map[string][]string) error {
	s, err := r.state(ctx, id)
	if err != nil {
		return err
	}
	s.Filters = filters
	return r.store.Put(ctx, id, s)
}
