package session

import (
	"context"
	"errors"

	"ugbmonitor/internal/dataset"
)

// ErrNotFound is returned by a Store when a session has no saved state.
var ErrNotFound = errors.New("session not found")

// State is everything kept for one browser session.
type State struct {
	// Table is the working copy. Nil means the session reads the durable
	// store.
	Table *dataset.Table `json:"table,omitempty"`
	// Filters holds the selected filter values keyed by column.
	Filters map[string][]string `json:"filters,omitempty"`
}

// Store persists session state.
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Put(ctx context.Context, id string, s *State) error
	Delete(ctx context.Context, id string) error
}
