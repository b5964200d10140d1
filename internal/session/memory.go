package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	state     *State
	expiresAt time.Time
}

// MemoryStore keeps session state in process memory. Entries expire ttl
// after their last write; expired entries are dropped lazily.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a store. A zero ttl keeps entries forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id string) (*State, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if m.ttl > 0 && !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	return clone(e.state), nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, id string, s *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memoryEntry{state: clone(s), expiresAt: m.now().Add(m.ttl)}
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func clone(s *State) *State {
	if s == nil {
		return &State{}
	}
	out := &State{}
	if s.Table != nil {
		out.Table = s.Table.Clone()
	}
	if s.Filters != nil {
		out.Filters = make(map[string][]string, len(s.Filters))
		for k, v := range s.Filters {
			out.Filters[k] = append([]string(nil), v...)
		}
	}
	return out
}
