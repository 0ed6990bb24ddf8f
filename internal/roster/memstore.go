package roster

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store for tests and ephemeral runs.
type MemStore struct {
	mu     sync.RWMutex
	tables map[string]Table

	// FailSave makes every Save return ErrStoreUnavailable without touching
	// the stored table, for exercising persistence-failure paths.
	FailSave bool
}

func NewMemStore() *MemStore {
	return &MemStore{tables: map[string]Table{}}
}

func (s *MemStore) Load(_ context.Context, gatewayID string) (Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables[gatewayID].Clone(), nil
}

func (s *MemStore) Save(_ context.Context, gatewayID string, table Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave {
		return ErrStoreUnavailable
	}
	s.tables[gatewayID] = table.Clone()
	return nil
}
