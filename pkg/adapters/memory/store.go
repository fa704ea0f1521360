package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/igkernel/pkg/domain"
)

// Store implements ports.StatusStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Status
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Status),
	}
}

// Save stores a copy of the snapshot.
func (s *Store) Save(ctx context.Context, instanceID string, status *domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[instanceID] = *status
	return nil
}

// Load returns a copy so callers can't mutate the stored snapshot.
func (s *Store) Load(ctx context.Context, instanceID string) (*domain.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.data[instanceID]
	if !ok {
		return nil, domain.ErrStatusNotFound
	}
	return &status, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, instanceID)
	return nil
}

// List returns the known instance IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
