// Package memory keeps session state in process memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/samirrijal/demfetch/internal/core/domain"
)

type entry struct {
	sel       domain.StoredSelection
	expiresAt time.Time
}

// SelectionStore implements ports.SelectionStore with a mutex-guarded map.
type SelectionStore struct {
	mu    sync.Mutex
	slots map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

// NewSelectionStore creates a store whose slots expire after ttl (0 = never).
func NewSelectionStore(ttl time.Duration) *SelectionStore {
	return &SelectionStore{slots: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (s *SelectionStore) Save(ctx context.Context, sessionID string, sel *domain.StoredSelection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{sel: *sel}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.slots[sessionID] = e
	return nil
}

func (s *SelectionStore) Load(ctx context.Context, sessionID string) (*domain.StoredSelection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.slots[sessionID]
	if !ok {
		return nil, domain.ErrNoSelection
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.slots, sessionID)
		return nil, domain.ErrNoSelection
	}
	sel := e.sel
	return &sel, nil
}

func (s *SelectionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, sessionID)
	return nil
}

// Len reports the number of held slots, expired ones included.
func (s *SelectionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
