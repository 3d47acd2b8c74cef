package valkey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samirrijal/demfetch/internal/core/domain"
	"github.com/samirrijal/demfetch/internal/core/ports"
)

const keyPrefix = "demfetch:selection:"

// SelectionStore implements ports.SelectionStore on top of a CacheService,
// one JSON value per session. The TTL restarts on every Save only.
type SelectionStore struct {
	cache      ports.CacheService
	ttlSeconds int
}

// NewSelectionStore creates a SelectionStore.
func NewSelectionStore(cache ports.CacheService, ttlSeconds int) *SelectionStore {
	return &SelectionStore{cache: cache, ttlSeconds: ttlSeconds}
}

func (s *SelectionStore) Save(ctx context.Context, sessionID string, sel *domain.StoredSelection) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	return s.cache.Set(ctx, keyPrefix+sessionID, data, s.ttlSeconds)
}

func (s *SelectionStore) Load(ctx context.Context, sessionID string) (*domain.StoredSelection, error) {
	data, err := s.cache.Get(ctx, keyPrefix+sessionID)
	if errors.Is(err, ErrMiss) {
		return nil, domain.ErrNoSelection
	}
	if err != nil {
		return nil, fmt.Errorf("load selection: %w", err)
	}

	var sel domain.StoredSelection
	if err := json.Unmarshal(data, &sel); err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	return &sel, nil
}

func (s *SelectionStore) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, keyPrefix+sessionID)
}
