package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/demfetch/internal/core/domain"
)

// --- Mock SelectionStore ---

type mockSelectionStore struct {
	mu      sync.Mutex
	slots   map[string]*domain.StoredSelection
	saveErr error
	saves   int
}

func newMockSelectionStore() *mockSelectionStore {
	return &mockSelectionStore{slots: make(map[string]*domain.StoredSelection)}
}

func (m *mockSelectionStore) Save(ctx context.Context, sessionID string, sel *domain.StoredSelection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	cp := *sel
	m.slots[sessionID] = &cp
	return nil
}

func (m *mockSelectionStore) Load(ctx context.Context, sessionID string) (*domain.StoredSelection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sel, ok := m.slots[sessionID]
	if !ok {
		return nil, domain.ErrNoSelection
	}
	cp := *sel
	return &cp, nil
}

func (m *mockSelectionStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, sessionID)
	return nil
}

// --- Mock DEMSource ---

type mockDEMSource struct {
	fetchFn func(ctx context.Context, box domain.BoundingBox, apiKey string) ([]byte, error)
	calls   int
}

func (m *mockDEMSource) FetchDEM(ctx context.Context, box domain.BoundingBox, apiKey string) ([]byte, error) {
	m.calls++
	if m.fetchFn != nil {
		return m.fetchFn(ctx, box, apiKey)
	}
	return nil, nil
}

// --- Mock RasterSink ---

type mockRasterSink struct {
	writeErr error
	writes   map[string][]byte
}

func (m *mockRasterSink) WriteRaster(ctx context.Context, path string, data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	if m.writes == nil {
		m.writes = make(map[string][]byte)
	}
	m.writes[path] = append([]byte(nil), data...)
	return nil
}

// --- Static credentials ---

type staticCreds string

func (s staticCreds) APIKey() string { return string(s) }

// --- Recording publisher ---

type recordingPublisher struct {
	events []*domain.DownloadEvent
}

func (r *recordingPublisher) PublishDownloadEvent(ctx context.Context, ev *domain.DownloadEvent) error {
	r.events = append(r.events, ev)
	return nil
}
