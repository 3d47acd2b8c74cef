package valkey

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/demfetch/internal/core/domain"
)

// fakeCache is an in-memory ports.CacheService.
type fakeCache struct {
	data   map[string][]byte
	ttls   map[string]int
	getErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	f.data[key] = value
	f.ttls[key] = ttlSeconds
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func TestSelectionStore_RoundTrip(t *testing.T) {
	cache := newFakeCache()
	store := NewSelectionStore(cache, 3600)
	ctx := context.Background()

	want := &domain.StoredSelection{
		Box:        domain.BoundingBox{South: 40, North: 41, West: -74, East: -73},
		Source:     domain.SourceDrawn,
		SelectedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, "abc", want))
	assert.Equal(t, 3600, cache.ttls["demfetch:selection:abc"])

	got, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, want.Box, got.Box)
	assert.Equal(t, want.Source, got.Source)
	assert.True(t, want.SelectedAt.Equal(got.SelectedAt))
}

func TestSelectionStore_LoadDoesNotTouchTTL(t *testing.T) {
	cache := newFakeCache()
	store := NewSelectionStore(cache, 120)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", &domain.StoredSelection{Source: domain.SourceManual}))
	cache.ttls["demfetch:selection:abc"] = 7

	_, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 7, cache.ttls["demfetch:selection:abc"])

	require.NoError(t, store.Save(ctx, "abc", &domain.StoredSelection{Source: domain.SourceDrawn}))
	assert.Equal(t, 120, cache.ttls["demfetch:selection:abc"])
}

func TestSelectionStore_Miss(t *testing.T) {
	_, err := NewSelectionStore(newFakeCache(), 60).Load(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNoSelection)
}

func TestSelectionStore_BackendError(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")

	_, err := NewSelectionStore(cache, 60).Load(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoSelection)
	assert.ErrorIs(t, err, cache.getErr)
}

func TestSelectionStore_CorruptValue(t *testing.T) {
	cache := newFakeCache()
	cache.data["demfetch:selection:x"] = []byte("{not json")

	_, err := NewSelectionStore(cache, 60).Load(context.Background(), "x")
	assert.ErrorContains(t, err, "decode selection")
}

func TestSelectionStore_Delete(t *testing.T) {
	cache := newFakeCache()
	store := NewSelectionStore(cache, 60)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "x", &domain.StoredSelection{}))
	require.NoError(t, store.Delete(ctx, "x"))
	_, err := store.Load(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrNoSelection)
}
