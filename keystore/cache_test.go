package keystore

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog/polyzero"
	"github.com/stretchr/testify/require"

	"github.com/buildwithgrove/quorum/provider"
)

// fakeBack is a Store without the bulk-read fast path, so cache refreshes
// walk the List and Get fallback.
type fakeBack struct {
	mu   sync.Mutex
	keys map[provider.ID]provider.APIKey
}

func newFakeBack() *fakeBack {
	return &fakeBack{keys: make(map[provider.ID]provider.APIKey)}
}

func (f *fakeBack) Get(_ context.Context, id provider.ID) (provider.APIKey, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, ok := f.keys[id]
	return key, ok, nil
}

func (f *fakeBack) Put(_ context.Context, id provider.ID, key *provider.APIKey) error {
	if err := validateUpdate(id, key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == nil {
		delete(f.keys, id)
		return nil
	}
	f.keys[id] = *key
	return nil
}

func (f *fakeBack) List(context.Context) ([]provider.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Sorted(maps.Keys(f.keys)), nil
}

// set writes directly to the fake, bypassing any cache in front of it.
func (f *fakeBack) set(t *testing.T, id provider.ID, raw string) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[id] = mustKey(t, raw)
}

type failingBack struct{ Store }

func (failingBack) List(context.Context) ([]provider.ID, error) {
	return nil, errors.New("backing store unavailable")
}

func Test_NewCachedStore_WarmsFromBackingStore(t *testing.T) {
	back, err := NewSeededMemoryStore(map[provider.ID]*provider.APIKey{
		"alchemy-mainnet": keyPtr(t, "alchemy-key"),
		"ankr-mainnet":    keyPtr(t, "ankr-key"),
	})
	require.NoError(t, err)

	cache, err := NewCachedStore(context.Background(), polyzero.NewLogger(), back, time.Minute)
	require.NoError(t, err)

	key, ok := cache.APIKey("alchemy-mainnet")
	require.True(t, ok)
	require.Equal(t, "alchemy-key", key.Read())

	ids, err := cache.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []provider.ID{"alchemy-mainnet", "ankr-mainnet"}, ids)
}

func Test_NewCachedStore_FailsWhenWarmFails(t *testing.T) {
	_, err := NewCachedStore(context.Background(), polyzero.NewLogger(), failingBack{}, time.Minute)
	require.ErrorContains(t, err, "failed to warm key cache")
}

func Test_CachedStore_GetReadsThroughOnMiss(t *testing.T) {
	back := newFakeBack()
	cache, err := NewCachedStore(context.Background(), polyzero.NewLogger(), back, time.Minute)
	require.NoError(t, err)

	// Written behind the cache's back, so only Get's read-through sees it.
	back.set(t, "alchemy-mainnet", "late-key")

	_, ok := cache.APIKey("alchemy-mainnet")
	require.False(t, ok)

	key, ok, err := cache.Get(context.Background(), "alchemy-mainnet")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "late-key", key.Read())

	// The miss populated the cache.
	key, ok = cache.APIKey("alchemy-mainnet")
	require.True(t, ok)
	require.Equal(t, "late-key", key.Read())
}

func Test_CachedStore_PutWritesThrough(t *testing.T) {
	back := newFakeBack()
	cache, err := NewCachedStore(context.Background(), polyzero.NewLogger(), back, time.Minute)
	require.NoError(t, err)

	require.NoError(t, cache.Put(context.Background(), "ankr-mainnet", keyPtr(t, "new-key")))

	key, ok, err := back.Get(context.Background(), "ankr-mainnet")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "new-key", key.Read())

	key, ok = cache.APIKey("ankr-mainnet")
	require.True(t, ok)
	require.Equal(t, "new-key", key.Read())

	// A rejected write must leave both layers untouched.
	err = cache.Put(context.Background(), "publicnode-mainnet", keyPtr(t, "valid-key"))
	require.ErrorIs(t, err, ErrKeyNotAccepted)
	_, ok = cache.APIKey("publicnode-mainnet")
	require.False(t, ok)

	// Deleting removes the key from both layers.
	require.NoError(t, cache.Put(context.Background(), "ankr-mainnet", nil))
	_, ok, err = back.Get(context.Background(), "ankr-mainnet")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok = cache.APIKey("ankr-mainnet")
	require.False(t, ok)
}

func Test_CachedStore_RefreshReplacesSnapshot(t *testing.T) {
	back := newFakeBack()
	back.set(t, "alchemy-mainnet", "old-key")

	cache, err := NewCachedStore(context.Background(), polyzero.NewLogger(), back, time.Minute)
	require.NoError(t, err)

	// Mutate the backing store directly: rotate one key, drop none, add one.
	back.set(t, "alchemy-mainnet", "rotated-key")
	back.set(t, "ankr-mainnet", "added-key")

	require.NoError(t, cache.refresh(context.Background()))

	key, ok := cache.APIKey("alchemy-mainnet")
	require.True(t, ok)
	require.Equal(t, "rotated-key", key.Read())

	key, ok = cache.APIKey("ankr-mainnet")
	require.True(t, ok)
	require.Equal(t, "added-key", key.Read())

	// A key deleted behind the cache's back disappears on the next refresh.
	require.NoError(t, back.Put(context.Background(), "ankr-mainnet", nil))
	require.NoError(t, cache.refresh(context.Background()))
	_, ok = cache.APIKey("ankr-mainnet")
	require.False(t, ok)
}

func Test_CachedStore_RefreshLoopPicksUpChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	back := newFakeBack()
	cache, err := NewCachedStore(ctx, polyzero.NewLogger(), back, 10*time.Millisecond)
	require.NoError(t, err)

	back.set(t, "alchemy-mainnet", "loop-key")

	require.Eventually(t, func() bool {
		_, ok := cache.APIKey("alchemy-mainnet")
		return ok
	}, time.Second, 5*time.Millisecond)
}
