package keystore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/quorum/provider"
)

// defaultRefreshInterval is how often the cache re-reads the backing store
// when the config does not say otherwise.
const defaultRefreshInterval = time.Minute

// cachedStore keeps every key of a backing store in memory, refreshed on a
// fixed interval. Request-path lookups read only the map; writes go through
// to the backing store and update the map synchronously, so this process
// sees its own updates immediately and other processes' updates within one
// refresh interval.
type cachedStore struct {
	logger          polylog.Logger
	back            Store
	refreshInterval time.Duration

	mu   sync.RWMutex
	keys map[provider.ID]provider.APIKey
}

var _ Lookup = &cachedStore{}

// NewCachedStore warms the cache from the backing store, starts the refresh
// loop, and returns the request-path lookup. The loop stops when ctx ends.
func NewCachedStore(ctx context.Context, logger polylog.Logger, back Store, refreshInterval time.Duration) (*cachedStore, error) {
	if refreshInterval <= 0 {
		refreshInterval = defaultRefreshInterval
	}
	cache := &cachedStore{
		logger:          logger,
		back:            back,
		refreshInterval: refreshInterval,
		keys:            make(map[provider.ID]provider.APIKey),
	}

	if err := cache.refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to warm key cache: %w", err)
	}
	go cache.refreshLoop(ctx)

	return cache, nil
}

// APIKey implements provider.KeyLookup from the in-memory map only.
func (c *cachedStore) APIKey(id provider.ID) (provider.APIKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.keys[id]
	return key, ok
}

// Get reads the cache and falls back to the backing store on a miss,
// caching a hit for next time.
func (c *cachedStore) Get(ctx context.Context, id provider.ID) (provider.APIKey, bool, error) {
	if key, ok := c.APIKey(id); ok {
		return key, true, nil
	}

	key, ok, err := c.back.Get(ctx, id)
	if err != nil || !ok {
		return provider.APIKey{}, false, err
	}

	c.mu.Lock()
	c.keys[id] = key
	c.mu.Unlock()
	return key, true, nil
}

func (c *cachedStore) Put(ctx context.Context, id provider.ID, key *provider.APIKey) error {
	if err := c.back.Put(ctx, id, key); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if key == nil {
		delete(c.keys, id)
		return nil
	}
	c.keys[id] = *key
	return nil
}

func (c *cachedStore) List(context.Context) ([]provider.ID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.keys)), nil
}

func (c *cachedStore) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.refresh(ctx); err != nil {
				c.logger.Error().Err(err).Msg("failed to refresh key cache")
			}
		}
	}
}

// refresh replaces the whole map with the backing store's current key set.
func (c *cachedStore) refresh(ctx context.Context) error {
	keys, err := c.readAll(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.keys = keys
	c.mu.Unlock()
	return nil
}

func (c *cachedStore) readAll(ctx context.Context) (map[provider.ID]provider.APIKey, error) {
	if bulk, ok := c.back.(bulkReader); ok {
		return bulk.All(ctx)
	}

	ids, err := c.back.List(ctx)
	if err != nil {
		return nil, err
	}
	keys := make(map[provider.ID]provider.APIKey, len(ids))
	for _, id := range ids {
		key, ok, err := c.back.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			keys[id] = key
		}
	}
	return keys, nil
}
