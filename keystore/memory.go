package keystore

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/buildwithgrove/quorum/provider"
)

// memoryStore is the default key store: a mutex-guarded in-process map.
// Keys live only as long as the process.
type memoryStore struct {
	mu   sync.RWMutex
	keys map[provider.ID]provider.APIKey
}

var _ Lookup = &memoryStore{}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *memoryStore {
	return &memoryStore{keys: make(map[provider.ID]provider.APIKey)}
}

// NewSeededMemoryStore builds an in-process store holding the given keys,
// validating every entry against the registry.
func NewSeededMemoryStore(seed map[provider.ID]*provider.APIKey) (*memoryStore, error) {
	store := &memoryStore{keys: make(map[provider.ID]provider.APIKey, len(seed))}
	if err := UpdateKeys(context.Background(), store, seed); err != nil {
		return nil, err
	}
	return store, nil
}

// APIKey implements provider.KeyLookup for the resolver.
func (s *memoryStore) APIKey(id provider.ID) (provider.APIKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[id]
	return key, ok
}

func (s *memoryStore) Get(_ context.Context, id provider.ID) (provider.APIKey, bool, error) {
	key, ok := s.APIKey(id)
	return key, ok, nil
}

func (s *memoryStore) Put(_ context.Context, id provider.ID, key *provider.APIKey) error {
	if err := validateUpdate(id, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if key == nil {
		delete(s.keys, id)
		return nil
	}
	s.keys[id] = *key
	return nil
}

func (s *memoryStore) List(context.Context) ([]provider.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.keys)), nil
}

func (s *memoryStore) All(context.Context) (map[provider.ID]provider.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.keys), nil
}
