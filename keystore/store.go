// Package keystore persists provider API keys. The default store is an
// in-process map; deployments that share keys across instances back it with
// Postgres behind a read-through cache so the request path never waits on
// the database.
package keystore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/buildwithgrove/quorum/provider"
)

// ErrKeyNotAccepted marks updates targeting a provider that takes no
// credential.
var ErrKeyNotAccepted = errors.New("provider does not accept an API key")

// Store reads and writes provider credentials.
type Store interface {
	// Get returns the stored key for a provider, reporting whether one
	// exists.
	Get(ctx context.Context, id provider.ID) (provider.APIKey, bool, error)

	// Put stores a key for a provider. A nil key deletes the stored one.
	Put(ctx context.Context, id provider.ID, key *provider.APIKey) error

	// List returns the providers that currently have a stored key, sorted.
	List(ctx context.Context) ([]provider.ID, error)
}

// Lookup is a Store that also answers the resolver's synchronous key
// lookups. Only stores holding their keys in memory qualify; a bare
// database store must be wrapped in the cached store first.
type Lookup interface {
	Store
	provider.KeyLookup
}

// bulkReader is an optional fast path for cache refreshes: one round trip
// for the whole key set instead of List plus per-ID Gets.
type bulkReader interface {
	All(ctx context.Context) (map[provider.ID]provider.APIKey, error)
}

// validateUpdate checks one key update against the registry: the provider
// must exist and accept a credential. Key charset and length were already
// enforced when the APIKey value was built.
func validateUpdate(id provider.ID, key *provider.APIKey) error {
	p, ok := provider.Get(id)
	if !ok {
		return fmt.Errorf("%w: %q", provider.ErrUnknownProvider, id)
	}
	if p.Access.Authenticated == nil {
		return fmt.Errorf("%w: %q", ErrKeyNotAccepted, id)
	}
	if key != nil && key.IsZero() {
		return fmt.Errorf("empty API key for provider %q", id)
	}
	return nil
}

// UpdateKeys applies a bulk admin update in provider ID order: non-nil keys
// are stored, nil keys delete. The whole batch is validated against the
// registry before the first write, so one bad entry rejects the update
// without touching the store.
func UpdateKeys(ctx context.Context, store Store, updates map[provider.ID]*provider.APIKey) error {
	ids := slices.Sorted(maps.Keys(updates))
	for _, id := range ids {
		if err := validateUpdate(id, updates[id]); err != nil {
			return err
		}
	}
	for _, id := range ids {
		if err := store.Put(ctx, id, updates[id]); err != nil {
			return fmt.Errorf("failed to store key for provider %q: %w", id, err)
		}
	}
	return nil
}

// VerifyKey reports whether the stored credential for a provider matches
// the supplied raw key. An empty raw key verifies that no key is stored.
func VerifyKey(ctx context.Context, store Store, id provider.ID, rawKey string) (bool, error) {
	stored, ok, err := store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if !ok {
		return rawKey == "", nil
	}
	return stored.Read() == rawKey, nil
}

// ParseUpdates converts a raw id-to-key map, as carried by the admin update
// body or the config seed, into typed updates. Nil values mark deletes.
func ParseUpdates(raw map[string]*string) (map[provider.ID]*provider.APIKey, error) {
	updates := make(map[provider.ID]*provider.APIKey, len(raw))
	for id, value := range raw {
		if value == nil {
			updates[provider.ID(id)] = nil
			continue
		}
		key, err := provider.NewAPIKey(*value)
		if err != nil {
			return nil, fmt.Errorf("invalid API key for provider %q: %w", id, err)
		}
		updates[provider.ID(id)] = &key
	}
	return updates, nil
}
