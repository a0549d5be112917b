package keystore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/buildwithgrove/quorum/provider"
)

func mustKey(t *testing.T, raw string) provider.APIKey {
	t.Helper()
	key, err := provider.NewAPIKey(raw)
	require.NoError(t, err)
	return key
}

func keyPtr(t *testing.T, raw string) *provider.APIKey {
	t.Helper()
	key := mustKey(t, raw)
	return &key
}

func TestUpdateKeys_AppliesBatch(t *testing.T) {
	store := NewMemoryStore()

	updates := map[provider.ID]*provider.APIKey{
		"alchemy-mainnet": keyPtr(t, "alchemy-key"),
		"ankr-mainnet":    keyPtr(t, "ankr-key"),
	}
	require.NoError(t, UpdateKeys(context.Background(), store, updates))

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []provider.ID{"alchemy-mainnet", "ankr-mainnet"}, ids)

	key, ok := store.APIKey("ankr-mainnet")
	require.True(t, ok)
	require.Equal(t, "ankr-key", key.Read())

	// Deleting one key leaves the other intact.
	require.NoError(t, UpdateKeys(context.Background(), store, map[provider.ID]*provider.APIKey{
		"ankr-mainnet": nil,
	}))
	_, ok = store.APIKey("ankr-mainnet")
	require.False(t, ok)
	_, ok = store.APIKey("alchemy-mainnet")
	require.True(t, ok)
}

func TestUpdateKeys_RejectsBatchBeforeFirstWrite(t *testing.T) {
	tests := []struct {
		name    string
		updates map[provider.ID]*provider.APIKey
		wantErr error
	}{
		{
			name: "unknown provider",
			updates: map[provider.ID]*provider.APIKey{
				"alchemy-mainnet": keyPtr(t, "valid-key"),
				"nonsuch-mainnet": keyPtr(t, "valid-key"),
			},
			wantErr: provider.ErrUnknownProvider,
		},
		{
			name: "provider without key support",
			updates: map[provider.ID]*provider.APIKey{
				"alchemy-mainnet":    keyPtr(t, "valid-key"),
				"publicnode-mainnet": keyPtr(t, "valid-key"),
			},
			wantErr: ErrKeyNotAccepted,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := NewMemoryStore()
			err := UpdateKeys(context.Background(), store, test.updates)
			require.ErrorIs(t, err, test.wantErr)

			// The valid entry must not have been applied.
			ids, listErr := store.List(context.Background())
			require.NoError(t, listErr)
			require.Empty(t, ids)
		})
	}
}

func TestVerifyKey(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "alchemy-mainnet", keyPtr(t, "the-key")))

	tests := []struct {
		name   string
		id     provider.ID
		rawKey string
		want   bool
	}{
		{name: "matching key", id: "alchemy-mainnet", rawKey: "the-key", want: true},
		{name: "wrong key", id: "alchemy-mainnet", rawKey: "other-key", want: false},
		{name: "empty key against stored key", id: "alchemy-mainnet", rawKey: "", want: false},
		{name: "absent key verified by empty string", id: "ankr-mainnet", rawKey: "", want: true},
		{name: "absent key against non-empty string", id: "ankr-mainnet", rawKey: "x", want: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ok, err := VerifyKey(context.Background(), store, test.id, test.rawKey)
			require.NoError(t, err)
			require.Equal(t, test.want, ok)
		})
	}
}

func TestParseUpdates(t *testing.T) {
	raw := "raw-key"
	updates, err := ParseUpdates(map[string]*string{
		"alchemy-mainnet": &raw,
		"ankr-mainnet":    nil,
	})
	require.NoError(t, err)
	require.Len(t, updates, 2)
	require.Nil(t, updates["ankr-mainnet"])
	require.Equal(t, "raw-key", updates["alchemy-mainnet"].Read())
}

func TestParseUpdates_RejectsInvalidKey(t *testing.T) {
	bad := "has spaces in it"
	_, err := ParseUpdates(map[string]*string{"alchemy-mainnet": &bad})
	require.Error(t, err)
}
