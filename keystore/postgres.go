package keystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildwithgrove/quorum/provider"
)

// Keys live in a single table owned by this store.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS provider_api_keys (
	provider_id text PRIMARY KEY,
	api_key     text NOT NULL
)`

// postgresStore persists keys in Postgres through a pgx connection pool.
// It blocks on the database, so the resolver must never see it directly:
// wrap it in the cached store.
type postgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = &postgresStore{}

// NewPostgresStore connects a pool to the given database, ensures the key
// table exists, and returns the store plus a cleanup closing the pool.
func NewPostgresStore(ctx context.Context, connString string) (*postgresStore, func() error, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid postgres connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool.NewWithConfig: %v", err)
	}
	cleanup := func() error {
		pool.Close()
		return nil
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, cleanup, fmt.Errorf("failed to ensure key table: %w", err)
	}

	return &postgresStore{pool: pool}, cleanup, nil
}

// Ping reports whether the database connection is healthy.
func (s *postgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *postgresStore) Get(ctx context.Context, id provider.ID) (provider.APIKey, bool, error) {
	var raw string
	err := s.pool.QueryRow(ctx,
		`SELECT api_key FROM provider_api_keys WHERE provider_id = $1`,
		string(id),
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return provider.APIKey{}, false, nil
	}
	if err != nil {
		return provider.APIKey{}, false, err
	}

	key, err := provider.NewAPIKey(raw)
	if err != nil {
		return provider.APIKey{}, false, fmt.Errorf("stored key for provider %q is invalid: %w", id, err)
	}
	return key, true, nil
}

func (s *postgresStore) Put(ctx context.Context, id provider.ID, key *provider.APIKey) error {
	if err := validateUpdate(id, key); err != nil {
		return err
	}
	if key == nil {
		_, err := s.pool.Exec(ctx,
			`DELETE FROM provider_api_keys WHERE provider_id = $1`,
			string(id),
		)
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO provider_api_keys (provider_id, api_key) VALUES ($1, $2)
		 ON CONFLICT (provider_id) DO UPDATE SET api_key = EXCLUDED.api_key`,
		string(id), key.Read(),
	)
	return err
}

func (s *postgresStore) List(ctx context.Context) ([]provider.ID, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT provider_id FROM provider_api_keys ORDER BY provider_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []provider.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, provider.ID(id))
	}
	return ids, rows.Err()
}

func (s *postgresStore) All(ctx context.Context) (map[provider.ID]provider.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT provider_id, api_key FROM provider_api_keys`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[provider.ID]provider.APIKey)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		key, err := provider.NewAPIKey(raw)
		if err != nil {
			return nil, fmt.Errorf("stored key for provider %q is invalid: %w", id, err)
		}
		keys[provider.ID(id)] = key
	}
	return keys, rows.Err()
}
