package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/quorum/config"
	"github.com/buildwithgrove/quorum/keystore"
	"github.com/buildwithgrove/quorum/router"
)

// dbPingTimeout bounds the health check's database round trip.
const dbPingTimeout = 2 * time.Second

// setupKeystore builds the key store the resolver reads from. Without a
// keystore_config section keys live in process memory only; with one they
// live in Postgres behind a read-through cache so every gateway instance
// sees admin updates.
//
// The returned close function releases the database pool, and the health
// components (the database ping, when there is a database) feed /healthz.
func setupKeystore(ctx context.Context, logger polylog.Logger, cfg config.QuorumConfig) (keystore.Lookup, []router.HealthCheckComponent, func() error, error) {
	if !cfg.KeystoreEnabled() {
		return keystore.NewMemoryStore(), nil, func() error { return nil }, nil
	}

	pg, closeDB, err := keystore.NewPostgresStore(ctx, cfg.Keystore.PostgresConnectionString)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to the key database: %v", err)
	}

	cached, err := keystore.NewCachedStore(ctx, logger, pg, cfg.Keystore.CacheRefreshInterval)
	if err != nil {
		_ = closeDB()
		return nil, nil, nil, fmt.Errorf("failed to warm the key cache: %v", err)
	}

	components := []router.HealthCheckComponent{
		databaseHealth{pinger: pg},
	}
	return cached, components, closeDB, nil
}

// seedKeys applies the api_keys block of the config, if any, through the
// same validated bulk-update path the admin endpoint uses.
func seedKeys(ctx context.Context, cfg config.QuorumConfig, keys keystore.Store) error {
	updates, err := cfg.SeedKeys()
	if err != nil {
		return fmt.Errorf("invalid api_keys config: %v", err)
	}
	if len(updates) == 0 {
		return nil
	}
	if err := keystore.UpdateKeys(ctx, keys, updates); err != nil {
		return fmt.Errorf("failed to seed configured API keys: %v", err)
	}
	return nil
}

// databaseHealth reports key database connectivity on /healthz.
type databaseHealth struct {
	pinger interface {
		Ping(ctx context.Context) error
	}
}

func (d databaseHealth) Name() string { return "keystore" }

func (d databaseHealth) IsReady() bool {
	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()
	return d.pinger.Ping(ctx) == nil
}
