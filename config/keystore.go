package config

import (
	"fmt"
	"time"

	"github.com/buildwithgrove/quorum/config/utils"
)

/* --------------------------------- Keystore Config Defaults -------------------------------- */

const defaultKeyCacheRefreshInterval = time.Minute

/* --------------------------------- Keystore Config Struct -------------------------------- */

// KeystoreConfig moves provider API keys into Postgres, fronted by an
// in-memory cache refreshed on the configured interval.
type KeystoreConfig struct {
	PostgresConnectionString string        `yaml:"postgres_connection_string"`
	CacheRefreshInterval     time.Duration `yaml:"cache_refresh_interval"`
}

/* --------------------------------- Keystore Config Private Helpers -------------------------------- */

// hydrateKeystoreDefaults assigns default values to KeystoreConfig fields if they are not set.
func (c *KeystoreConfig) hydrateKeystoreDefaults() {
	if c.CacheRefreshInterval == 0 {
		c.CacheRefreshInterval = defaultKeyCacheRefreshInterval
	}
}

// Validate ensures the keystore configuration is valid.
func (c KeystoreConfig) Validate() error {
	if !utils.IsValidDBConnectionString(c.PostgresConnectionString) {
		return fmt.Errorf("keystore_config.postgres_connection_string: not a valid Postgres connection string")
	}
	return nil
}
