// Package config loads and validates the gateway's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/buildwithgrove/quorum/keystore"
	"github.com/buildwithgrove/quorum/provider"
)

/* ---------------------------------  Quorum Config Struct -------------------------------- */

// QuorumConfig is the top level struct holding every configuration section
// parsed from the YAML config file.
type QuorumConfig struct {
	Logger  LoggerConfig  `yaml:"logger_config"`
	Router  RouterConfig  `yaml:"router_config"`
	Metrics MetricsConfig `yaml:"metrics_config"`
	Service ServiceConfig `yaml:"service_config"`

	// Keystore is optional: when set, provider API keys are persisted in
	// Postgres behind a refresh cache instead of process memory.
	Keystore *KeystoreConfig `yaml:"keystore_config"`

	// APIKeys optionally seeds provider credentials at startup,
	// provider ID to raw key.
	APIKeys map[string]*string `yaml:"api_keys"`
}

// Default returns the configuration an empty YAML file would produce:
// every section at its hydrated default.
func Default() QuorumConfig {
	var config QuorumConfig
	config.hydrateDefaults()
	return config
}

// LoadQuorumConfigFromYAML reads a YAML configuration file from the
// specified path and unmarshals its content into a QuorumConfig instance.
func LoadQuorumConfigFromYAML(path string) (QuorumConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return QuorumConfig{}, err
	}

	var config QuorumConfig
	if err = yaml.Unmarshal(data, &config); err != nil {
		return QuorumConfig{}, err
	}

	// hydrate required fields and set defaults for optional fields
	config.hydrateDefaults()

	return config, config.Validate()
}

/* --------------------------------- Quorum Config Methods -------------------------------- */

// KeystoreEnabled reports whether keys live in Postgres rather than memory.
func (c QuorumConfig) KeystoreEnabled() bool {
	return c.Keystore != nil
}

// SeedKeys converts the api_keys section into validated keystore updates.
func (c QuorumConfig) SeedKeys() (map[provider.ID]*provider.APIKey, error) {
	return keystore.ParseUpdates(c.APIKeys)
}

/* --------------------------------- Quorum Config Hydration Helpers -------------------------------- */

func (c *QuorumConfig) hydrateDefaults() {
	c.Logger.hydrateLoggerDefaults()
	c.Router.hydrateRouterDefaults()
	c.Metrics.hydrateMetricsDefaults()
	c.Service.hydrateServiceDefaults()
	if c.Keystore != nil {
		c.Keystore.hydrateKeystoreDefaults()
	}
}

/* --------------------------------- Quorum Config Validation Helpers -------------------------------- */

// Validate checks every section, naming the offending field on failure.
func (c QuorumConfig) Validate() error {
	if err := c.Logger.Validate(); err != nil {
		return err
	}
	if err := c.Router.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Service.Validate(); err != nil {
		return err
	}
	if c.Keystore != nil {
		if err := c.Keystore.Validate(); err != nil {
			return err
		}
	}
	if _, err := c.SeedKeys(); err != nil {
		return fmt.Errorf("api_keys: %w", err)
	}
	return nil
}
