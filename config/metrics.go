package config

import (
	"fmt"

	"github.com/buildwithgrove/quorum/config/utils"
)

/* --------------------------------- Metrics Config Defaults -------------------------------- */

const defaultMetricsAddr = ":9090"

/* --------------------------------- Metrics Config Struct -------------------------------- */

// MetricsConfig contains the Prometheus metrics server settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

/* --------------------------------- Metrics Config Private Helpers -------------------------------- */

// hydrateMetricsDefaults assigns default values to MetricsConfig fields if they are not set.
func (c *MetricsConfig) hydrateMetricsDefaults() {
	if c.Addr == "" {
		c.Addr = defaultMetricsAddr
	}
}

// Validate ensures the metrics configuration is valid.
func (c MetricsConfig) Validate() error {
	if !utils.IsValidListenAddr(c.Addr) {
		return fmt.Errorf("metrics_config.addr: invalid listen address %q", c.Addr)
	}
	return nil
}
