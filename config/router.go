package config

import (
	"fmt"
	"time"

	"github.com/buildwithgrove/quorum/config/utils"
)

/* --------------------------------- Router Config Defaults -------------------------------- */

const (
	// defaultAddr follows the Solana JSON-RPC port convention.
	defaultAddr = ":8899"

	// defaultMaxRequestBodyBytes bounds the JSON-RPC request body. Consensus
	// calls are small; even a full sendTransaction payload fits comfortably.
	defaultMaxRequestBodyBytes = 1 << 20 // 1 MB

	// defaultRequestTimeout is the budget for one whole consensus round,
	// applied as the request context deadline. It must leave the server's
	// write timeout room to flush the response.
	defaultRequestTimeout = 30 * time.Second

	// https://pkg.go.dev/net/http#Server
	// HTTP server's default timeout values.
	defaultHTTPServerReadTimeout  = 10 * time.Second
	defaultHTTPServerWriteTimeout = 60 * time.Second
	defaultHTTPServerIdleTimeout  = 120 * time.Second
)

/* --------------------------------- Router Config Struct -------------------------------- */

// RouterConfig contains server configuration settings.
// See default values above.
type RouterConfig struct {
	Addr                string        `yaml:"addr"`
	MaxRequestBodyBytes int64         `yaml:"max_request_body_bytes"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
	ReadTimeout         time.Duration `yaml:"read_timeout"`
	WriteTimeout        time.Duration `yaml:"write_timeout"`
	IdleTimeout         time.Duration `yaml:"idle_timeout"`
}

/* --------------------------------- Router Config Private Helpers -------------------------------- */

// hydrateRouterDefaults assigns default values to RouterConfig fields if they are not set.
func (c *RouterConfig) hydrateRouterDefaults() {
	if c.Addr == "" {
		c.Addr = defaultAddr
	}
	if c.MaxRequestBodyBytes == 0 {
		c.MaxRequestBodyBytes = defaultMaxRequestBodyBytes
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = defaultHTTPServerReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = defaultHTTPServerWriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = defaultHTTPServerIdleTimeout
	}
}

// Validate ensures the router configuration is valid.
func (c RouterConfig) Validate() error {
	if !utils.IsValidListenAddr(c.Addr) {
		return fmt.Errorf("router_config.addr: invalid listen address %q", c.Addr)
	}
	if c.MaxRequestBodyBytes < 0 {
		return fmt.Errorf("router_config.max_request_body_bytes: must not be negative, got %d", c.MaxRequestBodyBytes)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("router_config.request_timeout: must be positive, got %v", c.RequestTimeout)
	}
	if c.RequestTimeout >= c.WriteTimeout {
		return fmt.Errorf("router_config.request_timeout: %v must be less than write_timeout %v",
			c.RequestTimeout, c.WriteTimeout)
	}
	return nil
}
