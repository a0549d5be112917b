package config

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/buildwithgrove/quorum/consensus"
	"github.com/buildwithgrove/quorum/cycles"
	"github.com/buildwithgrove/quorum/provider"
	"github.com/buildwithgrove/quorum/solana"
)

/* --------------------------------- Service Config Defaults -------------------------------- */

// defaultNumSubnetNodes is the replica count of the fiduciary subnet the
// cost model is calibrated against.
const defaultNumSubnetNodes = 34

/* --------------------------------- Service Config Struct -------------------------------- */

type (
	// ServiceConfig contains the consensus service settings: the cost model
	// inputs, the per-request defaults, and the admin surface.
	ServiceConfig struct {
		// NumSubnetNodes scales every outcall fee component.
		NumSubnetNodes uint32 `yaml:"num_subnet_nodes"`

		// DemoMode makes every call free. Quotes still report real costs.
		DemoMode bool `yaml:"demo_mode"`

		// DefaultCommitment fills unset commitment params on typed calls.
		DefaultCommitment string `yaml:"default_commitment"`

		// SlotRounding is the tolerance used to round slot values before
		// comparison across providers.
		SlotRounding uint64 `yaml:"slot_rounding"`

		// MaxPrioritizationFeeEntries caps getRecentPrioritizationFees
		// results before comparison.
		MaxPrioritizationFeeEntries uint8 `yaml:"max_prioritization_fee_entries"`

		// DefaultConsensus applies to requests that carry no strategy of
		// their own. Omitted or empty means equality; set
		// threshold: {min, total} for min-of-total agreement.
		DefaultConsensus consensus.Strategy `yaml:"default_consensus"`

		// OverrideProvider optionally rewrites every resolved provider URL,
		// for test deployments pointing at a local stand-in.
		OverrideProvider *OverrideProviderConfig `yaml:"override_provider"`

		// AdminTokens are the bearer tokens allowed to mutate stored keys.
		AdminTokens []string `yaml:"admin_tokens"`
	}

	// OverrideProviderConfig is a regex substitution applied to resolved
	// provider URLs.
	OverrideProviderConfig struct {
		Pattern     string `yaml:"pattern"`
		Replacement string `yaml:"replacement"`
	}
)

/* --------------------------------- Service Config Methods -------------------------------- */

// CostEstimator returns the outcall pricer for the configured subnet size.
func (c ServiceConfig) CostEstimator() cycles.CostEstimator {
	return cycles.NewCostEstimator(c.NumSubnetNodes)
}

// ChargingPolicy returns the payment policy: free in demo mode, cost plus
// collateral otherwise.
func (c ServiceConfig) ChargingPolicy() cycles.ChargingPolicy {
	if c.DemoMode {
		return cycles.NewDemoChargingPolicy(c.NumSubnetNodes)
	}
	return cycles.NewChargingPolicy(c.NumSubnetNodes)
}

// SolanaDefaults returns the request-level fallbacks for typed calls.
func (c ServiceConfig) SolanaDefaults() solana.Defaults {
	return solana.Defaults{Commitment: solana.CommitmentLevel(c.DefaultCommitment)}
}

// TransformConfig returns the canonicalization settings for typed calls.
func (c ServiceConfig) TransformConfig() solana.TransformConfig {
	return solana.TransformConfig{
		SlotRoundingError:           c.SlotRounding,
		MaxPrioritizationFeeEntries: c.MaxPrioritizationFeeEntries,
	}
}

// Override compiles the provider URL substitution, or returns nil when none
// is configured.
func (c ServiceConfig) Override() (*provider.Override, error) {
	if c.OverrideProvider == nil {
		return nil, nil
	}
	return provider.NewOverride(c.OverrideProvider.Pattern, c.OverrideProvider.Replacement)
}

/* --------------------------------- Service Config Private Helpers -------------------------------- */

// hydrateServiceDefaults assigns default values to ServiceConfig fields if they are not set.
func (c *ServiceConfig) hydrateServiceDefaults() {
	if c.NumSubnetNodes == 0 {
		c.NumSubnetNodes = defaultNumSubnetNodes
	}
	if c.DefaultCommitment == "" {
		c.DefaultCommitment = string(solana.CommitmentFinalized)
	}
	if c.SlotRounding == 0 {
		c.SlotRounding = solana.DefaultSlotRoundingError
	}
	if c.MaxPrioritizationFeeEntries == 0 {
		c.MaxPrioritizationFeeEntries = solana.DefaultMaxPrioritizationFeeEntries
	}
}

// Validate ensures the service configuration is valid.
func (c ServiceConfig) Validate() error {
	if err := solana.CommitmentLevel(c.DefaultCommitment).Validate(); err != nil {
		return fmt.Errorf("service_config.default_commitment: unknown commitment level %q", c.DefaultCommitment)
	}
	if err := c.DefaultConsensus.Validate(); err != nil {
		return fmt.Errorf("service_config.default_consensus: %v", err)
	}
	if c.OverrideProvider != nil {
		if c.OverrideProvider.Pattern == "" {
			return fmt.Errorf("service_config.override_provider.pattern: must not be empty")
		}
		if _, err := c.Override(); err != nil {
			return fmt.Errorf("service_config.override_provider.pattern: %v", err)
		}
	}
	for i, token := range c.AdminTokens {
		if token == "" || strings.ContainsFunc(token, unicode.IsSpace) {
			return fmt.Errorf("service_config.admin_tokens[%d]: token must be non-empty without whitespace", i)
		}
	}
	return nil
}
