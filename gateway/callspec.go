package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/buildwithgrove/quorum/consensus"
	"github.com/buildwithgrove/quorum/cycles"
	"github.com/buildwithgrove/quorum/jsonrpc"
	"github.com/buildwithgrove/quorum/provider"
	"github.com/buildwithgrove/quorum/solana"
)

// CallConfig carries the per-request knobs of a consensus call. Every field
// is optional; nil falls back to the gateway defaults.
type CallConfig struct {
	// ResponseSizeEstimate is the caller's expected response body size in
	// bytes. The effective outcall ceiling adds the header allowance on top.
	ResponseSizeEstimate *uint64 `json:"responseSizeEstimate,omitempty"`

	// Consensus overrides the default reduction strategy.
	Consensus *consensus.Strategy `json:"consensus,omitempty"`

	// SlotRoundingError overrides the slot rounding tolerance.
	SlotRoundingError *uint64 `json:"slotRoundingError,omitempty"`

	// MaxPrioritizationFeeEntries overrides the prioritization fee list cap.
	MaxPrioritizationFeeEntries *uint8 `json:"maxPrioritizationFeeEntries,omitempty"`
}

// CallSpec is one complete consensus call: where to fan out, what to send,
// and how to price and judge the responses.
type CallSpec struct {
	// Sources selects the providers to query.
	Sources provider.Sources

	// Method is the JSON-RPC method name.
	Method jsonrpc.Method

	// Params holds the method's typed argument object. For raw passthrough
	// calls it holds the positional params array verbatim instead.
	Params json.RawMessage

	// ID correlates the JSON-RPC exchange. Unset defaults to 1.
	ID jsonrpc.ID

	// Raw marks a passthrough call: params travel to providers unmodified,
	// method validation is skipped, and results get only key-order
	// normalization before comparison.
	Raw bool

	Config CallConfig

	// AttachedCycles is the payment accompanying the call.
	AttachedCycles cycles.Cycles
}

// maxResponseBytes returns the effective per-outcall response ceiling:
// the caller's body estimate (or the default) plus the header allowance.
func (c CallConfig) maxResponseBytes() (uint64, error) {
	if c.ResponseSizeEstimate == nil {
		return cycles.DefaultResponseSizeEstimate, nil
	}
	estimate := *c.ResponseSizeEstimate
	if estimate > cycles.MaxResponseBytes-cycles.HeaderSizeLimit {
		return 0, fmt.Errorf("response size estimate %d exceeds the %d byte ceiling",
			estimate, uint64(cycles.MaxResponseBytes-cycles.HeaderSizeLimit))
	}
	return estimate + cycles.HeaderSizeLimit, nil
}

// strategy returns the effective consensus strategy for the call.
func (c CallConfig) strategy(fallback consensus.Strategy) consensus.Strategy {
	if c.Consensus != nil {
		return *c.Consensus
	}
	return fallback
}

// transformConfig overlays the call's canonicalization knobs onto the
// gateway defaults.
func (c CallConfig) transformConfig(base solana.TransformConfig) solana.TransformConfig {
	if c.SlotRoundingError != nil {
		base.SlotRoundingError = *c.SlotRoundingError
	}
	if c.MaxPrioritizationFeeEntries != nil {
		base.MaxPrioritizationFeeEntries = *c.MaxPrioritizationFeeEntries
	}
	return base
}
