// Package cycles implements the deterministic cost model for provider
// outcalls. Every quote is pure integer arithmetic over the request's byte
// sizes and the configured node count: computable before any call is made,
// and byte-for-byte reproducible for identical inputs.
package cycles

import "fmt"

// Cycles is the metered payment unit consumed by outcalls.
type Cycles uint64

// Pricing constants for one outcall executed by every node of an
// n-node subnet.
const (
	// baseFee and perNodeBaseFee form the fixed part of an outcall:
	// (baseFee + perNodeBaseFee*n) * n.
	baseFee        = 3_000_000
	perNodeBaseFee = 60_000

	// Per-byte fees, each scaled by the node count.
	requestByteFee  = 400
	responseByteFee = 800

	// CollateralCyclesPerNode is the fixed service margin charged per node
	// on top of the raw outcall cost.
	CollateralCyclesPerNode Cycles = 10_000_000

	// HeaderSizeLimit is the response header allowance added to body size
	// estimates when deriving a max response size.
	HeaderSizeLimit uint64 = 2 * 1024

	// DefaultResponseSizeEstimate bounds responses for methods with small,
	// predictable payloads.
	DefaultResponseSizeEstimate uint64 = 1024 + HeaderSizeLimit

	// MaxResponseBytes is the hard upper bound a single outcall response
	// may be configured to.
	MaxResponseBytes uint64 = 2_000_000
)

// CostEstimator prices a single outcall for a subnet of numNodes replicas.
// Each replica performs the call independently, so every fee component
// scales with the node count.
type CostEstimator struct {
	numNodes uint32
}

func NewCostEstimator(numNodes uint32) CostEstimator {
	return CostEstimator{numNodes: numNodes}
}

func (e CostEstimator) NumNodes() uint32 {
	return e.numNodes
}

// HTTPRequestCost returns the raw outcall fee for a request of the given
// size with the given response bound:
//
//	(baseFee + perNodeBaseFee*n)*n + requestByteFee*n*requestBytes + responseByteFee*n*maxResponseBytes
func (e CostEstimator) HTTPRequestCost(requestBytes, maxResponseBytes uint64) Cycles {
	n := uint64(e.numNodes)
	fixed := (baseFee + perNodeBaseFee*n) * n
	request := requestByteFee * n * requestBytes
	response := responseByteFee * n * maxResponseBytes
	return Cycles(fixed + request + response)
}

// TooFewCyclesError reports an attached payment below the computed quote.
// Raised before any outcall is issued; nothing has been charged.
type TooFewCyclesError struct {
	Expected Cycles
	Received Cycles
}

func (e *TooFewCyclesError) Error() string {
	return fmt.Sprintf("too few cycles: expected %d, received %d", e.Expected, e.Received)
}
