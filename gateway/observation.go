package gateway

import (
	"github.com/buildwithgrove/quorum/consensus"
	"github.com/buildwithgrove/quorum/cycles"
	"github.com/buildwithgrove/quorum/jsonrpc"
	"github.com/buildwithgrove/quorum/provider"
)

// ResultClass buckets how a request ended, for observation labels.
type ResultClass string

const (
	// ResultClassConsistent marks a round whose reduction reached agreement.
	ResultClassConsistent ResultClass = "consistent"

	// ResultClassInconsistent marks a round whose providers disagreed.
	ResultClassInconsistent ResultClass = "inconsistent"

	// ResultClassConfigError marks a request rejected before any provider
	// was contacted. Rejected requests are never charged.
	ResultClassConfigError ResultClass = "config_error"
)

// ProviderOutcome is one queried provider's part in a completed round.
type ProviderOutcome struct {
	// Source identifies the provider: registry ID or custom endpoint URL.
	Source provider.Source

	// Host is the endpoint hostname used as a metrics label. "unknown" when
	// the URL does not yield one.
	Host string

	// Status is the HTTP status code, or zero when no response existed.
	Status int

	// ErrorKind is the transport failure taxonomy kind, empty when an HTTP
	// response was received.
	ErrorKind string

	// Agreed reports membership in the winning group of a consistent
	// verdict. Always false for inconsistent rounds.
	Agreed bool
}

// Observation is the flat record of one executed request, handed to the
// Reporter exactly once after reduction. Rejected requests produce an
// observation too, with ResultClass config_error and nothing charged.
type Observation struct {
	Method            jsonrpc.Method
	ResultClass       ResultClass
	ProvidersQueried  int
	ProvidersAgreeing int
	CyclesCharged     cycles.Cycles
	Providers         []ProviderOutcome
}

// Reporter consumes request observations. The gateway publishes
// synchronously after reduction, so implementations must not block.
type Reporter interface {
	Publish(Observation)
}

// observe builds the completed-round observation from the reduction inputs
// and its verdict.
func observe(
	method jsonrpc.Method,
	resolved []provider.Resolved,
	rows []ProviderOutcome,
	verdict consensus.Verdict,
	charged cycles.Cycles,
) Observation {
	obs := Observation{
		Method:           method,
		ResultClass:      ResultClassInconsistent,
		ProvidersQueried: len(resolved),
		CyclesCharged:    charged,
		Providers:        rows,
	}
	if verdict.IsConsistent() {
		obs.ResultClass = ResultClassConsistent
		for _, row := range rows {
			if row.Agreed {
				obs.ProvidersAgreeing++
			}
		}
	}
	return obs
}
