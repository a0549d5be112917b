// Package gateway owns a consensus call end to end: resolve the providers,
// price the fan-out and validate payment, dispatch in parallel, canonicalize
// and classify every response, reduce to a verdict, and report the round.
//
// The states advance strictly forward. A request rejected during resolution
// or pricing never reaches a provider and is never charged; once dispatch
// starts, every provider outcome is carried through reduction so the verdict
// accounts for all of them.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/quorum/consensus"
	"github.com/buildwithgrove/quorum/cycles"
	"github.com/buildwithgrove/quorum/jsonrpc"
	"github.com/buildwithgrove/quorum/log"
	"github.com/buildwithgrove/quorum/outcall"
	"github.com/buildwithgrove/quorum/provider"
	"github.com/buildwithgrove/quorum/solana"
)

// Gateway executes consensus calls. All dependencies are injected; the
// struct holds no request state and a single instance serves concurrent
// requests.
type Gateway struct {
	Logger polylog.Logger

	// Resolver turns source specs into callable endpoints, registry access
	// and configured API keys included.
	Resolver *provider.Resolver

	// Selector narrows default-source candidates when more providers
	// resolve than the strategy queries. Optional: without it the first
	// candidates in registry order are queried.
	Selector *provider.Selector

	// Stats receives one participation record per completed round.
	Stats *provider.Stats

	// Estimator prices outcalls; Policy turns cost into the caller's charge.
	Estimator cycles.CostEstimator
	Policy    cycles.ChargingPolicy

	// Transport performs the HTTP calls.
	Transport outcall.Transport

	// Reporter receives one observation per executed request. Optional.
	Reporter Reporter

	// DefaultConsensus applies when the call config carries no strategy.
	DefaultConsensus consensus.Strategy

	// Defaults fill unset commitment levels before wire params are built.
	Defaults solana.Defaults

	// Transform is the base canonicalization config; per-call config
	// overrides its knobs.
	Transform solana.TransformConfig
}

// callPlan is everything Execute decides before spending anything: the
// queried providers in dispatch order, a priced outcall per provider, and
// the reduction strategy.
type callPlan struct {
	resolved   []provider.Resolved
	strategy   consensus.Strategy
	requests   []outcall.Request
	costs      []cycles.Cycles
	classifier classifier
}

// Execute runs one consensus call through the full state machine. No lock
// is held across dispatch: workers write disjoint result slots and the
// selection counters commit only after the verdict exists.
//
// Rejections before dispatch return an error and cost nothing. A completed
// round always returns a verdict, even when every provider failed.
func (g *Gateway) Execute(ctx context.Context, spec CallSpec) (consensus.Verdict, error) {
	logger := g.Logger.With("method", string(spec.Method))

	plan, err := g.plan(spec)
	if err != nil {
		g.reject(logger, spec, err)
		return consensus.Verdict{}, err
	}

	charged, err := g.Policy.ValidatePayment(spec.AttachedCycles, plan.costs)
	if err != nil {
		g.reject(logger, spec, err)
		return consensus.Verdict{}, err
	}

	results := outcall.ParallelCall(ctx, g.Transport, plan.requests)

	outcomes := make(consensus.Outcomes, len(results))
	for i, result := range results {
		outcome := plan.classifier.outcome(result)
		if outcome.IsErr() && outcome.Err.Kind == consensus.ErrorKindParse {
			logger.Debug().
				Str("host", hostLabel(plan.resolved[i].Endpoint)).
				Str("body_preview", log.Preview(string(result.Response.Body))).
				Msg("provider response failed JSON-RPC validation")
		}
		outcomes[i] = consensus.SourcedOutcome{
			Source:  plan.resolved[i].Source,
			Outcome: outcome,
		}
	}

	verdict := plan.strategy.Reduce(outcomes)
	rows := providerRows(plan.resolved, results, outcomes, verdict)

	g.recordRound(plan.resolved, rows)
	g.publish(observe(spec.Method, plan.resolved, rows, verdict, charged))

	logger.Debug().
		Int("providers_queried", len(plan.resolved)).
		Bool("consistent", verdict.IsConsistent()).
		Msg("consensus call completed")

	return verdict, nil
}

// Quote prices a call without dispatching it: the exact attached cycles
// Execute would require. Quotes emit no observation.
func (g *Gateway) Quote(spec CallSpec) (cycles.Cycles, error) {
	plan, err := g.plan(spec)
	if err != nil {
		return 0, err
	}
	return g.Policy.TotalCharge(plan.costs), nil
}

// plan resolves, narrows, prices, and assembles the call without touching
// the network. Every failure in here is a config error.
func (g *Gateway) plan(spec CallSpec) (callPlan, error) {
	strategy := spec.Config.strategy(g.DefaultConsensus)
	if err := strategy.Validate(); err != nil {
		return callPlan{}, rejectConfig(err)
	}

	candidates, err := g.Resolver.Resolve(spec.Sources)
	if err != nil {
		return callPlan{}, rejectConfig(err)
	}

	queryCount, err := strategy.QueryCount(len(candidates))
	if err != nil {
		return callPlan{}, rejectConfig(err)
	}

	resolved, err := g.pickQueried(spec.Sources, candidates, queryCount)
	if err != nil {
		return callPlan{}, rejectConfig(err)
	}

	reqID := spec.ID
	if reqID.IsEmpty() {
		reqID = jsonrpc.IDFromInt(1)
	}

	body, err := g.buildBody(spec, reqID)
	if err != nil {
		return callPlan{}, rejectConfig(err)
	}

	maxResponse, err := spec.Config.maxResponseBytes()
	if err != nil {
		return callPlan{}, rejectConfig(err)
	}

	requests := make([]outcall.Request, len(resolved))
	costs := make([]cycles.Cycles, len(resolved))
	for i, r := range resolved {
		headers := make(map[string]string, len(r.Endpoint.Headers))
		requestBytes := uint64(len(body) + len(r.Endpoint.URL))
		for _, h := range r.Endpoint.Headers {
			headers[h.Name] = h.Value
			requestBytes += uint64(len(h.Name) + len(h.Value))
		}
		requests[i] = outcall.Request{
			URL:              r.Endpoint.URL,
			Body:             body,
			Headers:          headers,
			MaxResponseBytes: maxResponse,
		}
		costs[i] = g.Estimator.HTTPRequestCost(requestBytes, maxResponse)
	}

	return callPlan{
		resolved: resolved,
		strategy: strategy,
		requests: requests,
		costs:    costs,
		classifier: classifier{
			raw:       spec.Raw,
			method:    spec.Method,
			reqID:     reqID,
			transform: spec.Config.transformConfig(g.Transform),
		},
	}, nil
}

// pickQueried narrows the candidate list to the strategy's query count.
// Only default sources may be narrowed; a strategy that queries fewer
// providers than the caller explicitly listed is a config error, never a
// silent drop.
func (g *Gateway) pickQueried(sources provider.Sources, candidates []provider.Resolved, queryCount int) ([]provider.Resolved, error) {
	if queryCount >= len(candidates) {
		return candidates, nil
	}
	if sources.Default == nil {
		return nil, fmt.Errorf("%w: strategy queries %d of %d explicitly listed providers",
			consensus.ErrInvalidStrategy, queryCount, len(candidates))
	}

	ids := make([]provider.ID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.Source.Provider
	}
	selected := g.selectIDs(ids, queryCount)

	keep := make(map[provider.ID]bool, len(selected))
	for _, id := range selected {
		keep[id] = true
	}
	// Dispatch order follows resolution order regardless of ranking.
	queried := make([]provider.Resolved, 0, queryCount)
	for _, c := range candidates {
		if keep[c.Source.Provider] {
			queried = append(queried, c)
		}
	}
	return queried, nil
}

func (g *Gateway) selectIDs(ids []provider.ID, total int) []provider.ID {
	if g.Selector == nil {
		return ids[:total]
	}
	return g.Selector.Select(ids, total)
}

// buildBody assembles the JSON-RPC request body shared by every provider.
// Typed calls rebuild positional wire params from the validated argument
// object; raw calls pass their params through verbatim.
func (g *Gateway) buildBody(spec CallSpec, reqID jsonrpc.ID) ([]byte, error) {
	if spec.Method == "" {
		return nil, fmt.Errorf("%w: method is required", solana.ErrInvalidParams)
	}

	req := jsonrpc.NewRequest(reqID, spec.Method, jsonrpc.Params{})
	if spec.Raw {
		if len(spec.Params) > 0 && string(spec.Params) != "null" {
			var params jsonrpc.Params
			if err := json.Unmarshal(spec.Params, &params); err != nil {
				return nil, fmt.Errorf("%w: %v", solana.ErrInvalidParams, err)
			}
			req.Params = params
		}
		return json.Marshal(req)
	}

	params, err := solana.BuildCall(spec.Method, spec.Params, g.Defaults)
	if err != nil {
		return nil, err
	}
	req.Params = params
	return json.Marshal(req)
}

// reject logs a pre-dispatch rejection and emits its observation: the
// reporter sees every request, charged or not.
func (g *Gateway) reject(logger polylog.Logger, spec CallSpec, err error) {
	logger.Warn().Err(err).Msg("consensus call rejected before dispatch")
	g.publish(Observation{
		Method:      spec.Method,
		ResultClass: ResultClassConfigError,
	})
}

func (g *Gateway) publish(obs Observation) {
	if g.Reporter == nil {
		return
	}
	g.Reporter.Publish(obs)
}

// recordRound commits the round to the adaptive selection counters.
// Custom endpoints have no counters; rounds without any registry provider
// do not advance the rotation clock.
func (g *Gateway) recordRound(resolved []provider.Resolved, rows []ProviderOutcome) {
	if g.Stats == nil {
		return
	}
	queried := make([]provider.ID, 0, len(resolved))
	agreed := make(map[provider.ID]bool, len(resolved))
	for i, r := range resolved {
		if r.Source.Provider == "" {
			continue
		}
		queried = append(queried, r.Source.Provider)
		agreed[r.Source.Provider] = rows[i].Agreed
	}
	if len(queried) == 0 {
		return
	}
	g.Stats.RecordRound(queried, func(id provider.ID) bool { return agreed[id] })
}

// providerRows pairs each queried provider with its observed result:
// hostname label, HTTP status or transport failure kind, agreement flag.
func providerRows(resolved []provider.Resolved, results []outcall.Result, outcomes consensus.Outcomes, verdict consensus.Verdict) []ProviderOutcome {
	rows := make([]ProviderOutcome, len(resolved))
	for i := range resolved {
		row := ProviderOutcome{
			Source: resolved[i].Source,
			Host:   hostLabel(resolved[i].Endpoint),
		}
		if err := results[i].Err; err != nil {
			row.ErrorKind = string(outcall.Classify(err).Kind)
		} else {
			row.Status = results[i].Response.StatusCode
		}
		if verdict.IsConsistent() {
			row.Agreed = outcomes[i].Outcome.Equal(*verdict.Consistent)
		}
		rows[i] = row
	}
	return rows
}

func hostLabel(endpoint provider.Endpoint) string {
	host, ok := endpoint.Hostname()
	if !ok {
		return "unknown"
	}
	return host
}

func rejectConfig(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidCallConfig, err)
}
