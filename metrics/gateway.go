package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/buildwithgrove/quorum/gateway"
)

// See the metrics initialization below for details.
const (
	quorumProcess = "quorum"

	requestsTotal              = "requests_total"
	responsesTotal             = "responses_total"
	inconsistentResponsesTotal = "inconsistent_responses_total"
	transportErrorsTotal       = "transport_errors_total"
	cyclesCharged              = "cycles_charged"
	consensusVerdictsTotal     = "consensus_verdicts_total"
)

func init() {
	prometheus.MustRegister(providerRequests)
	prometheus.MustRegister(providerResponses)
	prometheus.MustRegister(inconsistentResponses)
	prometheus.MustRegister(transportErrors)
	prometheus.MustRegister(cyclesChargedHist)
	prometheus.MustRegister(consensusVerdicts)
}

var (
	// providerRequests counts outcalls dispatched to providers.
	// It increments once per provider per round with labels:
	//   - method: the JSON-RPC method
	//   - host: the provider endpoint hostname
	//
	// Usage:
	// - Monitor per-provider load and fan-out volume.
	// - Compare traffic distribution across providers.
	providerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: quorumProcess,
			Name:      requestsTotal,
			Help:      "Total number of provider outcalls dispatched, labeled by method and host.",
		},
		[]string{"method", "host"},
	)

	// providerResponses counts HTTP responses received from providers,
	// whatever their status code. Parse failures of a 2xx body still count
	// here: an HTTP response existed.
	//
	// Usage:
	// - Track per-provider error rates by status code.
	// - Spot providers returning 429/5xx under load.
	providerResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: quorumProcess,
			Name:      responsesTotal,
			Help:      "Total number of provider HTTP responses, labeled by method, host and status code.",
		},
		[]string{"method", "host", "status"},
	)

	// inconsistentResponses counts registry providers that took part in a
	// round whose reduction failed to reach agreement. It increments once
	// per registry provider in the breakdown; custom endpoints are skipped.
	//
	// Usage:
	// - Identify providers that frequently land in disagreeing rounds.
	// - Alert on rising disagreement for a method.
	inconsistentResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: quorumProcess,
			Name:      inconsistentResponsesTotal,
			Help:      "Total provider responses that were part of an inconsistent round, labeled by method and host.",
		},
		[]string{"method", "host"},
	)

	// transportErrors counts outcalls that produced no HTTP response,
	// labeled by the transport failure taxonomy kind.
	//
	// Usage:
	// - Separate provider-side errors (status codes) from network failures.
	// - Track timeout and connection failure rates per provider.
	transportErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: quorumProcess,
			Name:      transportErrorsTotal,
			Help:      "Total provider outcalls failing before an HTTP response, labeled by method, host and failure kind.",
		},
		[]string{"method", "host", "kind"},
	)

	// cyclesChargedHist tracks what completed rounds were charged.
	// Exponential buckets cover single-provider demo calls (zero) through
	// wide fan-outs with large response bounds.
	cyclesChargedHist = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Subsystem: quorumProcess,
			Name:      cyclesCharged,
			Help:      "Histogram of cycles charged per completed round.",
			Buckets:   prometheus.ExponentialBuckets(1e7, 10, 6),
		},
		[]string{"method"},
	)

	// consensusVerdicts counts rounds by how they ended: consistent,
	// inconsistent, or rejected before dispatch (config_error).
	//
	// Usage:
	// - Overall agreement rate per method.
	// - Alert on config_error spikes after a deploy.
	consensusVerdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: quorumProcess,
			Name:      consensusVerdictsTotal,
			Help:      "Total consensus rounds, labeled by method and result class.",
		},
		[]string{"method", "class"},
	)
)

// publishGatewayMetrics publishes all metrics derived from one gateway
// observation.
func publishGatewayMetrics(obs gateway.Observation) {
	method := string(obs.Method)
	if method == "" {
		method = "unknown"
	}

	for _, row := range obs.Providers {
		labels := prometheus.Labels{
			"method": method,
			"host":   row.Host,
		}
		providerRequests.With(labels).Inc()

		if row.ErrorKind != "" {
			transportErrors.With(prometheus.Labels{
				"method": method,
				"host":   row.Host,
				"kind":   row.ErrorKind,
			}).Inc()
		} else {
			providerResponses.With(prometheus.Labels{
				"method": method,
				"host":   row.Host,
				"status": strconv.Itoa(row.Status),
			}).Inc()
		}

		// Custom endpoints carry no registry identity and are excluded from
		// the disagreement breakdown.
		if obs.ResultClass == gateway.ResultClassInconsistent && row.Source.Provider != "" {
			inconsistentResponses.With(labels).Inc()
		}
	}

	// Rejected requests never charge, so they would only skew the
	// distribution of real charges.
	if obs.ResultClass != gateway.ResultClassConfigError {
		cyclesChargedHist.With(prometheus.Labels{"method": method}).Observe(float64(obs.CyclesCharged))
	}

	consensusVerdicts.With(prometheus.Labels{
		"method": method,
		"class":  string(obs.ResultClass),
	}).Inc()
}
