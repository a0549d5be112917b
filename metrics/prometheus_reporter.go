// Package metrics exports gateway observations to Prometheus.
package metrics

import (
	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/quorum/gateway"
)

// PrometheusReporter provides the functionality required by the gateway
// package for publishing metrics on consensus rounds.
var _ gateway.Reporter = &PrometheusReporter{}

// PrometheusReporter converts gateway observations into the Prometheus
// collectors registered by this package.
type PrometheusReporter struct {
	Logger polylog.Logger
}

// Publish exports one observation. Implements the gateway.Reporter
// interface; counter updates never block.
func (pr *PrometheusReporter) Publish(obs gateway.Observation) {
	publishGatewayMetrics(obs)
}
