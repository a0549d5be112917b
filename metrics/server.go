package metrics

import (
	"context"
	"net/http"
	"net/http/pprof"

	"github.com/pokt-network/poktroll/pkg/polylog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const endpointMetrics = "/metrics"

// ServeMetrics starts the Prometheus scrape endpoint on the given address.
// The server runs until ctx ends.
func (pr *PrometheusReporter) ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle(endpointMetrics, promhttp.Handler())

	serveAsync(ctx, pr.Logger, &http.Server{Addr: addr, Handler: mux}, "prometheus metrics")
	return nil
}

// ServePprof starts a pprof server on the given address.
func ServePprof(ctx context.Context, logger polylog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	serveAsync(ctx, logger, &http.Server{Addr: addr, Handler: mux}, "pprof")
}

// serveAsync runs the server in the background and shuts it down when ctx
// ends.
func serveAsync(ctx context.Context, logger polylog.Logger, server *http.Server, name string) {
	go func() {
		logger.Info().Str("endpoint_addr", server.Addr).Msgf("starting %s endpoint", name)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msgf("%s endpoint failed to serve", name)
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info().Str("endpoint_addr", server.Addr).Msgf("stopping %s endpoint", name)
		_ = server.Shutdown(context.Background())
	}()
}
