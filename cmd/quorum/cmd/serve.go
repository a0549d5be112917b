package cmd

import (
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/pokt-network/poktroll/pkg/polylog/polyzero"
	"github.com/spf13/cobra"

	"github.com/buildwithgrove/quorum/config"
	"github.com/buildwithgrove/quorum/gateway"
	"github.com/buildwithgrove/quorum/metrics"
	"github.com/buildwithgrove/quorum/outcall"
	"github.com/buildwithgrove/quorum/provider"
	"github.com/buildwithgrove/quorum/router"
)

// pprofAddr is the address at which the pprof server will be listening.
// This address is selected based on the following link's examples:
// https://pkg.go.dev/net/http/pprof
const pprofAddr = ":6060"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the consensus gateway",
	Long: `Serve loads the YAML config, connects the key store, and runs the
gateway until SIGINT or SIGTERM. The API server, the Prometheus scrape
endpoint and the pprof endpoint all stop together.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	path, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %v", err)
	}

	cfg, err := config.LoadQuorumConfigFromYAML(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	logger := polyzero.NewLogger(
		polyzero.WithLevel(polyzero.ParseLevel(cfg.Logger.Level)),
	)
	logger.Info().Msgf("starting quorum using config file: %s", path)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	keys, healthComponents, closeKeys, err := setupKeystore(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeKeys(); err != nil {
			logger.Error().Err(err).Msg("error closing key store")
		}
	}()

	if err := seedKeys(ctx, cfg, keys); err != nil {
		return err
	}

	override, err := cfg.Service.Override()
	if err != nil {
		return fmt.Errorf("failed to compile provider override: %v", err)
	}

	reporter := &metrics.PrometheusReporter{Logger: logger}
	stats := provider.NewRegistryStats()

	quorum := &gateway.Gateway{
		Logger:           logger,
		Resolver:         provider.NewResolver(keys, override),
		Selector:         provider.NewSelector(stats),
		Stats:            stats,
		Estimator:        cfg.Service.CostEstimator(),
		Policy:           cfg.Service.ChargingPolicy(),
		Transport:        outcall.NewHTTPTransport(),
		Reporter:         reporter,
		DefaultConsensus: cfg.Service.DefaultConsensus,
		Defaults:         cfg.Service.SolanaDefaults(),
		Transform:        cfg.Service.TransformConfig(),
	}

	apiRouter := router.NewRouter(router.RouterParams{
		Quorum:           quorum,
		Keys:             keys,
		HealthComponents: healthComponents,
		Config:           cfg.Router,
		AdminTokens:      cfg.Service.AdminTokens,
		Logger:           logger,
	})

	if err := reporter.ServeMetrics(ctx, cfg.Metrics.Addr); err != nil {
		return fmt.Errorf("failed to start metrics server: %v", err)
	}
	metrics.ServePprof(ctx, logger, pprofAddr)

	// log.Printf is used here to ensure this info is printed to the console regardless of the log level.
	log.Printf("quorum gateway started.\n  Addr: %s\n  Demo mode: %t\n  Registry providers: %d",
		cfg.Router.Addr, cfg.Service.DemoMode, len(provider.Supported()))

	// Start the API router. This blocks until the router is stopped.
	return apiRouter.Start(ctx)
}
