package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/pokt-network/poktroll/pkg/polylog/polyzero"
	"github.com/spf13/cobra"

	"github.com/buildwithgrove/quorum/config"
	"github.com/buildwithgrove/quorum/consensus"
	"github.com/buildwithgrove/quorum/gateway"
	"github.com/buildwithgrove/quorum/jsonrpc"
	"github.com/buildwithgrove/quorum/keystore"
	"github.com/buildwithgrove/quorum/provider"
)

var costFlags struct {
	method       string
	params       string
	cluster      string
	providers    []string
	custom       []string
	raw          bool
	sizeEstimate uint64
	min          uint8
	total        uint8
}

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Price a consensus call without dispatching it",
	Long: `Cost prints the cycles a call requires, computed by the same planning
path the gateway runs before dispatch. With --config the quote matches that
deployment's node count and charging mode; without one the stock defaults
apply.`,
	RunE: runCost,
}

func init() {
	costCmd.Flags().StringVar(&costFlags.method, "method", "", "JSON-RPC method to price (required)")
	costCmd.Flags().StringVar(&costFlags.params, "params", "", "method params as JSON")
	costCmd.Flags().StringVar(&costFlags.cluster, "cluster", "mainnet", "resolve default providers for this cluster")
	costCmd.Flags().StringSliceVar(&costFlags.providers, "providers", nil, "query these registry providers instead of the cluster default")
	costCmd.Flags().StringSliceVar(&costFlags.custom, "custom", nil, "query these endpoint URLs instead of registry providers")
	costCmd.Flags().BoolVar(&costFlags.raw, "raw", false, "treat the params as a raw positional array and skip method validation")
	costCmd.Flags().Uint64Var(&costFlags.sizeEstimate, "response-size-estimate", 0, "expected response body size in bytes")
	costCmd.Flags().Uint8Var(&costFlags.min, "min", 0, "threshold consensus: minimum agreeing providers")
	costCmd.Flags().Uint8Var(&costFlags.total, "total", 0, "threshold consensus: providers to query")
	_ = costCmd.MarkFlagRequired("method")

	rootCmd.AddCommand(costCmd)
}

func runCost(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfigOrDefault()
	if err != nil {
		return err
	}

	spec, err := costSpec()
	if err != nil {
		return err
	}

	// Resolution prices keyed providers the way serve would resolve them,
	// so the seeded api_keys block participates in the quote.
	seed, err := cfg.SeedKeys()
	if err != nil {
		return fmt.Errorf("invalid api_keys config: %v", err)
	}
	keys, err := keystore.NewSeededMemoryStore(seed)
	if err != nil {
		return err
	}

	override, err := cfg.Service.Override()
	if err != nil {
		return fmt.Errorf("failed to compile provider override: %v", err)
	}

	quorum := &gateway.Gateway{
		Logger:           polyzero.NewLogger(),
		Resolver:         provider.NewResolver(keys, override),
		Estimator:        cfg.Service.CostEstimator(),
		Policy:           cfg.Service.ChargingPolicy(),
		DefaultConsensus: cfg.Service.DefaultConsensus,
		Defaults:         cfg.Service.SolanaDefaults(),
		Transform:        cfg.Service.TransformConfig(),
	}

	cost, err := quorum.Quote(spec)
	if err != nil {
		return err
	}

	fmt.Printf("%d\n", uint64(cost))
	return nil
}

func costSpec() (gateway.CallSpec, error) {
	sources, err := costSources()
	if err != nil {
		return gateway.CallSpec{}, err
	}

	spec := gateway.CallSpec{
		Sources: sources,
		Method:  jsonrpc.Method(costFlags.method),
		Raw:     costFlags.raw,
	}
	if costFlags.params != "" {
		spec.Params = json.RawMessage(costFlags.params)
	}
	if costFlags.sizeEstimate > 0 {
		spec.Config.ResponseSizeEstimate = &costFlags.sizeEstimate
	}
	if costFlags.min > 0 {
		threshold := &consensus.Threshold{Min: costFlags.min}
		if costFlags.total > 0 {
			threshold.Total = &costFlags.total
		}
		spec.Config.Consensus = &consensus.Strategy{Threshold: threshold}
	}
	return spec, nil
}

func costSources() (provider.Sources, error) {
	switch {
	case len(costFlags.providers) > 0 && len(costFlags.custom) > 0:
		return provider.Sources{}, errors.New("--providers and --custom are mutually exclusive")
	case len(costFlags.providers) > 0:
		ids := make([]provider.ID, len(costFlags.providers))
		for i, id := range costFlags.providers {
			ids[i] = provider.ID(id)
		}
		return provider.Sources{Providers: ids}, nil
	case len(costFlags.custom) > 0:
		endpoints := make([]provider.Endpoint, len(costFlags.custom))
		for i, url := range costFlags.custom {
			endpoints[i] = provider.Endpoint{URL: url}
		}
		return provider.Sources{Custom: endpoints}, nil
	default:
		cluster := provider.Cluster(costFlags.cluster)
		return provider.Sources{Default: &cluster}, nil
	}
}

// loadConfigOrDefault loads the config file when one is present. A --config
// flag names a file that must exist; without the flag, a missing file at
// the default path falls back to the stock defaults.
func loadConfigOrDefault() (config.QuorumConfig, error) {
	if configPath != "" {
		cfg, err := config.LoadQuorumConfigFromYAML(configPath)
		if err != nil {
			return config.QuorumConfig{}, fmt.Errorf("failed to load config: %v", err)
		}
		return cfg, nil
	}

	path, err := getConfigPath()
	if err != nil {
		return config.Default(), nil
	}
	cfg, err := config.LoadQuorumConfigFromYAML(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.Default(), nil
		}
		return config.QuorumConfig{}, fmt.Errorf("failed to load config: %v", err)
	}
	return cfg, nil
}
