package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// defaultConfigPath will be appended to the location of
// the executable to get the full path to the config file.
const defaultConfigPath = "config/.config.yaml"

// configPath is the --config override shared by every subcommand.
var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quorum",
	Short: color.GreenString("Quorum - consensus gateway for Solana JSON-RPC"),
	Long: `Quorum fans each JSON-RPC call out to multiple Solana RPC providers,
canonicalizes the responses, and reduces them to a single consensus verdict.

Use 'serve' to run the gateway, 'cost' to price a call without dispatching
it, and 'providers' to list the supported provider registry.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "override the default config path")
}

// getConfigPath returns the full path to the config file relative to the executable.
//
// Priority for determining config path:
// - If `--config` flag is set, use its value
// - Otherwise, use defaultConfigPath relative to executable directory
//
// Examples:
// - Executable in `/app` → config at `/app/config/.config.yaml`
// - Executable in `./bin` → config at `./bin/config/.config.yaml`
func getConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}

	exeDir, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %v", err)
	}

	return filepath.Join(filepath.Dir(exeDir), defaultConfigPath), nil
}
