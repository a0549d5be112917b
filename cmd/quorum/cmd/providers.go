package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/buildwithgrove/quorum/provider"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the supported provider registry",
	Run:   runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, _ []string) {
	color.Green("Supported providers:")

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCLUSTER\tACCESS\tHOST")
	for _, p := range provider.Supported() {
		host, ok := p.Hostname()
		if !ok {
			host = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Cluster, accessLabel(p.Access), host)
	}
	w.Flush()
}

func accessLabel(a provider.Access) string {
	switch {
	case a.Unauthenticated != nil:
		return "public"
	case a.RequiresKey():
		return "api key required"
	default:
		return "api key optional"
	}
}
