// Command govretrieve builds and serves the governance retrieval index.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:     "govretrieve",
		Short:   "Semantic retrieval and governance evaluation over an AI governance corpus",
		Version: version,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "config file path")

	root.AddCommand(
		newBuildIndexCmd(&configPath),
		newServeCmd(&configPath),
		newQueryCmd(&configPath),
		newEvaluateCmd(&configPath),
		newVerifyCmd(&configPath),
		newGetPrincipleCmd(&configPath),
		newListDomainsCmd(&configPath),
		newGetDomainSummaryCmd(&configPath),
	)
	return root
}
