package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperjump/govretrieve/internal/cli"
	"github.com/hyperjump/govretrieve/internal/models"
	"github.com/hyperjump/govretrieve/pkg/utils"
)

func newQueryCmd(configPath *string) *cobra.Command {
	var domain string
	var maxResults int
	var includeMethods bool
	var format string

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run query_governance against the built index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := utils.NewLogger(cfg.Debug)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync()

			core, err := buildCore(cfg, logger)
			if err != nil {
				return fmt.Errorf("build core: %w", err)
			}
			defer core.Close()

			result, err := core.QueryGovernance(cmd.Context(), models.RetrievalQuery{
				Query: args[0], Domain: domain, MaxResults: maxResults, IncludeMethods: includeMethods,
			})
			if err != nil {
				return err
			}
			return cli.WriteRetrievalResult(os.Stdout, result, cli.OutputFormat(format))
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "restrict to a single domain")
	cmd.Flags().IntVar(&maxResults, "max-results", 10, "maximum number of hits (1-50)")
	cmd.Flags().BoolVar(&includeMethods, "include-methods", false, "include Method records alongside Principles")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, compact, json")
	return cmd
}
