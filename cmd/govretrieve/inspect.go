package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperjump/govretrieve/internal/cli"
	"github.com/hyperjump/govretrieve/pkg/utils"
)

func newGetPrincipleCmd(configPath *string) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "get-principle <id>",
		Short: "Look up a principle or method by id",
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

			item, err := core.GetPrinciple(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cli.WriteItem(os.Stdout, item, cli.OutputFormat(format))
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")
	return cmd
}

func newListDomainsCmd(configPath *string) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list-domains",
		Short: "List the domains present in the index",
		Args:  cobra.NoArgs,
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

			domains, err := core.ListDomains(cmd.Context())
			if err != nil {
				return err
			}
			return cli.WriteDomains(os.Stdout, domains, cli.OutputFormat(format))
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")
	return cmd
}

func newGetDomainSummaryCmd(configPath *string) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "get-domain-summary <domain>",
		Short: "Show a domain's principles and methods",
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

			summary, err := core.GetDomainSummary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cli.WriteDomainSummary(os.Stdout, summary, cli.OutputFormat(format))
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")
	return cmd
}
