package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperjump/govretrieve/internal/cli"
	"github.com/hyperjump/govretrieve/internal/models"
	"github.com/hyperjump/govretrieve/pkg/utils"
)

func newVerifyCmd(configPath *string) *cobra.Command {
	var expectedPrinciples []string
	var format string

	cmd := &cobra.Command{
		Use:   "verify <action-description>",
		Short: "Run verify_governance_compliance against the audit log",
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

			result, err := core.VerifyGovernanceCompliance(cmd.Context(), models.VerificationQuery{
				ActionDescription: args[0], ExpectedPrinciples: expectedPrinciples,
			})
			if err != nil {
				return err
			}
			return cli.WriteVerificationResult(os.Stdout, result, cli.OutputFormat(format))
		},
	}
	cmd.Flags().StringSliceVar(&expectedPrinciples, "expected-principles", nil, "principle IDs the action is expected to satisfy")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")
	return cmd
}
