package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperjump/govretrieve/internal/cli"
	"github.com/hyperjump/govretrieve/internal/models"
	"github.com/hyperjump/govretrieve/pkg/utils"
)

func newEvaluateCmd(configPath *string) *cobra.Command {
	var actionContext, concerns, format string

	cmd := &cobra.Command{
		Use:   "evaluate <planned-action>",
		Short: "Run evaluate_governance against a planned action",
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

			assessment, err := core.EvaluateGovernance(cmd.Context(), models.GovernanceQuery{
				PlannedAction: args[0], Context: actionContext, Concerns: concerns,
			})
			if err != nil {
				return err
			}
			return cli.WriteAssessment(os.Stdout, assessment, cli.OutputFormat(format))
		},
	}
	cmd.Flags().StringVar(&actionContext, "context", "", "additional context for the planned action")
	cmd.Flags().StringVar(&concerns, "concerns", "", "specific concerns to weigh")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")
	return cmd
}
