package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"ContentCurator/internal/app"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full workflow once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, cmdCtx)
		},
	}
}

func runWorkflow(cmd *cobra.Command, cmdCtx *commandContext) error {
	return cmdCtx.withApplication(cmd.Context(), func(application *app.Application, _ *slog.Logger) error {
		result, err := application.Run(cmd.Context())
		cmd.Print(renderRunSummary(result))
		return err
	})
}

func newGatherCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "gather",
		Short: "Run only news discovery and print the records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withApplication(cmd.Context(), func(application *app.Application, _ *slog.Logger) error {
				records, err := application.Gather(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Print(renderRecords(records))
				return nil
			})
		},
	}
}

func newScheduleCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the workflow on the configured cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withApplication(cmd.Context(), func(application *app.Application, logger *slog.Logger) error {
				err := application.Schedule(cmd.Context())
				logger.Info("scheduler stopped")
				return err
			})
		},
	}
}
