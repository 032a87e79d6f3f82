package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ContentCurator/internal/app"
	"ContentCurator/internal/config"
	"ContentCurator/internal/logging"
)

const configPathEnv = "CURATOR_CONFIG"

// commandContext lazily loads configuration and builds the application.
type commandContext struct {
	configFlag *string
	levelFlag  *string
	cfg        *config.Config
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	if c.configFlag != nil && *c.configFlag != "" {
		if err := os.Setenv(configPathEnv, *c.configFlag); err != nil {
			return config.Config{}, fmt.Errorf("set %s: %w", configPathEnv, err)
		}
	}
	cfg := config.Load()
	if c.levelFlag != nil && *c.levelFlag != "" {
		cfg.Logging.Level = *c.levelFlag
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	c.cfg = &cfg
	return cfg, nil
}

func (c *commandContext) withApplication(ctx context.Context, fn func(*app.Application, *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger := logging.NewWithFormat(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil {
			logger.Warn("close application", "error", closeErr)
		}
	}()
	return fn(application, logger)
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var levelFlag string

	cmdCtx := &commandContext{configFlag: &configFlag, levelFlag: &levelFlag}

	rootCmd := &cobra.Command{
		Use:           "curator",
		Short:         "News curation workflow",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			cobra.OnFinalize(stop)
			cmd.SetContext(ctx)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, cmdCtx)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&levelFlag, "log-level", "", "Override the log level")

	rootCmd.AddCommand(newRunCommand(cmdCtx))
	rootCmd.AddCommand(newGatherCommand(cmdCtx))
	rootCmd.AddCommand(newScheduleCommand(cmdCtx))

	return rootCmd
}
