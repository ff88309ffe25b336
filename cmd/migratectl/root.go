package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vmigrate.io/vmigrate/internal/config"
	"vmigrate.io/vmigrate/internal/governance/audit"
	"vmigrate.io/vmigrate/internal/pkg/logger"
	"vmigrate.io/vmigrate/internal/repository"
)

// env is what every subcommand works against.
type env struct {
	cfg   *config.Config
	repos *repository.Repositories
	audit *audit.Logger
}

type rootOptions struct {
	configPath string
	actor      string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "migratectl",
		Short:         "Inspect and run workload migrations",
		Long:          `migratectl reads and writes the same data directory as the vmigrate server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml")
	cmd.PersistentFlags().StringVar(&opts.actor, "actor", "migratectl", "actor recorded in the audit trail")
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(
		newWorkloadsCmd(opts),
		newTargetsCmd(opts),
		newMigrationsCmd(opts),
		newAuditCmd(opts),
	)
	return cmd
}

func (o *rootOptions) open() (*env, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	repos, err := repository.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open document stores: %w", err)
	}
	auditLogger, err := audit.NewLogger(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, repos: repos, audit: auditLogger}, nil
}
