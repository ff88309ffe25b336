package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vmigrate.io/vmigrate/internal/service"
)

func newMigrationsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "migrations", Short: "Migrations and runs"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List migrations",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				e, err := opts.open()
				if err != nil {
					return err
				}
				items, err := e.repos.Migrations.ListAll(c.Context())
				if err != nil {
					return err
				}
				return printMigrations(c.OutOrStdout(), items)
			},
		},
		newRunCmd(opts),
		&cobra.Command{
			Use:   "status <id>",
			Short: "Show the state of a migration",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				e, err := opts.open()
				if err != nil {
					return err
				}
				svc := service.NewMigrationService(e.repos.Migrations, nil, e.audit, 0)
				status, err := svc.Status(c.Context(), args[0])
				if err != nil {
					return err
				}
				return printStatus(c, args[0], status)
			},
		},
	)
	return cmd
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "run <id>",
		Short: "Run a migration and wait for the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			e, err := opts.open()
			if err != nil {
				return err
			}
			if !c.Flags().Changed("delay") {
				delay = e.cfg.Migration.TransferDelay
			}
			svc := service.NewMigrationService(e.repos.Migrations, nil, e.audit, delay)
			m, runErr := svc.Run(c.Context(), args[0], opts.actor)
			if m != nil {
				if err := printStatus(c, m.ID(), service.Status{State: m.State(), LastError: m.LastError()}); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 0, "simulated transfer time (default: migration.transfer_delay)")
	return cmd
}

func printStatus(c *cobra.Command, id string, status service.Status) error {
	out := c.OutOrStdout()
	if status.LastError != "" {
		_, err := fmt.Fprintf(out, "%s\t%s\t%s\n", id, status.State, status.LastError)
		return err
	}
	_, err := fmt.Fprintf(out, "%s\t%s\n", id, status.State)
	return err
}
