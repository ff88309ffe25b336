package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"vmigrate.io/vmigrate/internal/domain"
)

const maxColWidth = 60

func newTable() *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.Wrap = true
	return table
}

// formatStorage renders mount points as "C: 50 GiB, D: 100 GiB".
func formatStorage(mps []domain.MountPoint) string {
	if len(mps) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(mps))
	for _, mp := range mps {
		parts = append(parts, fmt.Sprintf("%s %s", mp.Name(), humanize.IBytes(uint64(mp.TotalSize()))))
	}
	return strings.Join(parts, ", ")
}

func totalSize(mps []domain.MountPoint) string {
	var total uint64
	for _, mp := range mps {
		total += uint64(mp.TotalSize())
	}
	return humanize.IBytes(total)
}

func newWorkloadsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "workloads", Short: "Workload inventory"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List workloads",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			e, err := opts.open()
			if err != nil {
				return err
			}
			items, err := e.repos.Workloads.ListAll(c.Context())
			if err != nil {
				return err
			}
			return printWorkloads(c.OutOrStdout(), items)
		},
	})
	return cmd
}

func printWorkloads(w io.Writer, items []*domain.Workload) error {
	table := newTable()
	table.AddRow("ID", "IP", "USER", "STORAGE", "TOTAL")
	for _, wl := range items {
		table.AddRow(wl.ID(), wl.IP(), wl.Credentials().Username(), formatStorage(wl.Storage()), totalSize(wl.Storage()))
	}
	_, err := fmt.Fprintln(w, table)
	return err
}

func newTargetsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "targets", Short: "Migration targets"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List migration targets",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			e, err := opts.open()
			if err != nil {
				return err
			}
			items, err := e.repos.MigrationTargets.ListAll(c.Context())
			if err != nil {
				return err
			}
			return printTargets(c.OutOrStdout(), items)
		},
	})
	return cmd
}

func printTargets(w io.Writer, items []*domain.MigrationTarget) error {
	table := newTable()
	table.AddRow("ID", "CLOUD", "TARGET VM", "STORAGE")
	for _, t := range items {
		vm := t.TargetVM()
		table.AddRow(t.ID(), string(t.CloudType()), vm.IP(), formatStorage(vm.Storage()))
	}
	_, err := fmt.Fprintln(w, table)
	return err
}

func printMigrations(w io.Writer, items []*domain.Migration) error {
	table := newTable()
	table.AddRow("ID", "STATE", "SOURCE", "CLOUD", "SELECTED", "LAST ERROR")
	for _, m := range items {
		lastErr := m.LastError()
		if lastErr == "" {
			lastErr = "-"
		}
		table.AddRow(m.ID(), string(m.State()), m.Source().IP(), string(m.MigrationTarget().CloudType()),
			formatStorage(m.SelectedMountPoints()), lastErr)
	}
	_, err := fmt.Fprintln(w, table)
	return err
}
