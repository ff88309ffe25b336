package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{Use: "audit", Short: "Audit trail"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List audit records, newest last",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			e, err := opts.open()
			if err != nil {
				return err
			}
			records, err := e.audit.List(c.Context())
			if err != nil {
				return err
			}
			if limit > 0 && len(records) > limit {
				records = records[len(records)-limit:]
			}
			table := newTable()
			table.AddRow("TIME", "ACTION", "RESOURCE", "ACTOR")
			for _, r := range records {
				table.AddRow(r.CreatedAt.Format(time.RFC3339), r.Action, r.ResourceType+"/"+r.ResourceID, r.Actor)
			}
			_, err = fmt.Fprintln(c.OutOrStdout(), table)
			return err
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "show at most this many records (0 for all)")
	cmd.AddCommand(list)
	return cmd
}
