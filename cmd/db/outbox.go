package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/garrettladley/fixit/internal/outbox"
)

func outboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outbox",
		Short: "List read-state changes waiting to be replayed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			sqlDB, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = sqlDB.Close() }()

			ops, err := outbox.NewSQLite(sqlDB).Pending(ctx)
			if err != nil {
				return err
			}
			if len(ops) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Outbox is empty")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SEQ\tOP\tNOTIFICATION\tQUEUED")
			for _, op := range ops {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", op.Seq, op.Kind, op.NotificationID, op.CreatedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		},
	}
}
