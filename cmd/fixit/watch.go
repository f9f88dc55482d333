package main

import (
	"errors"
	"fmt"
	"os"

	go_json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/garrettladley/fixit/internal/notification"
	"github.com/garrettladley/fixit/internal/xslog"
)

func watchCmd() *cobra.Command {
	var countOnly bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream notifications as JSON lines",
		Long:  "Prints the unread snapshot, then every notification delivered in real time, one JSON object per line.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			enc := go_json.NewEncoder(cmd.OutOrStdout())

			var a *app
			a, err := newApp(ctx, os.Stderr, hooks{
				onIngest: func(r notification.Record) {
					if err := enc.Encode(r); err != nil {
						a.logger.ErrorContext(ctx, "failed to write notification", xslog.Error(err))
					}
				},
			})
			if err != nil {
				return err
			}
			defer a.close()

			if countOnly {
				n, err := a.client.Notifications.Count(ctx)
				if err != nil {
					return fmt.Errorf("%w: %w", notification.ErrFetch, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			}

			records, err := a.client.Notifications.Unread(ctx)
			if err != nil {
				return fmt.Errorf("%w: %w", notification.ErrFetch, err)
			}
			a.store.Hydrate(records)
			for _, r := range a.store.Records() {
				if err := enc.Encode(r); err != nil {
					return fmt.Errorf("failed to write notification: %w", err)
				}
			}
			if _, err := a.store.Reconcile(ctx); err != nil {
				a.logger.WarnContext(ctx, "outbox replay after hydrate", xslog.Error(err))
			}

			a.transport.OnStateChange(func(s notification.ConnectionState) {
				a.logger.InfoContext(ctx, "realtime state", xslog.State(s.String()))
			})
			if err := a.transport.Connect(ctx); err != nil {
				if errors.Is(err, notification.ErrMissingCredential) {
					return err
				}
				a.logger.WarnContext(ctx, "initial connect failed, retrying", xslog.Error(err))
			}

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&countOnly, "count", false, "print the server-side unread count and exit")
	return cmd
}
