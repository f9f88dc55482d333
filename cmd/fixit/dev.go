//go:build !release

package main

import (
	"fmt"

	go_json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/garrettladley/fixit/internal/client/fixit"
	"github.com/garrettladley/fixit/internal/config"
	"github.com/garrettladley/fixit/internal/credential"
	"github.com/garrettladley/fixit/internal/notification"
)

func addDevCommands(rootCmd *cobra.Command) {
	dev := &cobra.Command{
		Use:   "dev",
		Short: "Development helpers for the local dev server",
	}
	dev.AddCommand(publishCmd())
	rootCmd.AddCommand(dev)
}

func publishCmd() *cobra.Command {
	var req fixit.PublishRequest

	cmd := &cobra.Command{
		Use:   "publish <recipient-id> <message>",
		Short: "Send a notification through the dev server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Read()
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			tokens := credential.Static(cfg.Token)
			if cfg.Token == "" {
				store, err := openCredentialStore()
				if err != nil {
					return err
				}
				tokens = credential.NewKeyringSource(store)
			}

			req.RecipientID = notification.ID(args[0])
			req.MessageContent = args[1]

			client := fixit.New(tokens, fixit.WithBaseURL(cfg.APIURL))
			record, err := client.Notifications.Publish(ctx, req)
			if err != nil {
				return fmt.Errorf("publish failed: %w", err)
			}

			return go_json.NewEncoder(cmd.OutOrStdout()).Encode(record)
		},
	}

	cmd.Flags().StringVar((*string)(&req.SenderID), "sender-id", "", "override the sender id")
	cmd.Flags().StringVar((*string)(&req.SenderRole), "sender-role", "", "override the sender role (ADMIN, PROVIDER, CUSTOMER)")
	return cmd
}
