package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/garrettladley/fixit/internal/credential"
	"github.com/garrettladley/fixit/internal/paths"
)

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Show the stored bearer token and identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := paths.EnsureDir(); err != nil {
				return err
			}
			dir, err := paths.Keys()
			if err != nil {
				return err
			}
			ring, err := credential.OpenKeyring(dir)
			if err != nil {
				return err
			}
			store := credential.NewStore(ring)

			token, err := store.Token()
			if err != nil {
				return err
			}
			id, err := credential.ParseIdentity(token)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Access Token:  %s\n", token)
			fmt.Fprintf(out, "User:          %s (%s)\n", id.UserID, id.Role)
			if id.Expiry.IsZero() {
				fmt.Fprintf(out, "Expiry:        none\n")
				return nil
			}
			fmt.Fprintf(out, "Expiry:        %s\n", id.Expiry.Format(time.RFC3339))
			if id.Expired(time.Now()) {
				fmt.Fprintf(out, "Status:        EXPIRED\n")
			} else {
				fmt.Fprintf(out, "Status:        Valid (expires in %s)\n", time.Until(id.Expiry).Round(time.Second))
			}
			return nil
		},
	}
}
