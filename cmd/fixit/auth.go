package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/garrettladley/fixit/internal/client/fixit"
	"github.com/garrettladley/fixit/internal/config"
	"github.com/garrettladley/fixit/internal/credential"
)

func loginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to FixItNow",
		Long:  "Exchanges your email and password for a bearer token and stores it in the OS keyring.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Read()
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			in := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Email: ")
				line, err := in.ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read email: %w", err)
				}
				email = strings.TrimSpace(line)
			}

			password, err := readPassword(cmd, in)
			if err != nil {
				return err
			}

			client := fixit.New(nil, fixit.WithBaseURL(cfg.APIURL))
			resp, err := client.Auth.Login(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			store, err := openCredentialStore()
			if err != nil {
				return err
			}

			id := credential.Identity{UserID: resp.User.ID, Name: resp.User.Name, Role: resp.User.Role}
			if parsed, err := credential.ParseIdentity(resp.Token); err == nil {
				id.Expiry = parsed.Expiry
			}
			if err := store.Save(resp.Token, id); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", resp.User.Name, resp.User.Role)
			if !id.Expiry.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), "Token expires: %s\n", id.Expiry.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored FixItNow credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCredentialStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear credentials: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

// readPassword hides input on a terminal and falls back to a plain line
// read for pipes.
func readPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
