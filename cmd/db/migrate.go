package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/garrettladley/fixit/internal/db"
	"github.com/garrettladley/fixit/internal/migrations"
	"github.com/garrettladley/fixit/internal/paths"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending outbox database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sqlDB, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = sqlDB.Close() }()

			// db.Open has already applied anything pending
			all, err := migrations.Status(cmd.Context(), sqlDB)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range all {
				if m.Applied() {
					fmt.Fprintf(out, "applied  %s  %s\n", m.Name, m.AppliedAt.Format(time.RFC3339))
				} else {
					fmt.Fprintf(out, "pending  %s\n", m.Name)
				}
			}
			return nil
		},
	}
}

func openDB(ctx context.Context) (*sqlx.DB, error) {
	if _, err := paths.EnsureDir(); err != nil {
		return nil, err
	}
	dbPath, err := paths.DB()
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return sqlDB, nil
}
