package main

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/iliyamo/airline-reservation/internal/database"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		migrateSub("up", "Apply all pending migrations", database.MigrateUp),
		migrateSub("down", "Roll back the latest migration", database.MigrateDown),
		&cobra.Command{
			Use:   "status",
			Short: "Print applied and pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := setup()
				if err != nil {
					return err
				}
				db, err := database.Open(cmd.Context(), database.FromConfig(cfg), log)
				if err != nil {
					return err
				}
				defer db.Close()
				return database.MigrateStatus(cmd.Context(), db, cfg.DBDriver, cmd.OutOrStdout())
			},
		},
	)
	return cmd
}

func migrateSub(use, short string, run func(ctx context.Context, db *sql.DB, driver string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), database.FromConfig(cfg), log)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := run(cmd.Context(), db, cfg.DBDriver); err != nil {
				return err
			}
			log.Info("migrate "+use+" complete", "driver", cfg.DBDriver)
			return nil
		},
	}
}
