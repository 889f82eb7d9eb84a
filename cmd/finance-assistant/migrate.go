package main

import (
	"context"
	"fmt"
	"log/slog"

	"finance-assistant/internal/database"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres schema",
		Long: `Apply, roll back or inspect the SQL migrations in MIGRATIONS_PATH.

Only the postgres driver is supported; sqlite databases are migrated by serve.`,
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrationRunner(cmd.Context(), func(runner *database.MigrationRunner) error {
				if err := runner.RunMigrations(); err != nil {
					return err
				}
				return runner.LoadSeeds()
			})
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			return withMigrationRunner(cmd.Context(), func(runner *database.MigrationRunner) error {
				return runner.RollbackMigrations(steps)
			})
		},
	}
	down.Flags().Int("steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrationRunner(cmd.Context(), func(runner *database.MigrationRunner) error {
				v, dirty, err := runner.GetMigrationStatus()
				if err != nil {
					return fmt.Errorf("failed to read migration version: %w", err)
				}
				slog.Info("schema version", "version", v, "dirty", dirty)
				return nil
			})
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func withMigrationRunner(ctx context.Context, fn func(runner *database.MigrationRunner) error) error {
	sqlDB, err := database.OpenMigrationDB(&cfg.Database)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	runner := database.NewMigrationRunner(sqlDB, cfg.Database.Migrations)
	if err := runner.WaitForDatabase(ctx); err != nil {
		return fmt.Errorf("database is not ready: %w", err)
	}

	return fn(runner)
}
