package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sampad/internal/platform/config"
	"sampad/internal/platform/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the registration schema",
	Long: `Apply or roll back the embedded schema for the configured STORAGE_BACKEND.

Example:
  sampad migrate up        # apply every pending migration
  sampad migrate down      # roll back one migration
  sampad migrate version   # print the current schema version`,
}

func init() {
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m *database.Migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					cmd.Println("migrations applied")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m *database.Migrator) error {
					if err := m.Down(); err != nil {
						return err
					}
					cmd.Println("rolled back one migration")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m *database.Migrator) error {
					v, dirty, err := m.Version()
					if err != nil {
						return fmt.Errorf("read version: %w", err)
					}
					cmd.Printf("version %d (dirty=%t)\n", v, dirty)
					return nil
				})
			},
		},
	)
}

func withMigrator(cmd *cobra.Command, fn func(m *database.Migrator) error) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if cfg.Storage.Backend == config.BackendMemory {
		return fmt.Errorf("STORAGE_BACKEND=memory has no schema to migrate")
	}

	pool, err := database.New(cmd.Context(), databaseConfig(cfg.Storage))
	if err != nil {
		return err
	}
	m, err := database.NewMigrator(pool.DB(), pool.Driver())
	if err != nil {
		_ = pool.Close()
		return err
	}
	defer m.Close() //nolint:errcheck // also closes the pool
	return fn(m)
}
