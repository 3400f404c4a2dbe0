package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"persona-agent/internal/database"
)

// migrateCmd manages the result history schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Available subcommands:
  up      - Apply all pending migrations
  down    - Roll back every migration
  version - Print the current schema version`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE:  func(cmd *cobra.Command, _ []string) error { return withMigrator(cmd, migrateUp) },
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration",
	Args:  cobra.NoArgs,
	RunE:  func(cmd *cobra.Command, _ []string) error { return withMigrator(cmd, migrateDown) },
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE:  func(cmd *cobra.Command, _ []string) error { return withMigrator(cmd, migrateVersion) },
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func withMigrator(cmd *cobra.Command, fn func(*cobra.Command, *database.Migrator) error) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Database.DSN, cfg.Database.MaxConns, cliLogger)
	if err != nil {
		return err
	}
	defer pool.Close()

	cmd.SetContext(ctx)
	return fn(cmd, database.NewMigrator(pool))
}

func migrateUp(cmd *cobra.Command, m *database.Migrator) error {
	if err := m.Up(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func migrateDown(cmd *cobra.Command, m *database.Migrator) error {
	if err := m.Down(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
	return nil
}

func migrateVersion(cmd *cobra.Command, m *database.Migrator) error {
	version, dirty, err := m.Version(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
	return nil
}
