package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/banshee-data/edge-sentinel/internal/db"
)

// withMigrations opens the database without migrating it and hands the
// embedded migration files to fn.
func withMigrations(g *globalOptions, fn func(*db.DB, *cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, err := db.OpenDB(g.dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(store, cmd, args)
	}
}

func newMigrateCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  withMigrations(g, func(store *db.DB, cmd *cobra.Command, _ []string) error {
				migFS, err := db.MigrationsFS()
				if err != nil {
					return err
				}
				if err := store.MigrateUp(migFS); err != nil {
					return err
				}
				return printStatus(cmd, store)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE:  withMigrations(g, func(store *db.DB, cmd *cobra.Command, _ []string) error {
				migFS, err := db.MigrationsFS()
				if err != nil {
					return err
				}
				if err := store.MigrateDown(migFS); err != nil {
					return err
				}
				return printStatus(cmd, store)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current and latest schema version",
			Args:  cobra.NoArgs,
			RunE:  withMigrations(g, func(store *db.DB, cmd *cobra.Command, _ []string) error {
				return printStatus(cmd, store)
			}),
		},
		&cobra.Command{
			Use:   "version N",
			Short: "Migrate up or down to version N",
			Args:  cobra.ExactArgs(1),
			RunE:  withMigrations(g, func(store *db.DB, cmd *cobra.Command, args []string) error {
				v, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				migFS, err := db.MigrationsFS()
				if err != nil {
					return err
				}
				if err := store.MigrateTo(migFS, uint(v)); err != nil {
					return err
				}
				return printStatus(cmd, store)
			}),
		},
		&cobra.Command{
			Use:   "force N",
			Short: "Set the schema version without running migrations and clear the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE:  withMigrations(g, func(store *db.DB, cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				migFS, err := db.MigrationsFS()
				if err != nil {
					return err
				}
				if err := store.MigrateForce(migFS, v); err != nil {
					return err
				}
				return printStatus(cmd, store)
			}),
		},
	)
	return cmd
}

func printStatus(cmd *cobra.Command, store *db.DB) error {
	migFS, err := db.MigrationsFS()
	if err != nil {
		return err
	}
	s, err := store.GetMigrationStatus(migFS)
	if err != nil {
		return err
	}
	dirty := ""
	if s.Dirty {
		dirty = " (dirty)"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d of %d%s, %d pending\n", s.Current, s.Latest, dirty, s.Pending())
	return err
}
