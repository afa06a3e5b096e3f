// ABOUTME: CLI command for migrating the focus log between backends.
// ABOUTME: Copies every cycle from one storage backend to another, skipping duplicates.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/pomodoro/internal/config"
	"github.com/harperreed/pomodoro/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy cycles between storage backends",
	Long: `Copy every cycle from one storage backend to another.

Cycles already present in the destination (same UID) are skipped, so the
command can be re-run safely. The source is never modified.

USAGE:

  pomodoro migrate --from sqlite --to charm --dry-run
  pomodoro migrate --from sqlite --to charm

AFTER MIGRATION:

  Switch the default backend:
    pomodoro config set backend charm`,
	Annotations: skipStorage(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom == migrateTo {
			return fmt.Errorf("source and destination are both %s", migrateFrom)
		}

		src, err := openBackend(migrateFrom)
		if err != nil {
			return err
		}
		defer src.Close()

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Println()
			cycles, err := src.ListCycles(nil)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", migrateFrom, err)
			}
			fmt.Printf("Would copy up to %d cycle(s) from %s to %s.\n", len(cycles), migrateFrom, migrateTo)
			return nil
		}

		if migrateTo == "sqlite" {
			if nonEmpty, err := storage.IsDirNonEmpty(cfg.GetDataDir()); err == nil && nonEmpty {
				fmt.Printf("Destination %s already has data; existing cycles are kept.\n", cfg.GetDataDir())
			}
		}

		dst, err := openBackend(migrateTo)
		if err != nil {
			return err
		}
		defer dst.Close()

		summary, err := storage.MigrateData(src, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated %d cycle(s) from %s to %s", summary.Cycles, migrateFrom, migrateTo)
		if summary.Skipped > 0 {
			fmt.Printf("  Skipped (already present): %d\n", summary.Skipped)
		}
		return nil
	},
}

// openBackend opens a repository using the loaded config with the backend overridden.
func openBackend(backend string) (storage.Repository, error) {
	c := *cfg
	if err := c.Set("backend", backend); err != nil {
		return nil, err
	}
	r, err := c.OpenStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", backend, err)
	}
	return r, nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", config.DefaultBackend, "source backend (sqlite or charm)")
	migrateCmd.Flags().StringVar(&migrateTo, "to", "charm", "destination backend (sqlite or charm)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
