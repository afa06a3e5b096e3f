// ABOUTME: CLI command for importing a JSON export.
// ABOUTME: Cycles already present (same UID) are skipped.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/pomodoro/internal/storage"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import cycles from a JSON export",
	Long: `Import cycles from a file written by 'pomodoro export json'.

Cycles that already exist (same UID) are skipped, so importing the same
backup twice is safe. Imported cycles receive new local IDs.

EXAMPLES:

  pomodoro import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		n, err := storage.ImportJSON(repo, data)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported %d cycle(s) from %s", n, filename)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
