// ABOUTME: CLI command for deleting a recorded cycle.
// ABOUTME: Supports deletion by full ID or ID prefix.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a recorded cycle",
	Long: `Delete a cycle by its ID or ID prefix.

The ID prefix is shown in the first column of 'pomodoro list' output.

EXAMPLES:

  pomodoro delete abc12345                  # Delete by 8-char prefix
  pomodoro rm abc1                          # Short prefix (if unique)

If the prefix matches multiple cycles, an error is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idOrPrefix := args[0]

		c, err := repo.GetCycle(idOrPrefix)
		if err != nil {
			return fmt.Errorf("cycle not found: %s: %w", idOrPrefix, err)
		}

		if err := repo.DeleteCycle(c.UID.String()); err != nil {
			return fmt.Errorf("failed to delete cycle: %w", err)
		}

		color.Yellow("✗ Deleted %s", c.SessionType)
		fmt.Printf("  %s %s %.2f min\n",
			color.New(color.Faint).Sprint(c.ShortID()),
			c.RecordedAt.Local().Format("2006-01-02 15:04"),
			c.DurationMinutes)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
