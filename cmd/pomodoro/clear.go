// ABOUTME: CLI command for clearing the cycle log.
// ABOUTME: Asks for confirmation unless --yes is given.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded cycle",
	Long: `Delete every recorded cycle from the focus log.

This is a DESTRUCTIVE operation. Export first if you want a backup:

  pomodoro export json -o backup.json
  pomodoro clear`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			fmt.Print("This will permanently delete all recorded cycles. Continue? [y/N]: ")
			reader := bufio.NewReader(os.Stdin)
			response, _ := reader.ReadString('\n')
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "y" && response != "yes" {
				fmt.Println("Canceled.")
				return nil
			}
		}

		n, err := repo.ClearAll()
		if err != nil {
			return fmt.Errorf("failed to clear data: %w", err)
		}

		color.Green("✓ All data cleared successfully")
		fmt.Printf("  Cycles deleted: %d\n", n)
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}
