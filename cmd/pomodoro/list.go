// ABOUTME: CLI command for listing recorded cycles.
// ABOUTME: Supports filtering by session type and start date.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/pomodoro/internal/models"
	"github.com/harperreed/pomodoro/internal/storage"
	"github.com/spf13/cobra"
)

var (
	listType  string
	listLimit int
	listSince string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List recorded cycles",
	Long: `List recent cycles from your focus log, newest first.

OUTPUT FORMAT:

  Each line shows: ID  TIMESTAMP  TYPE  MINUTES  (NOTES)

  The ID is an 8-character prefix you can use with the delete command.

EXAMPLES:

  pomodoro list                        # Last 20 cycles
  pomodoro list --type stopwatch       # Only stopwatch sessions
  pomodoro list --since 2025-01-01     # Everything since New Year
  pomodoro list -n 100                 # Last 100 cycles`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := &storage.CycleFilter{Limit: listLimit}
		if listType != "" {
			st, err := models.ParseSessionType(listType)
			if err != nil {
				return err
			}
			filter.SessionType = &st
		}
		if listSince != "" {
			t, err := time.ParseInLocation(models.DateLayout, listSince, time.Local)
			if err != nil {
				return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", listSince)
			}
			filter.Since = &t
		}

		cycles, err := repo.ListCycles(filter)
		if err != nil {
			return fmt.Errorf("failed to list cycles: %w", err)
		}

		if len(cycles) == 0 {
			fmt.Println("No cycles found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, c := range cycles {
			notes := ""
			if c.Notes != nil && *c.Notes != "" {
				notes = faint.Sprintf(" (%s)", truncate(*c.Notes, 30))
			}
			fmt.Printf("%s %s %s %6.2f min%s\n",
				faint.Sprint(c.ShortID()),
				faint.Sprint(c.RecordedAt.Local().Format("2006-01-02 15:04")),
				padRight(string(c.SessionType), 10),
				c.DurationMinutes,
				notes)
		}

		return nil
	},
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "filter by session type")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results")
	listCmd.Flags().StringVar(&listSince, "since", "", "only cycles since date (YYYY-MM-DD)")
	rootCmd.AddCommand(listCmd)
}
