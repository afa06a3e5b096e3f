// ABOUTME: CLI command for recording a completed cycle by hand.
// ABOUTME: Defaults to a 25 minute pomodoro recorded now.
package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/pomodoro/internal/format"
	"github.com/harperreed/pomodoro/internal/models"
	"github.com/spf13/cobra"
)

var (
	recordAt    string
	recordNotes string
	recordType  string
)

var recordCmd = &cobra.Command{
	Use:     "record [minutes]",
	Aliases: []string{"add", "a"},
	Short:   "Record a completed cycle",
	Long: `Record a completed work cycle. Without arguments a 25 minute pomodoro
is recorded at the current time.

Examples:
  pomodoro record
  pomodoro record 45
  pomodoro record 90 --type stopwatch --notes "deep work"
  pomodoro record 25 --at "2025-01-31 08:00"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes := models.DefaultCycleMinutes
		if len(args) == 1 {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid minutes: %s", args[0])
			}
			minutes = v
		}

		sessionType, err := models.ParseSessionType(recordType)
		if err != nil {
			return err
		}

		c := models.NewCycle(minutes, sessionType)

		if recordAt != "" {
			t, err := parseTime(recordAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", recordAt)
			}
			c.WithRecordedAt(t)
		}

		if recordNotes != "" {
			c.WithNotes(recordNotes)
		}

		if err := repo.RecordCycle(c); err != nil {
			return fmt.Errorf("failed to record cycle: %w", err)
		}

		color.Green("✓ Recorded %s %s", format.TotalTime(c.DurationMinutes), c.SessionType)
		fmt.Printf("  %s %s\n",
			color.New(color.Faint).Sprint(c.ShortID()),
			c.RecordedAt.Format("2006-01-02 15:04"))

		return nil
	},
}

// parseTime accepts the formats people type at a prompt, in local time.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func init() {
	recordCmd.Flags().StringVar(&recordAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	recordCmd.Flags().StringVar(&recordNotes, "notes", "", "notes for the cycle")
	recordCmd.Flags().StringVarP(&recordType, "type", "t", "pomodoro", "session type (pomodoro or stopwatch)")
	rootCmd.AddCommand(recordCmd)
}
