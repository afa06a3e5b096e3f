// ABOUTME: CLI command for daily focus statistics.
// ABOUTME: Shows goal progress, streak, and a per-day bar chart.
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/pomodoro/internal/format"
	"github.com/harperreed/pomodoro/internal/stats"
	"github.com/spf13/cobra"
)

var (
	statsGoal float64
	statsDays int
	statsJSON bool
)

const chartWidth = 30

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show daily focus statistics",
	Long: `Show focus hours per day against your daily goal.

Each bar is scaled to the larger of the goal and your busiest day. Days are
coloured by how close they came: under 25%, 25%, 50%, 75%, and 100%.

EXAMPLES:

  pomodoro stats                  # Last 7 days against the configured goal
  pomodoro stats --days 30        # Last 30 days
  pomodoro stats --goal 6         # Compare against a 6 hour goal
  pomodoro stats --json           # Machine-readable summary`,
	RunE: func(cmd *cobra.Command, args []string) error {
		daily, err := repo.DailyStats()
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		goal := cfg.GetDailyGoalHours()
		if statsGoal > 0 {
			goal = statsGoal
		}
		sum := stats.Summarize(daily, time.Now(), goal)

		if statsJSON {
			data, err := json.MarshalIndent(sum, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		printSummary(sum, statsDays)
		return nil
	},
}

var tierColors = map[stats.Tier]*color.Color{
	stats.TierMinimal:  color.New(color.Faint),
	stats.TierLow:      color.New(color.FgRed),
	stats.TierMedium:   color.New(color.FgYellow),
	stats.TierHigh:     color.New(color.FgCyan),
	stats.TierComplete: color.New(color.FgGreen),
}

func printSummary(sum stats.Summary, days int) {
	if len(sum.Days) == 0 {
		fmt.Println("No cycles recorded yet. Start one with 'pomodoro timer'.")
		return
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Printf("Today  %s / %s  (%.0f%%)\n",
		format.Hours(sum.TodayHours), format.Hours(sum.GoalHours), sum.TodayProgress)
	fmt.Printf("Streak %d day(s)   Total %s over %d cycles   Average %s/day\n\n",
		sum.Streak, format.Hours(sum.TotalHours), sum.TotalCycles, format.Hours(sum.AverageHours))

	shown := sum.Days
	if days > 0 && len(shown) > days {
		shown = shown[:days]
	}
	for _, d := range shown {
		c := tierColors[d.Tier]
		fmt.Printf("%s %s %s %s\n",
			padRight(d.Label, 11),
			c.Sprint(bar(d.Progress, chartWidth)),
			padRight(format.Hours(d.Hours), 7),
			faint.Sprintf("%d cycles, ~%d pomodoros", d.Cycles, d.EstimatedCycles))
	}
}

// bar renders a percentage as a fixed-width block bar.
func bar(percent float64, width int) string {
	filled := int(math.Round(percent / 100 * float64(width)))
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func init() {
	statsCmd.Flags().Float64Var(&statsGoal, "goal", 0, "daily goal in hours (default from config)")
	statsCmd.Flags().IntVar(&statsDays, "days", 7, "number of days to show (0 for all)")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print the summary as JSON")
	rootCmd.AddCommand(statsCmd)
}
