// ABOUTME: Statistics summary over the daily cycle aggregates.
// ABOUTME: Totals, averages, streaks, and per-day progress against a daily goal.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/harperreed/pomodoro/internal/models"
)

// DefaultGoalHours is the daily focus goal.
const DefaultGoalHours = 8.0

// Tier buckets a day's progress towards the chart maximum.
type Tier string

const (
	TierMinimal  Tier = "minimal"
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierComplete Tier = "complete"
)

// TierFor returns the tier for a progress percentage.
func TierFor(percent float64) Tier {
	switch {
	case percent >= 100:
		return TierComplete
	case percent >= 75:
		return TierHigh
	case percent >= 50:
		return TierMedium
	case percent >= 25:
		return TierLow
	default:
		return TierMinimal
	}
}

// Day is one row of the summary.
type Day struct {
	models.DailyStat
	Label    string  `json:"label"`
	Progress float64 `json:"progress"`
	Tier     Tier    `json:"tier"`
	// EstimatedCycles converts hours into 25 minute pomodoros.
	EstimatedCycles int `json:"estimatedCycles"`
}

// Summary is the statistics view model.
type Summary struct {
	TotalHours   float64 `json:"totalHours"`
	TodayHours   float64 `json:"todayHours"`
	AverageHours float64 `json:"averageHours"`
	Streak       int     `json:"streak"`
	GoalHours    float64 `json:"goalHours"`
	// ChartMaxHours is max(goal, busiest day) and scales every Progress value.
	ChartMaxHours float64 `json:"chartMaxHours"`
	TodayProgress float64 `json:"todayProgress"`
	TotalCycles   int     `json:"totalCycles"`
	Days          []Day   `json:"days"`
}

// Summarize builds a Summary from daily aggregates. Days are returned newest
// first and now decides which day is today. A non-positive goal means DefaultGoalHours.
func Summarize(daily []models.DailyStat, now time.Time, goalHours float64) Summary {
	if goalHours <= 0 {
		goalHours = DefaultGoalHours
	}

	sorted := make([]models.DailyStat, len(daily))
	copy(sorted, daily)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	today := now.Format(models.DateLayout)
	s := Summary{GoalHours: goalHours, ChartMaxHours: goalHours, Days: make([]Day, 0, len(sorted))}

	for _, d := range sorted {
		s.TotalHours += d.Hours
		s.TotalCycles += d.Cycles
		if d.Date == today {
			s.TodayHours = d.Hours
		}
		if d.Hours > s.ChartMaxHours {
			s.ChartMaxHours = d.Hours
		}
	}
	if len(sorted) > 0 {
		s.AverageHours = s.TotalHours / float64(len(sorted))
	}
	s.Streak = Streak(sorted, now)
	s.TodayProgress = Percent(s.TodayHours, s.ChartMaxHours)

	for _, d := range sorted {
		p := Percent(d.Hours, s.ChartMaxHours)
		s.Days = append(s.Days, Day{
			DailyStat:       d,
			Label:           DayLabel(d.Date, now),
			Progress:        p,
			Tier:            TierFor(p),
			EstimatedCycles: EstimatedCycles(d.Hours),
		})
	}
	return s
}

// Streak counts consecutive days with focus time, ending today.
// A day without a row, or with zero hours, ends the streak.
func Streak(daily []models.DailyStat, now time.Time) int {
	hours := make(map[string]float64, len(daily))
	for _, d := range daily {
		hours[d.Date] += d.Hours
	}

	streak := 0
	day := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())
	for {
		if hours[day.Format(models.DateLayout)] <= 0 {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

// Percent returns hours as a percentage of max, capped at 100.
func Percent(hours, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return math.Min(hours/max*100, 100)
}

// EstimatedCycles converts hours into whole 25 minute pomodoros.
func EstimatedCycles(hours float64) int {
	return int(math.Round(hours * 60 / 25))
}

// DayLabel renders "Today", "Yesterday", or a short weekday date.
func DayLabel(date string, now time.Time) string {
	t, err := time.ParseInLocation(models.DateLayout, date, now.Location())
	if err != nil {
		return date
	}
	switch date {
	case now.Format(models.DateLayout):
		return "Today"
	case now.AddDate(0, 0, -1).Format(models.DateLayout):
		return "Yesterday"
	}
	return t.Format("Mon 02 Jan")
}
