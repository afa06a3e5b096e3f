// ABOUTME: MCP tool implementations for the cycle log.
// ABOUTME: Records, lists, and deletes cycles and reports daily statistics.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/pomodoro/internal/format"
	"github.com/harperreed/pomodoro/internal/models"
	"github.com/harperreed/pomodoro/internal/stats"
	"github.com/harperreed/pomodoro/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// record_cycle
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "record_cycle",
		Description: "Record a completed pomodoro or stopwatch session",
	}, s.handleRecordCycle)

	// list_cycles
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_cycles",
		Description: "List recent cycles, optionally filtered by session type or start date",
	}, s.handleListCycles)

	// delete_cycle
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_cycle",
		Description: "Delete a cycle by ID or ID prefix",
	}, s.handleDeleteCycle)

	// get_stats
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_stats",
		Description: "Get focus hours and cycle counts per day, newest first",
	}, s.handleGetStats)

	// get_summary
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_summary",
		Description: "Get today's progress toward the daily goal, totals, and the current streak",
	}, s.handleGetSummary)
}

// Tool input/output types

type recordCycleInput struct {
	DurationMinutes float64 `json:"duration_minutes,omitempty" jsonschema:"Length of the session in minutes, defaults to 25"`
	SessionType     string  `json:"session_type,omitempty" jsonschema:"pomodoro or stopwatch, defaults to pomodoro"`
	RecordedAt      string  `json:"recorded_at,omitempty" jsonschema:"Timestamp (ISO 8601), defaults to now"`
	Notes           string  `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type cycleOutput struct {
	ID              string  `json:"id"`
	Seq             int64   `json:"seq"`
	RecordedAt      string  `json:"recorded_at"`
	DurationMinutes float64 `json:"duration_minutes"`
	SessionType     string  `json:"session_type"`
	Notes           string  `json:"notes,omitempty"`
}

type recordCycleOutput struct {
	Cycle   cycleOutput `json:"cycle"`
	Message string      `json:"message"`
}

type listCyclesInput struct {
	SessionType string `json:"session_type,omitempty" jsonschema:"Filter by session type (pomodoro or stopwatch)"`
	Since       string `json:"since,omitempty" jsonschema:"Only cycles on or after this date (YYYY-MM-DD or ISO 8601)"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type listCyclesOutput struct {
	Cycles  []cycleOutput `json:"cycles"`
	Count   int           `json:"count"`
	Message string        `json:"message,omitempty"`
}

type deleteCycleInput struct {
	ID string `json:"id" jsonschema:"Cycle ID or prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type getStatsInput struct {
	Days int `json:"days,omitempty" jsonschema:"Only the most recent N days (default all)"`
}

type dayOutput struct {
	Date    string  `json:"date"`
	Label   string  `json:"label,omitempty"`
	Cycles  int     `json:"cycles"`
	Minutes float64 `json:"minutes"`
	Hours   float64 `json:"hours"`
	// Progress is the percentage of the chart maximum.
	Progress float64 `json:"progress,omitempty"`
	Tier     string  `json:"tier,omitempty"`
}

type getStatsOutput struct {
	Days []dayOutput `json:"days"`
}

type getSummaryInput struct {
	GoalHours float64 `json:"goal_hours,omitempty" jsonschema:"Daily goal in hours (default from config)"`
}

type summaryOutput struct {
	GoalHours     float64     `json:"goal_hours"`
	TodayHours    float64     `json:"today_hours"`
	TodayProgress float64     `json:"today_progress"`
	TotalHours    float64     `json:"total_hours"`
	AverageHours  float64     `json:"average_hours"`
	TotalCycles   int         `json:"total_cycles"`
	Streak        int         `json:"streak"`
	Days          []dayOutput `json:"days"`
	Message       string      `json:"message"`
}

func toCycleOutput(c *models.Cycle) cycleOutput {
	out := cycleOutput{
		ID:              c.ShortID(),
		Seq:             c.ID,
		RecordedAt:      c.RecordedAt.Format(time.RFC3339),
		DurationMinutes: c.DurationMinutes,
		SessionType:     string(c.SessionType),
	}
	if c.Notes != nil {
		out.Notes = *c.Notes
	}
	return out
}

// parseTime accepts ISO 8601, "YYYY-MM-DD HH:MM", or a bare local date.
func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", models.DateLayout} {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q (use ISO 8601 or YYYY-MM-DD)", v)
}

// Tool handlers

func (s *Server) handleRecordCycle(ctx context.Context, req *mcp.CallToolRequest, input recordCycleInput) (*mcp.CallToolResult, recordCycleOutput, error) {
	sessionType, err := models.ParseSessionType(input.SessionType)
	if err != nil {
		return nil, recordCycleOutput{}, err
	}

	c := models.NewCycle(input.DurationMinutes, sessionType)

	if input.RecordedAt != "" {
		t, err := parseTime(input.RecordedAt)
		if err != nil {
			return nil, recordCycleOutput{}, err
		}
		c.WithRecordedAt(t)
	}

	if input.Notes != "" {
		c.WithNotes(input.Notes)
	}

	if err := s.repo.RecordCycle(c); err != nil {
		return nil, recordCycleOutput{}, fmt.Errorf("failed to record cycle: %w", err)
	}

	return nil, recordCycleOutput{
		Cycle: toCycleOutput(c),
		Message: fmt.Sprintf("Recorded %s %s (ID: %s)",
			format.TotalTime(c.DurationMinutes), c.SessionType, c.ShortID()),
	}, nil
}

func (s *Server) handleListCycles(ctx context.Context, req *mcp.CallToolRequest, input listCyclesInput) (*mcp.CallToolResult, listCyclesOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	filter := &storage.CycleFilter{Limit: input.Limit}
	if input.SessionType != "" {
		st, err := models.ParseSessionType(input.SessionType)
		if err != nil {
			return nil, listCyclesOutput{}, err
		}
		filter.SessionType = &st
	}
	if input.Since != "" {
		t, err := parseTime(input.Since)
		if err != nil {
			return nil, listCyclesOutput{}, err
		}
		filter.Since = &t
	}

	cycles, err := s.repo.ListCycles(filter)
	if err != nil {
		return nil, listCyclesOutput{}, fmt.Errorf("failed to list cycles: %w", err)
	}

	out := listCyclesOutput{Cycles: make([]cycleOutput, 0, len(cycles)), Count: len(cycles)}
	for _, c := range cycles {
		out.Cycles = append(out.Cycles, toCycleOutput(c))
	}
	if len(cycles) == 0 {
		out.Message = "No cycles found."
	}
	return nil, out, nil
}

func (s *Server) handleDeleteCycle(ctx context.Context, req *mcp.CallToolRequest, input deleteCycleInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteCycle(input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete cycle: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted cycle: %s", input.ID),
	}, nil
}

func (s *Server) handleGetStats(ctx context.Context, req *mcp.CallToolRequest, input getStatsInput) (*mcp.CallToolResult, getStatsOutput, error) {
	daily, err := s.repo.DailyStats()
	if err != nil {
		return nil, getStatsOutput{}, fmt.Errorf("failed to get stats: %w", err)
	}
	if input.Days > 0 && len(daily) > input.Days {
		daily = daily[:input.Days]
	}

	now := s.now()
	out := getStatsOutput{Days: make([]dayOutput, 0, len(daily))}
	for _, d := range daily {
		out.Days = append(out.Days, dayOutput{
			Date:    d.Date,
			Label:   stats.DayLabel(d.Date, now),
			Cycles:  d.Cycles,
			Minutes: d.Minutes,
			Hours:   d.Hours,
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetSummary(ctx context.Context, req *mcp.CallToolRequest, input getSummaryInput) (*mcp.CallToolResult, summaryOutput, error) {
	goal := s.goalHours
	if input.GoalHours > 0 {
		goal = input.GoalHours
	}

	daily, err := s.repo.DailyStats()
	if err != nil {
		return nil, summaryOutput{}, fmt.Errorf("failed to get stats: %w", err)
	}
	sum := stats.Summarize(daily, s.now(), goal)
	return nil, toSummaryOutput(sum), nil
}

func toSummaryOutput(sum stats.Summary) summaryOutput {
	out := summaryOutput{
		GoalHours:     sum.GoalHours,
		TodayHours:    sum.TodayHours,
		TodayProgress: sum.TodayProgress,
		TotalHours:    sum.TotalHours,
		AverageHours:  sum.AverageHours,
		TotalCycles:   sum.TotalCycles,
		Streak:        sum.Streak,
		Days:          make([]dayOutput, 0, len(sum.Days)),
		Message: fmt.Sprintf("Today: %s of %s (%.0f%%), streak %d day(s)",
			format.Hours(sum.TodayHours), format.Hours(sum.GoalHours), sum.TodayProgress, sum.Streak),
	}
	for _, d := range sum.Days {
		out.Days = append(out.Days, dayOutput{
			Date:     d.Date,
			Label:    d.Label,
			Cycles:   d.Cycles,
			Minutes:  d.Minutes,
			Hours:    d.Hours,
			Progress: d.Progress,
			Tier:     string(d.Tier),
		})
	}
	return out
}
