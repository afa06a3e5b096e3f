// ABOUTME: MCP resource implementations for the cycle log.
// ABOUTME: Provides pomodoro://today, pomodoro://stats, and pomodoro://recent resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/pomodoro/internal/models"
	"github.com/harperreed/pomodoro/internal/stats"
	"github.com/harperreed/pomodoro/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriToday  = "pomodoro://today"
	uriStats  = "pomodoro://stats"
	uriRecent = "pomodoro://recent"
)

func (s *Server) registerResources() {
	// pomodoro://today - cycles logged today and progress toward the goal
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriToday,
		Name:        "Today's Focus",
		Description: "Cycles recorded today with hours and goal progress",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// pomodoro://stats - dashboard summary
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriStats,
		Name:        "Focus Statistics",
		Description: "Daily hours, totals, streak, and goal progress",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	// pomodoro://recent - last 10 cycles
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriRecent,
		Name:        "Recent Cycles",
		Description: "Last 10 recorded cycles",
		MIMEType:    "application/json",
	}, s.handleRecentResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	cycles, err := s.repo.ListCycles(&storage.CycleFilter{Limit: 10})
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}

	out := make([]cycleOutput, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, toCycleOutput(c))
	}

	return jsonResource(uriRecent, map[string]any{
		"cycles": out,
		"count":  len(out),
	})
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	cycles, err := s.repo.ListCycles(&storage.CycleFilter{Since: &todayStart})
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}

	var minutes float64
	out := make([]cycleOutput, 0, len(cycles))
	for _, c := range cycles {
		minutes += c.DurationMinutes
		out = append(out, toCycleOutput(c))
	}
	hours := minutes / 60

	return jsonResource(uriToday, map[string]any{
		"date":       todayStart.Format(models.DateLayout),
		"cycles":     out,
		"count":      len(out),
		"minutes":    minutes,
		"hours":      hours,
		"goal_hours": s.goalHours,
		"progress":   stats.Percent(hours, s.goalHours),
	})
}

func (s *Server) handleStatsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	daily, err := s.repo.DailyStats()
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	out := toSummaryOutput(stats.Summarize(daily, s.now(), s.goalHours))
	return jsonResource(uriStats, map[string]any{
		"generated_at": s.now().Format(time.RFC3339),
		"summary":      out,
	})
}
