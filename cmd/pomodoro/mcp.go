// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs the stdio Model Context Protocol server over the cycle log.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/pomodoro/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP lets AI assistants record and review focus sessions through a
standardized protocol. The server communicates via stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "pomodoro": {
        "command": "pomodoro",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  record_cycle    Record a completed focus session
  list_cycles     List recent cycles, optionally by type or date
  delete_cycle    Delete a cycle by ID or prefix
  get_stats       Per-day hours and cycle counts
  get_summary     Today's progress, streak, and averages against the goal

AVAILABLE RESOURCES:

  pomodoro://today    Today's cycles and goal progress
  pomodoro://stats    Full statistics summary
  pomodoro://recent   The ten most recent cycles`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo, cfg.GetDailyGoalHours())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
