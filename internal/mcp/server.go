// ABOUTME: MCP server setup for the pomodoro cycle log.
// ABOUTME: Wraps the MCP server with a storage Repository connection.
package mcp

import (
	"context"
	"time"

	"github.com/harperreed/pomodoro/internal/stats"
	"github.com/harperreed/pomodoro/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	goalHours float64
	now       func() time.Time
}

// NewServer creates a new MCP server with the given storage. A
// non-positive goal uses the default daily goal.
func NewServer(repo storage.Repository, goalHours float64) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "pomodoro",
			Version: "1.0.0",
		},
		nil,
	)

	if goalHours <= 0 {
		goalHours = stats.DefaultGoalHours
	}

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		goalHours: goalHours,
		now:       time.Now,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
