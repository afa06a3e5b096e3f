// ABOUTME: Root Cobra command for the pomodoro CLI.
// ABOUTME: Loads config and handles the storage lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/harperreed/pomodoro/internal/config"
	"github.com/harperreed/pomodoro/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfg  *config.Config
	repo storage.Repository

	backendFlag string
)

// noStorage marks commands that must not open the cycle log.
const noStorage = "no-storage"

var rootCmd = &cobra.Command{
	Use:   "pomodoro",
	Short: "Pomodoro timer, stopwatch, and focus log",
	Long: `Pomodoro is a focus timer with a persistent log of completed work cycles.

QUICK START:

  $ pomodoro timer                      # Run a 25 minute pomodoro in the terminal
  $ pomodoro stopwatch                  # Count up; press f to save the session
  $ pomodoro record 25                  # Log a finished cycle by hand
  $ pomodoro stats                      # Daily hours, goal progress, and streak

THE SERVER:

  $ pomodoro serve                      # HTTP API on :3000 under /pomodoro

  The server owns a timer that companions can drive and mirror:

    GET  /pomodoro/timer/events         Server-Sent Events stream of the timer
    POST /pomodoro/timer/toggle         Start or pause
    POST /pomodoro/cycle                Record a cycle

STORAGE:

  sqlite (default)  ~/.local/share/pomodoro/pomodoro.db
  charm             Charm KV, E2E encrypted and synced across devices

  $ pomodoro config set backend charm   # Switch backends
  $ pomodoro migrate --from sqlite --to charm

MCP INTEGRATION:

  Run 'pomodoro mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "pomodoro": { "command": "pomodoro", "args": ["mcp"] }
    }
  }`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithEnv()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if backendFlag != "" {
			if err := cfg.Set("backend", backendFlag); err != nil {
				return err
			}
		}

		if skipsStorage(cmd) {
			return nil
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			err := repo.Close()
			repo = nil
			return err
		}
		return nil
	},
}

// skipsStorage reports whether cmd or any parent is marked noStorage.
func skipsStorage(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[noStorage] == "true" {
			return true
		}
		if c.Name() == "help" || c.Name() == "completion" {
			return true
		}
	}
	return false
}

func skipStorage() map[string]string {
	return map[string]string{noStorage: "true"}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend override (sqlite or charm)")
}
