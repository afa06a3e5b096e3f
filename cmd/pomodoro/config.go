// ABOUTME: CLI commands for viewing and editing the config file.
// ABOUTME: Supports show, set, and path.
package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/pomodoro/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Show or change settings stored in the config file.

Environment variables (POMODORO_PORT, POMODORO_BACKEND, POMODORO_DATA_DIR,
POMODORO_SERVER, POMODORO_LOG_LEVEL, POMODORO_OTEL_ENDPOINT) override the
file at runtime.`,
	Annotations: skipStorage(),
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		effective := map[string]any{
			"backend":             cfg.GetBackend(),
			"data_dir":            cfg.GetDataDir(),
			"port":                cfg.GetPort(),
			"work_minutes":        cfg.GetWorkMinutes(),
			"short_break_minutes": cfg.GetShortBreakMinutes(),
			"long_break_minutes":  cfg.GetLongBreakMinutes(),
			"long_break_interval": cfg.GetLongBreakInterval(),
			"daily_goal_hours":    cfg.GetDailyGoalHours(),
			"server_url":          cfg.GetServerURL(),
			"log_level":           cfg.GetLogLevel(),
			"otel_endpoint":       cfg.OTelEndpoint,
		}
		data, err := json.MarshalIndent(effective, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting and save the config file.

KEYS:

  ` + strings.Join(config.Keys(), "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Save the file contents, not the environment overlay.
		fileCfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := fileCfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := fileCfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		color.Green("✓ Set %s = %s", args[0], args[1])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.GetConfigPath())
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
