// ABOUTME: CLI commands that drive the timer of a running server.
// ABOUTME: Talks to the HTTP API with retries, for scripts and companion windows.
package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/pomodoro/internal/client"
	"github.com/harperreed/pomodoro/internal/logging"
	"github.com/harperreed/pomodoro/internal/pip"
	"github.com/harperreed/pomodoro/internal/timer"
	"github.com/spf13/cobra"
)

var remoteTimeout time.Duration

var remoteCmd = &cobra.Command{
	Use:     "remote",
	Aliases: []string{"ctl"},
	Short:   "Control the timer of a running server",
	Long: `Control the shared timer hosted by 'pomodoro serve'.

The server address comes from server_url in the config, POMODORO_SERVER,
or http://localhost:<port>.

EXAMPLES:

  pomodoro remote status
  pomodoro remote toggle
  pomodoro remote skip
  pomodoro remote duration 45
  pomodoro remote pin              # Toggle the companion's always-on-top`,
	Annotations: skipStorage(),
}

func newRemoteClient() *client.Client {
	logger, err := logging.New(nil, cfg.GetLogLevel(), "remote")
	if err != nil {
		logger = logging.Discard()
	}
	return client.New(cfg.GetServerURL(), client.WithLogger(logger))
}

func remoteContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), remoteTimeout)
}

func printSnapshot(s *timer.Snapshot) {
	state := "paused"
	if s.IsRunning {
		state = "running"
	}
	fmt.Printf("%s  %s  (%s)\n", color.New(color.Bold).Sprint(s.Display), s.PhaseTitle, state)
	faint := color.New(color.Faint)
	faint.Printf("  %d cycle(s) completed, %d minute work phases\n", s.Cycles, s.WorkMinutes)
}

var remoteStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the server's timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := remoteContext()
		defer cancel()

		snap, err := newRemoteClient().Timer(ctx)
		if err != nil {
			return fmt.Errorf("failed to reach %s: %w", cfg.GetServerURL(), err)
		}
		printSnapshot(snap)
		return nil
	},
}

var remoteDurationCmd = &cobra.Command{
	Use:   "duration <minutes>",
	Short: "Set the work phase length",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid minutes: %s", args[0])
		}

		ctx, cancel := remoteContext()
		defer cancel()

		snap, err := newRemoteClient().SetWorkDuration(ctx, minutes)
		if err != nil {
			return err
		}
		color.Green("✓ Work phase set to %d minutes", minutes)
		printSnapshot(snap)
		return nil
	},
}

var remotePinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Toggle always-on-top for companion windows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := remoteContext()
		defer cancel()

		on, err := newRemoteClient().ToggleAlwaysOnTop(ctx)
		if err != nil {
			return err
		}
		if on {
			color.Green("✓ Always on top enabled")
		} else {
			color.Yellow("✗ Always on top disabled")
		}
		return nil
	},
}

// remoteActionCmd builds a subcommand for one companion action name.
func remoteActionCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := pip.ParseAction(name)
			if err != nil {
				return err
			}

			ctx, cancel := remoteContext()
			defer cancel()

			snap, err := newRemoteClient().TimerAction(ctx, string(action))
			if err != nil {
				return err
			}
			printSnapshot(snap)
			return nil
		},
	}
}

func init() {
	remoteCmd.PersistentFlags().DurationVar(&remoteTimeout, "timeout", client.DefaultRecordTimeout, "overall timeout including retries")

	remoteCmd.AddCommand(remoteStatusCmd)
	remoteCmd.AddCommand(remoteDurationCmd)
	remoteCmd.AddCommand(remotePinCmd)
	remoteCmd.AddCommand(remoteActionCmd("start", "Start the timer"))
	remoteCmd.AddCommand(remoteActionCmd("pause", "Pause the timer"))
	remoteCmd.AddCommand(remoteActionCmd("toggle", "Start or pause the timer"))
	remoteCmd.AddCommand(remoteActionCmd("reset", "Reset the current phase"))
	remoteCmd.AddCommand(remoteActionCmd("complete-reset", "Reset everything, including the cycle count"))
	remoteCmd.AddCommand(remoteActionCmd("skip", "Skip the current break"))

	rootCmd.AddCommand(remoteCmd)
}
