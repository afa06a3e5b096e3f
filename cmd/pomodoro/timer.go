// ABOUTME: CLI command for the terminal pomodoro timer.
// ABOUTME: Runs the engine under a Bubble Tea UI and records finished work phases.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/pomodoro/internal/pip"
	"github.com/harperreed/pomodoro/internal/state"
	"github.com/harperreed/pomodoro/internal/timer"
	"github.com/harperreed/pomodoro/internal/tui"
	"github.com/spf13/cobra"
)

var (
	timerWork   int
	timerRemote bool
	timerFresh  bool
)

var timerCmd = &cobra.Command{
	Use:     "timer",
	Aliases: []string{"t", "start"},
	Short:   "Run the pomodoro timer in the terminal",
	Long: `Run a pomodoro timer in the terminal.

Work phases you start are recorded to the focus log when they run out.
After every fourth work phase the break is a long one.

KEYS:

  space/enter   Start or pause
  r             Reset the current phase
  R             Reset everything, including the cycle count
  s             Skip the current break
  1 / 2 / 3     Work for 25, 45, or 60 minutes
  q             Pause and quit (the timer is saved and restored next time)

EXAMPLES:

  pomodoro timer                 # Classic 25/5/15
  pomodoro timer --work 50       # Custom work length
  pomodoro timer --remote        # Record cycles on a running 'pomodoro serve'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closeLog := tuiLogger("timer")
		defer closeLog()

		c := engineConfig(cfg)
		if timerWork != 0 {
			if timerWork < timer.MinWorkMinutes || timerWork > timer.MaxWorkMinutes {
				return fmt.Errorf("work minutes must be between %d and %d", timer.MinWorkMinutes, timer.MaxWorkMinutes)
			}
			c.WorkMinutes = timerWork
		}

		engine := timer.New(c, timer.WithRecorder(recorder(timerRemote, logger)), timer.WithLogger(logger))

		st := openState(logger)
		if st != nil {
			defer st.Close()
			restoreTimer(engine, st, logger.Warn)
		}
		if timerWork != 0 {
			if err := engine.SetWorkDuration(timerWork); err != nil {
				return err
			}
		}

		hub := pip.NewHub[timer.Snapshot]()
		defer engine.OnChange(hub.Publish)()

		model := tui.NewTimer(engine, hub)
		defer model.Close()

		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("timer: %w", err)
		}

		engine.Pause()
		if st != nil {
			if err := st.SaveTimer(engine.Snapshot().State); err != nil {
				logger.Warn("could not save timer state", "err", err)
			}
		}
		return nil
	},
}

func restoreTimer(engine *timer.Engine, st *state.Store, warn func(msg any, kv ...any)) {
	if timerFresh {
		return
	}
	saved, ok, err := st.LoadTimer()
	if err != nil {
		warn("could not load timer state", "err", err)
		return
	}
	if ok {
		engine.Restore(saved)
	}
}

func init() {
	timerCmd.Flags().IntVarP(&timerWork, "work", "w", 0, "work phase length in minutes (default from config)")
	timerCmd.Flags().BoolVar(&timerRemote, "remote", false, "record cycles through the API server instead of local storage")
	timerCmd.Flags().BoolVar(&timerFresh, "fresh", false, "ignore any saved timer state")
	rootCmd.AddCommand(timerCmd)
}
