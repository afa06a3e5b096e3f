// ABOUTME: CLI command for the terminal stopwatch.
// ABOUTME: Counts up and records the session as a stopwatch cycle on finish.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/pomodoro/internal/pip"
	"github.com/harperreed/pomodoro/internal/stopwatch"
	"github.com/harperreed/pomodoro/internal/tui"
	"github.com/spf13/cobra"
)

var stopwatchRemote bool

var stopwatchCmd = &cobra.Command{
	Use:     "stopwatch",
	Aliases: []string{"sw"},
	Short:   "Run a focus stopwatch in the terminal",
	Long: `Count up instead of down, then save the session to the focus log.

Sessions shorter than a minute are not recorded. Sessions longer than
15 minutes count as a full cycle.

KEYS:

  space   Start, pause, or resume
  f       Finish and record
  r       Reset
  q       Quit (an unfinished session is saved and restored next time)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closeLog := tuiLogger("stopwatch")
		defer closeLog()

		hub := pip.NewHub[stopwatch.Snapshot]()
		sw := stopwatch.New(
			stopwatch.WithRecorder(recorder(stopwatchRemote, logger)),
			stopwatch.WithLogger(logger),
			stopwatch.WithOnChange(hub.Publish),
		)

		st := openState(logger)
		if st != nil {
			defer st.Close()
			if saved, ok, err := st.LoadStopwatch(); err != nil {
				logger.Warn("could not load stopwatch state", "err", err)
			} else if ok {
				sw.Restore(saved)
			}
		}

		model := tui.NewStopwatch(sw, hub)
		defer model.Close()

		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("stopwatch: %w", err)
		}

		sw.Pause()
		if st != nil {
			if err := st.SaveStopwatch(sw.Snapshot().State); err != nil {
				logger.Warn("could not save stopwatch state", "err", err)
			}
		}
		return nil
	},
}

func init() {
	stopwatchCmd.Flags().BoolVar(&stopwatchRemote, "remote", false, "record sessions through the API server instead of local storage")
	rootCmd.AddCommand(stopwatchCmd)
}
