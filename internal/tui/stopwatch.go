// ABOUTME: Bubble Tea model for the stopwatch.
// ABOUTME: Counts up, and records the session as a cycle on finish.
package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/pomodoro/internal/format"
	"github.com/harperreed/pomodoro/internal/models"
	"github.com/harperreed/pomodoro/internal/pip"
	"github.com/harperreed/pomodoro/internal/stopwatch"
)

// StopwatchMsg carries a new stopwatch snapshot into the model.
type StopwatchMsg stopwatch.Snapshot

// FinishedMsg is the outcome of a finish request.
type FinishedMsg struct {
	Result *stopwatch.Result
	Err    error
}

// Stopwatch is the stopwatch screen.
type Stopwatch struct {
	sw  *stopwatch.Stopwatch
	sub *pip.Subscription[stopwatch.Snapshot]

	snap      stopwatch.Snapshot
	bar       progress.Model
	finishing bool
	notice    string
	err       error
}

// NewStopwatch subscribes to hub; the caller builds sw with
// stopwatch.WithOnChange(hub.Publish).
func NewStopwatch(sw *stopwatch.Stopwatch, hub *pip.Hub[stopwatch.Snapshot]) *Stopwatch {
	return &Stopwatch{
		sw:   sw,
		sub:  hub.Subscribe(),
		snap: sw.Snapshot(),
		bar:  newBar(models.StopwatchColor),
	}
}

// Close releases the hub subscription.
func (m *Stopwatch) Close() {
	m.sub.Close()
}

func (m *Stopwatch) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.sub.C
		if !ok {
			return nil
		}
		return StopwatchMsg(snap)
	}
}

func (m *Stopwatch) finish() tea.Cmd {
	return func() tea.Msg {
		res, err := m.sw.Finish()
		return FinishedMsg{Result: res, Err: err}
	}
}

// Init implements tea.Model
func (m *Stopwatch) Init() tea.Cmd {
	return m.waitForSnapshot()
}

// Update implements tea.Model
func (m *Stopwatch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())

	case StopwatchMsg:
		m.snap = stopwatch.Snapshot(msg)
		return m, m.waitForSnapshot()

	case FinishedMsg:
		m.finishing = false
		m.err = nil
		switch {
		case errors.Is(msg.Err, stopwatch.ErrSessionTooShort):
			m.notice = fmt.Sprintf("Sessions under %s are not recorded", format.Duration(stopwatch.MinSessionSeconds))
		case msg.Err != nil:
			m.err = msg.Err
		default:
			m.notice = finishNotice(msg.Result)
		}
	}
	return m, nil
}

func (m *Stopwatch) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c":
		m.sw.Pause()
		return tea.Quit
	case " ", "enter":
		m.notice = ""
		switch {
		case m.snap.IsRunning:
			m.sw.Pause()
		case m.snap.IsPaused:
			m.sw.Resume()
		default:
			m.sw.Start()
		}
	case "r":
		m.notice = ""
		m.sw.Reset()
	case "f":
		if m.finishing {
			return nil
		}
		m.finishing = true
		return m.finish()
	}
	return nil
}

func finishNotice(res *stopwatch.Result) string {
	if res == nil || res.Cycle == nil {
		return "Session saved"
	}
	msg := fmt.Sprintf("Saved %s session", format.TotalTime(res.Cycle.DurationMinutes))
	if res.CountsAsCycle {
		msg += " (counts as a cycle)"
	}
	return msg
}

// View implements tea.Model
func (m *Stopwatch) View() string {
	s := m.snap

	state := mutedStyle.Render("stopped")
	switch {
	case s.IsRunning:
		state = noticeStyle.Render("running")
	case s.IsPaused:
		state = warnStyle.Render("paused")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle(models.StopwatchColor).Render("Stopwatch"), "  ", state)

	clock := clockStyle(models.StopwatchColor).Render(s.Display)
	bar := m.bar.ViewAs(s.Progress / 100)

	lines := []string{header, clock, bar}
	if m.finishing {
		lines = append(lines, "", mutedStyle.Render("Saving..."))
	}
	if m.notice != "" {
		lines = append(lines, "", noticeStyle.Render(m.notice))
	}
	if m.err != nil {
		lines = append(lines, "", errorStyle.Render(m.err.Error()))
	}
	lines = append(lines, "", renderHelp([]binding{
		{"space", "start/pause"},
		{"r", "reset"},
		{"f", "finish"},
		{"q", "quit"},
	}))

	return frameStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
