// ABOUTME: Bubble Tea model for the pomodoro timer.
// ABOUTME: Mirrors engine snapshots and maps keys onto engine actions.
package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/pomodoro/internal/format"
	"github.com/harperreed/pomodoro/internal/pip"
	"github.com/harperreed/pomodoro/internal/timer"
)

// SnapshotMsg carries a new engine snapshot into the model.
type SnapshotMsg timer.Snapshot

// PhaseMsg reports a finished phase.
type PhaseMsg timer.PhaseEvent

// presetKeys maps the number keys onto timer.Presets.
var presetKeys = map[string]int{"1": 0, "2": 1, "3": 2}

// Timer is the timer screen.
type Timer struct {
	engine *timer.Engine
	sub    *pip.Subscription[timer.Snapshot]
	phases chan timer.PhaseEvent
	unsub  func()

	snap   timer.Snapshot
	bar    progress.Model
	notice string
	err    error
	width  int
}

// NewTimer subscribes to hub for snapshots; the caller wires
// engine.OnChange to hub.Publish.
func NewTimer(engine *timer.Engine, hub *pip.Hub[timer.Snapshot]) *Timer {
	t := &Timer{
		engine: engine,
		sub:    hub.Subscribe(),
		phases: make(chan timer.PhaseEvent, 4),
		snap:   engine.Snapshot(),
	}
	t.bar = newBar(t.snap.Color)
	t.unsub = engine.OnPhaseComplete(func(ev timer.PhaseEvent) {
		select {
		case t.phases <- ev:
		default:
		}
	})
	return t
}

// Close releases the hub subscription and the phase listener.
func (t *Timer) Close() {
	t.sub.Close()
	t.unsub()
}

func (t *Timer) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-t.sub.C
		if !ok {
			return nil
		}
		return SnapshotMsg(snap)
	}
}

func (t *Timer) waitForPhase() tea.Cmd {
	return func() tea.Msg {
		return PhaseMsg(<-t.phases)
	}
}

// Init implements tea.Model
func (t *Timer) Init() tea.Cmd {
	return tea.Batch(t.waitForSnapshot(), t.waitForPhase())
}

// Update implements tea.Model
func (t *Timer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return t, t.handleKey(msg.String())

	case tea.WindowSizeMsg:
		t.width = msg.Width

	case SnapshotMsg:
		if msg.Color != t.snap.Color {
			t.bar = newBar(msg.Color)
		}
		t.snap = timer.Snapshot(msg)
		return t, t.waitForSnapshot()

	case PhaseMsg:
		t.notice = completionNotice(timer.PhaseEvent(msg))
		return t, t.waitForPhase()
	}
	return t, nil
}

func (t *Timer) handleKey(key string) tea.Cmd {
	t.err = nil
	switch key {
	case "q", "ctrl+c":
		t.engine.Pause()
		return tea.Quit
	case " ", "enter":
		t.notice = ""
		t.err = t.engine.Apply(timer.ActionToggle)
	case "r":
		t.err = t.engine.Apply(timer.ActionReset)
	case "R":
		t.notice = ""
		t.err = t.engine.Apply(timer.ActionCompleteReset)
	case "s":
		if !t.engine.SkipBreak() {
			t.notice = "Nothing to skip: not on a break"
		}
	default:
		if i, ok := presetKeys[key]; ok && i < len(timer.Presets) {
			t.err = t.engine.SetWorkDuration(timer.Presets[i])
		}
	}
	return nil
}

func completionNotice(ev timer.PhaseEvent) string {
	if ev.Next.IsBreak() {
		return fmt.Sprintf("Work session complete! Time for a %s. (%d cycles)", ev.Next.Title(), ev.Cycles)
	}
	return "Break over. Ready to focus?"
}

// View implements tea.Model
func (t *Timer) View() string {
	s := t.snap

	title := titleStyle(s.Color).Render(s.PhaseTitle)
	state := mutedStyle.Render("paused")
	if s.IsRunning {
		state = noticeStyle.Render("running")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", state)

	clock := clockStyle(s.Color).Render(s.Display)
	bar := t.bar.ViewAs(s.Progress / 100)

	info := mutedStyle.Render(fmt.Sprintf("Cycles: %d  •  Work: %s",
		s.Cycles, format.DurationLabel(s.WorkMinutes)))
	if !timer.IsPreset(s.WorkMinutes) {
		info += mutedStyle.Render(" (custom)")
	}

	lines := []string{header, clock, bar, "", info}
	if t.notice != "" {
		lines = append(lines, "", warnStyle.Render(t.notice))
	}
	if t.err != nil {
		lines = append(lines, "", errorStyle.Render(t.err.Error()))
	}
	lines = append(lines, "", renderHelp(t.help()))

	return frameStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (t *Timer) help() []binding {
	presets := ""
	for i, p := range timer.Presets {
		if i > 0 {
			presets += "/"
		}
		presets += strconv.Itoa(p)
	}
	return []binding{
		{"space", "start/pause"},
		{"r", "reset"},
		{"R", "reset all"},
		{"s", "skip break"},
		{"1-3", presets + "m"},
		{"q", "quit"},
	}
}
