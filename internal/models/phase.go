// ABOUTME: Phase enum for the pomodoro timer state machine.
// ABOUTME: Carries display colour, icon, and title for each phase.
package models

// Phase is one of the timer's three phases.
type Phase string

const (
	PhaseWork       Phase = "work"
	PhaseShortBreak Phase = "shortBreak"
	PhaseLongBreak  Phase = "longBreak"
)

// IsBreak reports whether the phase is a short or long break.
func (p Phase) IsBreak() bool {
	return p == PhaseShortBreak || p == PhaseLongBreak
}

// Color returns the hex colour used to render the phase.
func (p Phase) Color() string {
	switch p {
	case PhaseShortBreak:
		return "#43a047"
	case PhaseLongBreak:
		return "#1e88e5"
	default:
		return "#e53935"
	}
}

// Icon returns a short icon name for the phase.
func (p Phase) Icon() string {
	switch p {
	case PhaseShortBreak:
		return "free_breakfast"
	case PhaseLongBreak:
		return "beach_access"
	default:
		return "work"
	}
}

// Title returns the human readable phase name.
func (p Phase) Title() string {
	switch p {
	case PhaseShortBreak:
		return "Short Break"
	case PhaseLongBreak:
		return "Long Break"
	default:
		return "Work"
	}
}

// StopwatchColor is the accent colour of the stopwatch view.
const StopwatchColor = "#FF6B35"
