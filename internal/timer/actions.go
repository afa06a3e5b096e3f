// ABOUTME: Named timer actions relayed from companions and the HTTP API.
// ABOUTME: Maps action strings onto Engine methods.
package timer

import (
	"errors"
	"fmt"
)

// Action is a remote control command for the engine.
type Action string

const (
	ActionStart         Action = "start"
	ActionPause         Action = "pause"
	ActionToggle        Action = "toggle"
	ActionReset         Action = "reset"
	ActionCompleteReset Action = "complete-reset"
	ActionSkip          Action = "skip"
)

// Actions lists every accepted action.
var Actions = []Action{ActionStart, ActionPause, ActionToggle, ActionReset, ActionCompleteReset, ActionSkip}

// ErrUnknownAction is returned by Apply for unrecognised actions.
var ErrUnknownAction = errors.New("unknown action")

// Apply runs a named action against the engine.
func (e *Engine) Apply(a Action) error {
	switch a {
	case ActionStart:
		e.Start()
	case ActionPause:
		e.Pause()
	case ActionToggle:
		if e.Snapshot().IsRunning {
			e.Pause()
		} else {
			e.Start()
		}
	case ActionReset:
		e.Reset()
	case ActionCompleteReset:
		e.CompleteReset()
	case ActionSkip:
		e.SkipBreak()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	return nil
}
