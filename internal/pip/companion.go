// ABOUTME: Companion window preferences and the action relay back to the engine.
// ABOUTME: Tracks always-on-top and translates companion actions into timer actions.
package pip

import (
	"fmt"
	"sync"

	"github.com/harperreed/pomodoro/internal/timer"
)

// Preferences holds companion window settings.
type Preferences struct {
	mu          sync.Mutex
	alwaysOnTop bool
	onChange    func(alwaysOnTop bool)
}

// NewPreferences returns preferences with always-on-top set to initial.
// onChange, if set, is called after every change, for persistence.
func NewPreferences(initial bool, onChange func(bool)) *Preferences {
	return &Preferences{alwaysOnTop: initial, onChange: onChange}
}

// AlwaysOnTop reports the current setting.
func (p *Preferences) AlwaysOnTop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alwaysOnTop
}

// SetAlwaysOnTop sets the flag and returns the new value.
func (p *Preferences) SetAlwaysOnTop(v bool) bool {
	p.mu.Lock()
	p.alwaysOnTop = v
	fn := p.onChange
	p.mu.Unlock()
	if fn != nil {
		fn(v)
	}
	return v
}

// ToggleAlwaysOnTop flips the flag and returns the new value.
func (p *Preferences) ToggleAlwaysOnTop() bool {
	p.mu.Lock()
	v := !p.alwaysOnTop
	p.alwaysOnTop = v
	fn := p.onChange
	p.mu.Unlock()
	if fn != nil {
		fn(v)
	}
	return v
}

// Controller is the engine side of the relay.
type Controller interface {
	Apply(a timer.Action) error
}

// ActionExit closes the companion. It never reaches the engine.
const ActionExit = "exitPiP"

// aliases maps companion action names onto timer actions.
var aliases = map[string]timer.Action{
	"skipBreak":     timer.ActionSkip,
	"completeReset": timer.ActionCompleteReset,
}

// ParseAction resolves a companion action name.
func ParseAction(name string) (timer.Action, error) {
	if a, ok := aliases[name]; ok {
		return a, nil
	}
	for _, a := range timer.Actions {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", timer.ErrUnknownAction, name)
}

// Relay forwards a companion action to ctrl. The exit action is accepted
// and dropped.
func Relay(ctrl Controller, name string) error {
	if name == ActionExit {
		return nil
	}
	a, err := ParseAction(name)
	if err != nil {
		return err
	}
	return ctrl.Apply(a)
}
