// ABOUTME: Pomodoro timer engine: work, short break and long break phases.
// ABOUTME: Ticks once a second, stops at each phase boundary, and records finished work.
package timer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/pomodoro/internal/format"
	"github.com/harperreed/pomodoro/internal/logging"
	"github.com/harperreed/pomodoro/internal/models"
)

// Work duration bounds in minutes.
const (
	MinWorkMinutes = 1
	MaxWorkMinutes = 120
)

// Presets are the work durations offered as shortcuts.
var Presets = []int{25, 45, 60}

// ErrInvalidWorkDuration is returned by SetWorkDuration for out-of-range values.
var ErrInvalidWorkDuration = errors.New("invalid work duration")

// Config holds phase lengths in minutes.
type Config struct {
	WorkMinutes       int
	ShortBreakMinutes int
	LongBreakMinutes  int
	// LongBreakInterval is the number of work phases per long break.
	LongBreakInterval int
}

// DefaultConfig returns the classic 25/5/15 pomodoro with a long break every fourth cycle.
func DefaultConfig() Config {
	return Config{
		WorkMinutes:       25,
		ShortBreakMinutes: 5,
		LongBreakMinutes:  15,
		LongBreakInterval: 4,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.WorkMinutes < MinWorkMinutes || c.WorkMinutes > MaxWorkMinutes {
		c.WorkMinutes = d.WorkMinutes
	}
	if c.ShortBreakMinutes <= 0 {
		c.ShortBreakMinutes = d.ShortBreakMinutes
	}
	if c.LongBreakMinutes <= 0 {
		c.LongBreakMinutes = d.LongBreakMinutes
	}
	if c.LongBreakInterval <= 0 {
		c.LongBreakInterval = d.LongBreakInterval
	}
	return c
}

func (c Config) seconds(p models.Phase) int {
	switch p {
	case models.PhaseShortBreak:
		return c.ShortBreakMinutes * 60
	case models.PhaseLongBreak:
		return c.LongBreakMinutes * 60
	default:
		return c.WorkMinutes * 60
	}
}

// State is the engine's mutable state. Times are in seconds.
type State struct {
	TimeLeft          int          `json:"timeLeft"`
	IsRunning         bool         `json:"isRunning"`
	Phase             models.Phase `json:"phase"`
	Cycles            int          `json:"cycles"`
	TotalTimeForPhase int          `json:"totalTimeForPhase"`
	// UserStarted is set by Start and cleared by the resets. Only
	// user-started work phases are recorded.
	UserStarted bool `json:"userStarted"`
	WorkMinutes int  `json:"workMinutes"`
}

// Snapshot is a display-ready copy of the state for mirrors and clients.
type Snapshot struct {
	State
	Progress   float64   `json:"progress"`
	Display    string    `json:"display"`
	PhaseTitle string    `json:"phaseTitle"`
	Color      string    `json:"color"`
	UpdatedAt  time.Time `json:"updatedAt"`
	// Seq increases with every snapshot the engine takes.
	Seq uint64 `json:"seq"`
}

// PhaseEvent is emitted when a user-started phase runs out.
type PhaseEvent struct {
	Completed models.Phase `json:"completed"`
	Next      models.Phase `json:"next"`
	Cycles    int          `json:"cycles"`
}

// Recorder persists completed cycles. storage.Repository and the API client both satisfy it.
type Recorder interface {
	RecordCycle(c *models.Cycle) error
}

// Engine is a pomodoro timer. All methods are safe for concurrent use.
type Engine struct {
	mu    sync.Mutex
	cfg   Config
	state State
	stop  chan struct{}
	seq   uint64

	// notifyMu orders listener dispatch; it is always taken before mu.
	notifyMu sync.Mutex
	notified uint64

	recorder  Recorder
	logger    *log.Logger
	newTicker TickerFunc
	now       func() time.Time

	nextID        int
	listeners     map[int]func(Snapshot)
	phaseHandlers map[int]func(PhaseEvent)
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder sets where completed work phases are recorded.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTicker replaces the one-second wall clock ticker.
func WithTicker(f TickerFunc) Option {
	return func(e *Engine) { e.newTicker = f }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New returns an idle engine at the start of a work phase.
func New(cfg Config, opts ...Option) *Engine {
	cfg = cfg.normalized()
	e := &Engine{
		cfg:           cfg,
		logger:        logging.Discard(),
		newTicker:     RealTicker,
		now:           time.Now,
		listeners:     make(map[int]func(Snapshot)),
		phaseHandlers: make(map[int]func(PhaseEvent)),
	}
	for _, opt := range opts {
		opt(e)
	}
	work := cfg.seconds(models.PhaseWork)
	e.state = State{
		TimeLeft:          work,
		Phase:             models.PhaseWork,
		TotalTimeForPhase: work,
		WorkMinutes:       cfg.WorkMinutes,
	}
	return e
}

// Config returns the active phase lengths.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	s := e.state
	e.seq++
	return Snapshot{
		Seq:        e.seq,
		State:      s,
		Progress:   progress(s.TotalTimeForPhase-s.TimeLeft, s.TotalTimeForPhase),
		Display:    format.Clock(s.TimeLeft),
		PhaseTitle: s.Phase.Title(),
		Color:      s.Phase.Color(),
		UpdatedAt:  e.now(),
	}
}

// Progress returns how much of the current phase has elapsed, 0..100.
func (e *Engine) Progress() float64 {
	return e.Snapshot().Progress
}

func progress(elapsed, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(elapsed) / float64(total) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Start runs the timer. It is a no-op when already running.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.state.IsRunning {
		e.mu.Unlock()
		return
	}
	e.state.IsRunning = true
	e.state.UserStarted = true
	stop := make(chan struct{})
	e.stop = stop
	t := e.newTicker(time.Second)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	go e.run(t, stop)
	e.logger.Debug("timer started", "phase", snap.Phase, "left", snap.Display)
	e.notify(snap)
}

func (e *Engine) run(t Ticker, stop chan struct{}) {
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			e.tick(stop)
		}
	}
}

// Pause stops the timer without changing the phase.
func (e *Engine) Pause() {
	e.update(func() { e.stopLocked() })
}

// Reset returns to a fresh work phase, keeping the cycle count.
func (e *Engine) Reset() {
	e.update(func() {
		e.stopLocked()
		e.enterLocked(models.PhaseWork)
		e.state.UserStarted = false
	})
}

// CompleteReset is Reset plus zeroing the cycle count.
func (e *Engine) CompleteReset() {
	e.update(func() {
		e.stopLocked()
		e.enterLocked(models.PhaseWork)
		e.state.UserStarted = false
		e.state.Cycles = 0
	})
}

// SkipBreak jumps from a break to an idle work phase. It reports whether a break was skipped.
func (e *Engine) SkipBreak() bool {
	skipped := false
	e.update(func() {
		if !e.state.Phase.IsBreak() {
			return
		}
		e.stopLocked()
		e.enterLocked(models.PhaseWork)
		skipped = true
	})
	return skipped
}

// SetWorkDuration changes the work length. An idle work phase picks it up immediately.
func (e *Engine) SetWorkDuration(minutes int) error {
	if minutes < MinWorkMinutes || minutes > MaxWorkMinutes {
		return fmt.Errorf("%w: %d minutes (must be %d-%d)", ErrInvalidWorkDuration, minutes, MinWorkMinutes, MaxWorkMinutes)
	}
	e.update(func() {
		e.cfg.WorkMinutes = minutes
		e.state.WorkMinutes = minutes
		if !e.state.IsRunning && e.state.Phase == models.PhaseWork {
			e.enterLocked(models.PhaseWork)
		}
	})
	return nil
}

// IsPreset reports whether minutes is one of the preset work durations.
func IsPreset(minutes int) bool {
	for _, p := range Presets {
		if p == minutes {
			return true
		}
	}
	return false
}

// Restore loads a saved state. The restored timer is always paused.
func (e *Engine) Restore(s State) {
	e.update(func() {
		e.stopLocked()
		if s.WorkMinutes >= MinWorkMinutes && s.WorkMinutes <= MaxWorkMinutes {
			e.cfg.WorkMinutes = s.WorkMinutes
		}
		switch s.Phase {
		case models.PhaseWork, models.PhaseShortBreak, models.PhaseLongBreak:
		default:
			s.Phase = models.PhaseWork
		}
		total := e.cfg.seconds(s.Phase)
		if s.TimeLeft < 0 || s.TimeLeft > total {
			s.TimeLeft = total
		}
		if s.Cycles < 0 {
			s.Cycles = 0
		}
		s.TotalTimeForPhase = total
		s.WorkMinutes = e.cfg.WorkMinutes
		s.IsRunning = false
		e.state = s
	})
}

// Tick advances a running timer by one second. When the phase has
// already reached zero it moves to the next phase and stops.
func (e *Engine) Tick() {
	e.tick(nil)
}

func (e *Engine) tick(from chan struct{}) {
	e.mu.Lock()
	if !e.state.IsRunning || (from != nil && from != e.stop) {
		e.mu.Unlock()
		return
	}

	var (
		event *PhaseEvent
		cycle *models.Cycle
	)
	if e.state.TimeLeft > 0 {
		e.state.TimeLeft--
	} else {
		event, cycle = e.advanceLocked()
	}
	snap := e.snapshotLocked()
	recorder := e.recorder
	e.mu.Unlock()

	e.notify(snap)
	if event != nil {
		e.logger.Info("phase complete", "completed", event.Completed, "next", event.Next, "cycles", event.Cycles)
		e.emitPhase(*event)
	}
	if cycle != nil && recorder != nil {
		if err := recorder.RecordCycle(cycle); err != nil {
			e.logger.Error("record cycle", "minutes", cycle.DurationMinutes, "err", err)
		} else {
			e.logger.Info("cycle recorded", "id", cycle.ID, "minutes", cycle.DurationMinutes)
		}
	}
}

// advanceLocked moves to the next phase and stops the timer. It returns
// the event and cycle to publish when the finished phase was user-started.
func (e *Engine) advanceLocked() (*PhaseEvent, *models.Cycle) {
	prev := e.state
	var next models.Phase
	if prev.Phase == models.PhaseWork {
		e.state.Cycles++
		if e.state.Cycles%e.cfg.LongBreakInterval == 0 {
			next = models.PhaseLongBreak
		} else {
			next = models.PhaseShortBreak
		}
	} else {
		next = models.PhaseWork
	}
	e.stopLocked()
	e.enterLocked(next)

	if !prev.UserStarted {
		return nil, nil
	}
	event := &PhaseEvent{Completed: prev.Phase, Next: next, Cycles: e.state.Cycles}
	if !next.IsBreak() {
		return event, nil
	}
	cycle := models.NewCycle(float64(e.cfg.WorkMinutes), models.SessionPomodoro).WithRecordedAt(e.now())
	return event, cycle
}

func (e *Engine) enterLocked(p models.Phase) {
	secs := e.cfg.seconds(p)
	e.state.Phase = p
	e.state.TimeLeft = secs
	e.state.TotalTimeForPhase = secs
}

func (e *Engine) stopLocked() {
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
	e.state.IsRunning = false
}

// update applies fn under the lock and notifies listeners.
func (e *Engine) update(fn func()) {
	e.mu.Lock()
	fn()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// OnChange registers fn to receive state changes in order. A snapshot that
// is older than one already delivered is dropped. Handlers run one at a time,
// must not block, and must not call back into the engine's mutators. The
// returned func unregisters it.
func (e *Engine) OnChange(fn func(Snapshot)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// OnPhaseComplete registers fn for phase-complete events.
func (e *Engine) OnPhaseComplete(fn func(PhaseEvent)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.phaseHandlers[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.phaseHandlers, id)
	}
}

func (e *Engine) notify(s Snapshot) {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	if s.Seq <= e.notified {
		return
	}
	e.notified = s.Seq
	e.mu.Lock()
	fns := make([]func(Snapshot), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func (e *Engine) emitPhase(ev PhaseEvent) {
	e.mu.Lock()
	fns := make([]func(PhaseEvent), 0, len(e.phaseHandlers))
	for _, fn := range e.phaseHandlers {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
