// ABOUTME: Free-running stopwatch that records its elapsed time as a cycle.
// ABOUTME: Sessions under a minute are discarded; long sessions count as full cycles.
package stopwatch

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/pomodoro/internal/format"
	"github.com/harperreed/pomodoro/internal/logging"
	"github.com/harperreed/pomodoro/internal/models"
	"github.com/harperreed/pomodoro/internal/timer"
)

const (
	// MinSessionSeconds is the shortest session Finish will record.
	MinSessionSeconds = 60
	// CycleThresholdSeconds is the length past which a session counts as a full cycle.
	CycleThresholdSeconds = 900
	// ProgressSpanSeconds is the elapsed time shown as a full progress bar.
	ProgressSpanSeconds = 2 * 60 * 60
)

// ErrSessionTooShort is returned by Finish when less than MinSessionSeconds elapsed.
var ErrSessionTooShort = errors.New("session too short")

// State is the stopwatch's mutable state.
type State struct {
	ElapsedSeconds int  `json:"elapsedSeconds"`
	IsRunning      bool `json:"isRunning"`
	IsPaused       bool `json:"isPaused"`
}

// Snapshot is a display-ready copy of the state.
type Snapshot struct {
	State
	Progress float64 `json:"progress"`
	Display  string  `json:"display"`
	Color    string  `json:"color"`
	Seq      uint64  `json:"seq"`
}

// Result describes a recorded session.
type Result struct {
	Cycle *models.Cycle
	// CountsAsCycle is true for sessions longer than CycleThresholdSeconds.
	CountsAsCycle bool
}

// Stopwatch counts up once a second. All methods are safe for concurrent use.
type Stopwatch struct {
	mu    sync.Mutex
	state State
	stop  chan struct{}
	seq   uint64

	// notifyMu orders onChange calls; it is always taken before mu.
	notifyMu sync.Mutex
	notified uint64

	recorder  timer.Recorder
	logger    *log.Logger
	newTicker timer.TickerFunc
	now       func() time.Time
	onChange  func(Snapshot)
}

// Option configures a Stopwatch.
type Option func(*Stopwatch)

func WithRecorder(r timer.Recorder) Option {
	return func(s *Stopwatch) { s.recorder = r }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Stopwatch) { s.logger = l }
}

func WithTicker(f timer.TickerFunc) Option {
	return func(s *Stopwatch) { s.newTicker = f }
}

func WithClock(now func() time.Time) Option {
	return func(s *Stopwatch) { s.now = now }
}

// WithOnChange registers a handler for state changes. Calls are serialised
// and a snapshot older than one already delivered is dropped. It must not
// block or call back into the stopwatch's mutators.
func WithOnChange(fn func(Snapshot)) Option {
	return func(s *Stopwatch) { s.onChange = fn }
}

// New returns a stopped stopwatch at zero.
func New(opts ...Option) *Stopwatch {
	s := &Stopwatch{
		logger:    logging.Discard(),
		newTicker: timer.RealTicker,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state.
func (s *Stopwatch) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Stopwatch) snapshotLocked() Snapshot {
	s.seq++
	return Snapshot{
		Seq:      s.seq,
		State:    s.state,
		Progress: progress(s.state.ElapsedSeconds),
		Display:  format.Clock(s.state.ElapsedSeconds),
		Color:    models.StopwatchColor,
	}
}

// Progress returns elapsed time against a two hour span, capped at 100.
func (s *Stopwatch) Progress() float64 {
	return s.Snapshot().Progress
}

func progress(elapsed int) float64 {
	return math.Min(100, float64(elapsed)/ProgressSpanSeconds*100)
}

// Start begins counting. It is a no-op when already running.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	if s.state.IsRunning {
		s.mu.Unlock()
		return
	}
	s.runLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Resume continues a paused stopwatch. It does nothing unless paused.
func (s *Stopwatch) Resume() {
	s.mu.Lock()
	if s.state.IsRunning || !s.state.IsPaused {
		s.mu.Unlock()
		return
	}
	s.runLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Stopwatch) runLocked() {
	s.state.IsRunning = true
	s.state.IsPaused = false
	stop := make(chan struct{})
	s.stop = stop
	t := s.newTicker(time.Second)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C():
				s.tick(stop)
			}
		}
	}()
}

// Pause stops counting and marks the stopwatch paused.
func (s *Stopwatch) Pause() {
	s.mu.Lock()
	s.pauseLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Stopwatch) pauseLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.state.IsRunning = false
	s.state.IsPaused = true
}

// Reset stops and zeroes the stopwatch.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	s.resetLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Stopwatch) resetLocked() {
	s.pauseLocked()
	s.state = State{}
}

// Restore loads a saved state, paused.
func (s *Stopwatch) Restore(st State) {
	s.mu.Lock()
	s.pauseLocked()
	if st.ElapsedSeconds < 0 {
		st.ElapsedSeconds = 0
	}
	s.state = State{ElapsedSeconds: st.ElapsedSeconds, IsPaused: st.ElapsedSeconds > 0}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Tick adds one second to a running stopwatch.
func (s *Stopwatch) Tick() {
	s.tick(nil)
}

func (s *Stopwatch) tick(from chan struct{}) {
	s.mu.Lock()
	if !s.state.IsRunning || (from != nil && from != s.stop) {
		s.mu.Unlock()
		return
	}
	s.state.ElapsedSeconds++
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Finish pauses and records the session as a stopwatch cycle of
// round(elapsed/60, 2) minutes. Sessions under a minute are discarded
// with ErrSessionTooShort. On a recording error the session is kept so
// it can be retried.
func (s *Stopwatch) Finish() (*Result, error) {
	s.mu.Lock()
	s.pauseLocked()
	elapsed := s.state.ElapsedSeconds
	if elapsed < MinSessionSeconds {
		s.resetLocked()
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		s.logger.Warn("stopwatch session too short", "elapsed", elapsed, "min", MinSessionSeconds)
		return nil, fmt.Errorf("%w: %ds (minimum %ds)", ErrSessionTooShort, elapsed, MinSessionSeconds)
	}
	recorder := s.recorder
	cycle := models.NewCycle(Minutes(elapsed), models.SessionStopwatch).WithRecordedAt(s.now())
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	if recorder != nil {
		if err := recorder.RecordCycle(cycle); err != nil {
			s.logger.Error("record stopwatch session", "minutes", cycle.DurationMinutes, "err", err)
			return nil, fmt.Errorf("record stopwatch session: %w", err)
		}
	}

	res := &Result{Cycle: cycle, CountsAsCycle: elapsed > CycleThresholdSeconds}
	s.logger.Info("stopwatch session recorded", "minutes", cycle.DurationMinutes, "counts_as_cycle", res.CountsAsCycle)
	s.Reset()
	return res, nil
}

// Minutes converts elapsed seconds to minutes rounded to two decimals.
func Minutes(elapsedSeconds int) float64 {
	return math.Round(float64(elapsedSeconds)/60*100) / 100
}

func (s *Stopwatch) notify(snap Snapshot) {
	if s.onChange == nil {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if snap.Seq <= s.notified {
		return
	}
	s.notified = snap.Seq
	s.onChange(snap)
}
