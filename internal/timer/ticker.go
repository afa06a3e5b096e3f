// ABOUTME: Ticker abstraction so engines can run on a fake clock in tests.
// ABOUTME: RealTicker adapts time.Ticker.
package timer

import "time"

// Ticker delivers ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// RealTicker is the wall clock TickerFunc.
func RealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// ManualTicker is a Ticker driven by hand. Fire blocks until the engine
// takes the tick.
type ManualTicker struct {
	ch chan time.Time
}

// NewManualTicker returns a TickerFunc that always hands out mt.
func NewManualTicker() (*ManualTicker, TickerFunc) {
	mt := &ManualTicker{ch: make(chan time.Time)}
	return mt, func(time.Duration) Ticker { return mt }
}

func (m *ManualTicker) C() <-chan time.Time { return m.ch }
func (m *ManualTicker) Stop()               {}

// Fire sends one tick. It returns false if nothing received it within a second.
func (m *ManualTicker) Fire() bool {
	select {
	case m.ch <- time.Now():
		return true
	case <-time.After(time.Second):
		return false
	}
}
