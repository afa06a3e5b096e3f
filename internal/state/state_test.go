// ABOUTME: Tests for the engine state store.
// ABOUTME: Uses in-memory and on-disk Badger databases.
package state

import (
	"testing"

	"github.com/harperreed/pomodoro/internal/models"
	"github.com/harperreed/pomodoro/internal/stopwatch"
	"github.com/harperreed/pomodoro/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLoadEmpty(t *testing.T) {
	s := setupTestStore(t)

	_, ok, err := s.LoadTimer()
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.LoadStopwatch()
	require.NoError(t, err)
	assert.False(t, ok)

	onTop, err := s.LoadAlwaysOnTop()
	require.NoError(t, err)
	assert.False(t, onTop)
}

func TestTimerRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	want := timer.State{
		TimeLeft:          300,
		Phase:             models.PhaseShortBreak,
		Cycles:            3,
		TotalTimeForPhase: 300,
		UserStarted:       true,
		WorkMinutes:       45,
	}

	require.NoError(t, s.SaveTimer(want))
	got, ok, err := s.LoadTimer()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestStopwatchAndPreferences(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.SaveStopwatch(stopwatch.State{ElapsedSeconds: 1234, IsPaused: true}))
	got, ok, err := s.LoadStopwatch()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1234, got.ElapsedSeconds)

	require.NoError(t, s.SaveAlwaysOnTop(true))
	onTop, err := s.LoadAlwaysOnTop()
	require.NoError(t, err)
	assert.True(t, onTop)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveTimer(timer.State{Phase: models.PhaseWork, TimeLeft: 42, Cycles: 2}))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.LoadTimer()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 42, got.TimeLeft)
	assert.Equal(t, 2, got.Cycles)
}

func TestEngineRestoreFromStore(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.SaveTimer(timer.State{Phase: models.PhaseWork, TimeLeft: 600, Cycles: 1, WorkMinutes: 45, IsRunning: true}))

	saved, ok, err := s.LoadTimer()
	require.NoError(t, err)
	require.True(t, ok)

	e := timer.New(timer.DefaultConfig())
	e.Restore(saved)

	snap := e.Snapshot()
	assert.Equal(t, 600, snap.TimeLeft)
	assert.Equal(t, 45*60, snap.TotalTimeForPhase)
	assert.False(t, snap.IsRunning)
}
