// ABOUTME: Tests for named timer actions.
// ABOUTME: Checks each action's effect and unknown action errors.
package timer

import (
	"testing"

	"github.com/harperreed/pomodoro/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	e, _ := newTestEngine(shortConfig())

	require.NoError(t, e.Apply(ActionStart))
	assert.True(t, e.Snapshot().IsRunning)

	require.NoError(t, e.Apply(ActionToggle))
	assert.False(t, e.Snapshot().IsRunning)

	require.NoError(t, e.Apply(ActionToggle))
	assert.True(t, e.Snapshot().IsRunning)

	require.NoError(t, e.Apply(ActionPause))
	assert.False(t, e.Snapshot().IsRunning)

	e.Start()
	runOut(e)
	require.Equal(t, models.PhaseShortBreak, e.Snapshot().Phase)

	require.NoError(t, e.Apply(ActionSkip))
	assert.Equal(t, models.PhaseWork, e.Snapshot().Phase)

	require.NoError(t, e.Apply(ActionReset))
	assert.Equal(t, 1, e.Snapshot().Cycles)

	require.NoError(t, e.Apply(ActionCompleteReset))
	assert.Zero(t, e.Snapshot().Cycles)
}

func TestApplyUnknown(t *testing.T) {
	e, _ := newTestEngine(shortConfig())
	assert.ErrorIs(t, e.Apply("explode"), ErrUnknownAction)
}
