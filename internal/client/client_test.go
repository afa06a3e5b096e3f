// ABOUTME: Tests for the API client against httptest servers.
// ABOUTME: Covers retry policy, error mapping, and recording through a real API server.
package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harperreed/pomodoro/internal/api"
	"github.com/harperreed/pomodoro/internal/models"
	"github.com/harperreed/pomodoro/internal/storage"
	"github.com/harperreed/pomodoro/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() Option {
	return WithRetry(DefaultMaxAttempts, time.Millisecond)
}

// flaky fails the first n requests with status, then answers ok.
func flaky(t *testing.T, n int32, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= n {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestRetriesServerErrors(t *testing.T) {
	srv, calls := flaky(t, 2, http.StatusInternalServerError)
	c := New(srv.URL, fastRetry())

	require.NoError(t, c.Health(context.Background()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGivesUpAfterMaxAttempts(t *testing.T) {
	srv, calls := flaky(t, 100, http.StatusBadGateway)
	c := New(srv.URL, fastRetry())

	err := c.Health(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(DefaultMaxAttempts), calls.Load())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "nope", apiErr.Message)
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	srv, calls := flaky(t, 100, http.StatusBadRequest)
	c := New(srv.URL, fastRetry())

	err := c.Health(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestContextCancelStopsRetrying(t *testing.T) {
	srv, calls := flaky(t, 100, http.StatusInternalServerError)
	c := New(srv.URL, WithRetry(DefaultMaxAttempts, time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.Health(ctx)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNetworkErrorsAreRetried(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, WithRetry(2, time.Millisecond))
	assert.Error(t, c.Health(context.Background()))
}

func TestAPIErrorUnwrap(t *testing.T) {
	assert.ErrorIs(t, &APIError{StatusCode: http.StatusNotFound}, storage.ErrNotFound)
	assert.ErrorIs(t, &APIError{StatusCode: http.StatusServiceUnavailable}, storage.ErrReadOnly)
	assert.NotErrorIs(t, &APIError{StatusCode: http.StatusBadRequest}, storage.ErrNotFound)
	assert.Contains(t, (&APIError{StatusCode: 500}).Error(), "Internal Server Error")
}

// liveServer runs the real API over a temp SQLite database.
func liveServer(t *testing.T, engine *timer.Engine) (*Client, storage.Repository) {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "pomodoro.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	srv := httptest.NewServer(api.NewServer(api.Options{Repo: repo, Engine: engine}).Handler())
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", fastRetry()), repo
}

func TestRecordCycleRoundTrip(t *testing.T) {
	c, repo := liveServer(t, nil)
	ctx := context.Background()

	cycle := models.NewCycle(50, models.SessionStopwatch).WithNotes("refactor")
	require.NoError(t, c.RecordCycle(cycle))
	assert.Equal(t, int64(1), cycle.ID)

	stored, err := repo.GetCycle(cycle.UID.String())
	require.NoError(t, err)
	assert.Equal(t, 50.0, stored.DurationMinutes)
	assert.True(t, stored.RecordedAt.Equal(cycle.RecordedAt.Truncate(time.Second)))

	daily, err := c.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, 1, daily[0].Cycles)

	sum, err := c.Summary(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, sum.GoalHours)

	st := models.SessionStopwatch
	cycles, err := c.ListCycles(ctx, &storage.CycleFilter{SessionType: &st, Limit: 5})
	require.NoError(t, err)
	require.Len(t, cycles, 1)

	out, err := c.Export(ctx, "csv")
	require.NoError(t, err)
	assert.Contains(t, string(out), "stopwatch")

	require.NoError(t, c.DeleteCycle(ctx, cycle.ShortID()))
	err = c.DeleteCycle(ctx, cycle.ShortID())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, c.RecordCycle(models.NewCycle(25, models.SessionPomodoro)))
	n, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecordCycleRejectsInvalid(t *testing.T) {
	c, _ := liveServer(t, nil)
	err := c.RecordCycle(&models.Cycle{DurationMinutes: -1, SessionType: models.SessionPomodoro})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestTimerControl(t *testing.T) {
	_, tf := timer.NewManualTicker()
	engine := timer.New(timer.DefaultConfig(), timer.WithTicker(tf))
	t.Cleanup(engine.Pause)
	c, _ := liveServer(t, engine)
	ctx := context.Background()

	snap, err := c.TimerAction(ctx, "toggle")
	require.NoError(t, err)
	assert.True(t, snap.IsRunning)

	snap, err = c.TimerAction(ctx, "toggle")
	require.NoError(t, err)
	assert.False(t, snap.IsRunning)

	snap, err = c.SetWorkDuration(ctx, 60)
	require.NoError(t, err)
	assert.Equal(t, "01:00:00", snap.Display)

	snap, err = c.Timer(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, snap.WorkMinutes)

	_, err = c.TimerAction(ctx, "bogus")
	assert.Error(t, err)

	on, err := c.ToggleAlwaysOnTop(ctx)
	require.NoError(t, err)
	assert.True(t, on)
	on, err = c.SetAlwaysOnTop(ctx, false)
	require.NoError(t, err)
	assert.False(t, on)
	on, err = c.AlwaysOnTop(ctx)
	require.NoError(t, err)
	assert.False(t, on)
}
