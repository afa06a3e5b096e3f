// ABOUTME: Tests for the SQLite Repository implementation.
// ABOUTME: Verifies cycle CRUD, prefix resolution, daily stats, and clearing.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/pomodoro/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	tmpDir := t.TempDir()
	db, err := Open(filepath.Join(tmpDir, "pomodoro.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return db
}

func TestOpenCreatesFileWithRestrictedPermissions(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "pomodoro.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	info, err := os.Stat(dbPath)
	if err != nil {
		t.Fatalf("stat db: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}
	if db.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
	}
}

func TestRecordAndGetCycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	c := models.NewCycle(25, models.SessionPomodoro).WithNotes("write report")
	if err := db.RecordCycle(c); err != nil {
		t.Fatalf("RecordCycle failed: %v", err)
	}
	if c.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}

	got, err := db.GetCycle(c.UID.String())
	if err != nil {
		t.Fatalf("GetCycle failed: %v", err)
	}
	if got.UID != c.UID {
		t.Errorf("UID mismatch: got %v, want %v", got.UID, c.UID)
	}
	if got.ID != c.ID {
		t.Errorf("ID mismatch: got %d, want %d", got.ID, c.ID)
	}
	if got.DurationMinutes != 25 {
		t.Errorf("DurationMinutes = %v, want 25", got.DurationMinutes)
	}
	if got.SessionType != models.SessionPomodoro {
		t.Errorf("SessionType = %q, want pomodoro", got.SessionType)
	}
	if got.Notes == nil || *got.Notes != "write report" {
		t.Errorf("Notes mismatch: got %v", got.Notes)
	}
	if !got.RecordedAt.Equal(c.RecordedAt.Truncate(time.Second)) {
		t.Errorf("RecordedAt = %v, want %v", got.RecordedAt, c.RecordedAt.Truncate(time.Second))
	}
}

func TestRecordCycleRejectsInvalid(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	tests := []struct {
		name  string
		cycle *models.Cycle
		want  error
	}{
		{"negative duration", models.NewCycle(-5, models.SessionPomodoro), models.ErrInvalidDuration},
		{"too long", models.NewCycle(models.MaxCycleMinutes+1, models.SessionPomodoro), models.ErrInvalidDuration},
		{"bad type", models.NewCycle(25, "meditation"), models.ErrInvalidSessionType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.RecordCycle(tt.cycle)
			if !errors.Is(err, tt.want) {
				t.Errorf("RecordCycle error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestIDsAreMonotonic(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	var last int64
	for i := 0; i < 5; i++ {
		c := models.NewCycle(25, models.SessionPomodoro)
		if err := db.RecordCycle(c); err != nil {
			t.Fatalf("RecordCycle failed: %v", err)
		}
		if c.ID <= last {
			t.Fatalf("id %d not greater than previous %d", c.ID, last)
		}
		last = c.ID
	}

	if _, err := db.ClearAll(); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	c := models.NewCycle(25, models.SessionPomodoro)
	if err := db.RecordCycle(c); err != nil {
		t.Fatalf("RecordCycle failed: %v", err)
	}
	if c.ID <= last {
		t.Errorf("id after clear = %d, want > %d", c.ID, last)
	}
}

func TestGetCycleByPrefix(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	c := models.NewCycle(25, models.SessionPomodoro)
	if err := db.RecordCycle(c); err != nil {
		t.Fatalf("RecordCycle failed: %v", err)
	}

	got, err := db.GetCycle(c.ShortID())
	if err != nil {
		t.Fatalf("GetCycle by prefix failed: %v", err)
	}
	if got.UID != c.UID {
		t.Errorf("UID mismatch: got %v, want %v", got.UID, c.UID)
	}
}

func TestGetCycleNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for _, id := range []string{"", "deadbeef", "00000000-0000-0000-0000-000000000000"} {
		if _, err := db.GetCycle(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetCycle(%q) error = %v, want ErrNotFound", id, err)
		}
	}
}

func TestListCycles(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	now := time.Now()
	c1 := models.NewCycle(25, models.SessionPomodoro).WithRecordedAt(now.Add(-3 * time.Hour))
	c2 := models.NewCycle(20, models.SessionStopwatch).WithRecordedAt(now.Add(-2 * time.Hour))
	c3 := models.NewCycle(25, models.SessionPomodoro).WithRecordedAt(now.Add(-1 * time.Hour))

	for _, c := range []*models.Cycle{c1, c2, c3} {
		if err := db.RecordCycle(c); err != nil {
			t.Fatalf("RecordCycle failed: %v", err)
		}
	}

	t.Run("all newest first", func(t *testing.T) {
		cycles, err := db.ListCycles(nil)
		if err != nil {
			t.Fatalf("ListCycles failed: %v", err)
		}
		if len(cycles) != 3 {
			t.Fatalf("expected 3 cycles, got %d", len(cycles))
		}
		if cycles[0].UID != c3.UID || cycles[2].UID != c1.UID {
			t.Errorf("cycles not ordered newest first")
		}
	})

	t.Run("by session type", func(t *testing.T) {
		st := models.SessionStopwatch
		cycles, err := db.ListCycles(&CycleFilter{SessionType: &st})
		if err != nil {
			t.Fatalf("ListCycles failed: %v", err)
		}
		if len(cycles) != 1 || cycles[0].UID != c2.UID {
			t.Errorf("expected only the stopwatch cycle, got %d cycles", len(cycles))
		}
	})

	t.Run("since", func(t *testing.T) {
		since := now.Add(-150 * time.Minute)
		cycles, err := db.ListCycles(&CycleFilter{Since: &since})
		if err != nil {
			t.Fatalf("ListCycles failed: %v", err)
		}
		if len(cycles) != 2 {
			t.Errorf("expected 2 cycles, got %d", len(cycles))
		}
	})

	t.Run("limit", func(t *testing.T) {
		cycles, err := db.ListCycles(&CycleFilter{Limit: 1})
		if err != nil {
			t.Fatalf("ListCycles failed: %v", err)
		}
		if len(cycles) != 1 || cycles[0].UID != c3.UID {
			t.Errorf("expected newest cycle only")
		}
	})
}

func TestDeleteCycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	c := models.NewCycle(25, models.SessionPomodoro)
	if err := db.RecordCycle(c); err != nil {
		t.Fatalf("RecordCycle failed: %v", err)
	}

	if err := db.DeleteCycle(c.ShortID()); err != nil {
		t.Fatalf("DeleteCycle failed: %v", err)
	}
	if _, err := db.GetCycle(c.UID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := db.DeleteCycle(c.UID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestDailyStats(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	today := time.Now()
	yesterday := today.AddDate(0, 0, -1)

	cycles := []*models.Cycle{
		models.NewCycle(25, models.SessionPomodoro).WithRecordedAt(today),
		models.NewCycle(35, models.SessionStopwatch).WithRecordedAt(today),
		models.NewCycle(25, models.SessionPomodoro).WithRecordedAt(yesterday),
	}
	for _, c := range cycles {
		if err := db.RecordCycle(c); err != nil {
			t.Fatalf("RecordCycle failed: %v", err)
		}
	}

	stats, err := db.DailyStats()
	if err != nil {
		t.Fatalf("DailyStats failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 days, got %d", len(stats))
	}
	if stats[0].Date != today.Format(models.DateLayout) {
		t.Errorf("first day = %s, want today", stats[0].Date)
	}
	if stats[0].Cycles != 2 || stats[0].Minutes != 60 || stats[0].Hours != 1 {
		t.Errorf("today = %+v, want 2 cycles / 60 min / 1h", stats[0])
	}
	if stats[1].Cycles != 1 {
		t.Errorf("yesterday cycles = %d, want 1", stats[1].Cycles)
	}
}

func TestDailyStatsEmpty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	stats, err := db.DailyStats()
	if err != nil {
		t.Fatalf("DailyStats failed: %v", err)
	}
	if stats == nil || len(stats) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", stats)
	}
}

func TestClearAll(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := db.RecordCycle(models.NewCycle(25, models.SessionPomodoro)); err != nil {
			t.Fatalf("RecordCycle failed: %v", err)
		}
	}

	n, err := db.ClearAll()
	if err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	if n != 3 {
		t.Errorf("ClearAll removed %d, want 3", n)
	}

	cycles, _ := db.ListCycles(nil)
	if len(cycles) != 0 {
		t.Errorf("expected empty log, got %d cycles", len(cycles))
	}

	n, err = db.ClearAll()
	if err != nil || n != 0 {
		t.Errorf("ClearAll on empty log = (%d, %v), want (0, nil)", n, err)
	}
}
