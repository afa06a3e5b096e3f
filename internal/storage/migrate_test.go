// ABOUTME: Tests for data migration between storage backends.
// ABOUTME: Covers sqlite-to-sqlite copies, idempotence, and directory checks.
package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/pomodoro/internal/models"
)

func TestMigrateData(t *testing.T) {
	src := setupTestDB(t)
	defer src.Close()
	dst := setupTestDB(t)
	defer dst.Close()

	now := time.Now()
	older := models.NewCycle(25, models.SessionPomodoro).WithRecordedAt(now.Add(-2 * time.Hour))
	newer := models.NewCycle(30, models.SessionStopwatch).WithRecordedAt(now.Add(-1 * time.Hour))
	// Record newer first so source ids are out of chronological order.
	for _, c := range []*models.Cycle{newer, older} {
		if err := src.RecordCycle(c); err != nil {
			t.Fatalf("RecordCycle failed: %v", err)
		}
	}

	summary, err := MigrateData(src, dst)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}
	if summary.Cycles != 2 || summary.Skipped != 0 {
		t.Errorf("summary = %+v, want 2 migrated 0 skipped", summary)
	}

	gotOlder, err := dst.GetCycle(older.UID.String())
	if err != nil {
		t.Fatalf("GetCycle older failed: %v", err)
	}
	gotNewer, err := dst.GetCycle(newer.UID.String())
	if err != nil {
		t.Fatalf("GetCycle newer failed: %v", err)
	}
	if gotOlder.ID >= gotNewer.ID {
		t.Errorf("destination ids should follow recording order: older=%d newer=%d", gotOlder.ID, gotNewer.ID)
	}
	if gotNewer.SessionType != models.SessionStopwatch || gotNewer.DurationMinutes != 30 {
		t.Errorf("newer cycle fields not preserved: %+v", gotNewer)
	}

	summary, err = MigrateData(src, dst)
	if err != nil {
		t.Fatalf("second MigrateData failed: %v", err)
	}
	if summary.Cycles != 0 || summary.Skipped != 2 {
		t.Errorf("second summary = %+v, want 0 migrated 2 skipped", summary)
	}
}

func TestMigrateDataEmptySource(t *testing.T) {
	src := setupTestDB(t)
	defer src.Close()
	dst := setupTestDB(t)
	defer dst.Close()

	summary, err := MigrateData(src, dst)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}
	if summary.Cycles != 0 {
		t.Errorf("expected nothing migrated, got %d", summary.Cycles)
	}
}

func TestIsDirNonEmpty(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name  string
		setup func() string
		want  bool
	}{
		{
			name:  "missing",
			setup: func() string { return filepath.Join(tmpDir, "missing") },
			want:  false,
		},
		{
			name: "empty",
			setup: func() string {
				p := filepath.Join(tmpDir, "empty")
				if err := os.Mkdir(p, 0750); err != nil {
					t.Fatal(err)
				}
				return p
			},
			want: false,
		},
		{
			name: "has file",
			setup: func() string {
				p := filepath.Join(tmpDir, "full")
				if err := os.Mkdir(p, 0750); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(filepath.Join(p, "pomodoro.db"), []byte("x"), 0600); err != nil {
					t.Fatal(err)
				}
				return p
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsDirNonEmpty(tt.setup())
			if err != nil {
				t.Fatalf("IsDirNonEmpty failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsDirNonEmpty = %v, want %v", got, tt.want)
			}
		})
	}
}
