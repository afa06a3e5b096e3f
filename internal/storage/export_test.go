// ABOUTME: Tests for export and import of the cycle log.
// ABOUTME: Covers JSON, YAML, CSV, and Markdown output plus JSON import.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/pomodoro/internal/models"
	"gopkg.in/yaml.v3"
)

func seedCycles(t *testing.T, db *DB) []*models.Cycle {
	t.Helper()
	noon := testNoon()
	cycles := []*models.Cycle{
		models.NewCycle(25, models.SessionPomodoro).WithRecordedAt(noon.Add(-2 * time.Hour)),
		models.NewCycle(18.5, models.SessionStopwatch).WithRecordedAt(noon.Add(-1 * time.Hour)).WithNotes("reading, notes"),
		models.NewCycle(25, models.SessionPomodoro).WithRecordedAt(noon.AddDate(0, 0, -1)),
	}
	for _, c := range cycles {
		if err := db.RecordCycle(c); err != nil {
			t.Fatalf("RecordCycle failed: %v", err)
		}
	}
	return cycles
}

// testNoon keeps seeded cycles on a stable local day regardless of when tests run.
func testNoon() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.Local)
}

func TestGetAllData(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedCycles(t, db)

	data, err := db.GetAllData()
	if err != nil {
		t.Fatalf("GetAllData failed: %v", err)
	}
	if data.Version != ExportVersion {
		t.Errorf("Version = %q, want %q", data.Version, ExportVersion)
	}
	if data.Tool != "pomodoro" {
		t.Errorf("Tool = %q, want pomodoro", data.Tool)
	}
	if len(data.Cycles) != 3 {
		t.Errorf("expected 3 cycles, got %d", len(data.Cycles))
	}
	if len(data.Daily) != 2 {
		t.Errorf("expected 2 daily rows, got %d", len(data.Daily))
	}
}

func TestGetAllDataEmpty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	data, err := db.GetAllData()
	if err != nil {
		t.Fatalf("GetAllData failed: %v", err)
	}
	raw, err := ExportJSON(data)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	if !strings.Contains(string(raw), `"cycles": []`) {
		t.Errorf("expected empty cycles array in %s", raw)
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	src := setupTestDB(t)
	defer src.Close()
	seeded := seedCycles(t, src)

	raw, err := Export(src, "json")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var parsed ExportData
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if len(parsed.Cycles) != len(seeded) {
		t.Fatalf("parsed %d cycles, want %d", len(parsed.Cycles), len(seeded))
	}

	dst := setupTestDB(t)
	defer dst.Close()

	n, err := ImportJSON(dst, raw)
	if err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}
	if n != len(seeded) {
		t.Errorf("imported %d, want %d", n, len(seeded))
	}

	// Importing again is a no-op because UIDs already exist.
	n, err = ImportJSON(dst, raw)
	if err != nil {
		t.Fatalf("second ImportJSON failed: %v", err)
	}
	if n != 0 {
		t.Errorf("second import inserted %d, want 0", n)
	}

	got, err := dst.GetCycle(seeded[1].UID.String())
	if err != nil {
		t.Fatalf("GetCycle failed: %v", err)
	}
	if got.Notes == nil || *got.Notes != "reading, notes" {
		t.Errorf("notes lost in round trip: %v", got.Notes)
	}
}

func TestImportJSONInvalid(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := ImportJSON(db, []byte("{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestImportJSONRejectsUnusableEntries(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"null entry", `{"cycles":[null]}`},
		{"null after valid", `{"cycles":[{"uid":"0b6f2c1e-3f5a-4d2b-9c1e-2a7d4e5f6a7b","duration_minutes":25,"session_type":"pomodoro"},null]}`},
		{"missing uid", `{"cycles":[{"duration_minutes":25,"session_type":"pomodoro"}]}`},
		{"nil uid", `{"cycles":[{"uid":"00000000-0000-0000-0000-000000000000","duration_minutes":25}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			n, err := ImportJSON(db, []byte(tt.raw))
			if !errors.Is(err, ErrInvalidImport) {
				t.Fatalf("expected ErrInvalidImport, got %v", err)
			}
			if n != 0 {
				t.Errorf("imported %d, want 0", n)
			}
			cycles, err := db.ListCycles(nil)
			if err != nil {
				t.Fatalf("ListCycles failed: %v", err)
			}
			if len(cycles) != 0 {
				t.Errorf("expected nothing stored, got %d cycles", len(cycles))
			}
		})
	}
}

func TestExportYAML(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedCycles(t, db)

	raw, err := Export(db, "yaml")
	if err != nil {
		t.Fatalf("Export yaml failed: %v", err)
	}

	var parsed map[string]interface{}
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("exported YAML does not parse: %v", err)
	}
	cycles, ok := parsed["cycles"].(map[string]interface{})
	if !ok {
		t.Fatalf("cycles is not a map: %T", parsed["cycles"])
	}
	if _, ok := cycles["pomodoro"]; !ok {
		t.Error("expected pomodoro group")
	}
	if _, ok := cycles["stopwatch"]; !ok {
		t.Error("expected stopwatch group")
	}
}

func TestExportCSV(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedCycles(t, db)

	raw, err := Export(db, "csv")
	if err != nil {
		t.Fatalf("Export csv failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(raw))).ReadAll()
	if err != nil {
		t.Fatalf("exported CSV does not parse: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "id,uid,timestamp,duration_minutes,session_type,notes" {
		t.Errorf("unexpected header: %v", records[0])
	}

	found := false
	for _, r := range records[1:] {
		if r[5] == "reading, notes" && r[4] == "stopwatch" && r[3] == "18.5" {
			found = true
		}
	}
	if !found {
		t.Error("stopwatch row with quoted notes not found")
	}
}

func TestExportMarkdown(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedCycles(t, db)

	raw, err := Export(db, "markdown")
	if err != nil {
		t.Fatalf("Export markdown failed: %v", err)
	}
	md := string(raw)

	for _, want := range []string{"# Pomodoro Export", "## Daily", "## pomodoro", "## stopwatch", "| Date | Cycles | Hours |"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestExportMarkdownSince(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	seedCycles(t, db)

	data, err := db.GetAllData()
	if err != nil {
		t.Fatalf("GetAllData failed: %v", err)
	}

	since := testNoon().Add(-90 * time.Minute)
	md := ExportMarkdown(data, &since)
	if strings.Contains(md, "## pomodoro") {
		t.Error("older pomodoro cycles should be filtered out")
	}
	if !strings.Contains(md, "## stopwatch") {
		t.Error("recent stopwatch cycle should remain")
	}
}

func TestExportUnknownFormat(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := Export(db, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
