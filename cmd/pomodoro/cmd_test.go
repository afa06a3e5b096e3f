// ABOUTME: Tests for CLI helper functions and command execution.
// ABOUTME: Runs commands against a SQLite log in a temp data directory.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/pomodoro/internal/config"
	"github.com/harperreed/pomodoro/internal/models"
	"github.com/harperreed/pomodoro/internal/storage"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "date and time with space", input: "2025-01-31 08:30"},
		{name: "date and time with T", input: "2025-01-31T08:30"},
		{name: "date only", input: "2025-01-31"},
		{name: "RFC3339", input: "2025-01-31T08:30:00Z"},
		{name: "RFC3339 with offset", input: "2025-01-31T08:30:00+05:00"},
		{name: "invalid format", input: "31-01-2025", wantErr: true},
		{name: "invalid random string", input: "not a date", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseTime(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTime(%q) expected error, got nil", tt.input)
				}
				return
			}

			if err != nil {
				t.Errorf("parseTime(%q) unexpected error: %v", tt.input, err)
				return
			}
			if result.IsZero() {
				t.Errorf("parseTime(%q) returned zero time", tt.input)
			}
		})
	}
}

func TestParseTimeIsLocal(t *testing.T) {
	result, err := parseTime("2025-06-15 09:45")
	if err != nil {
		t.Fatalf("parseTime failed: %v", err)
	}
	if result.Location() != time.Local {
		t.Errorf("expected local time, got %v", result.Location())
	}
	if result.Hour() != 9 || result.Minute() != 45 || result.Day() != 15 {
		t.Errorf("parseTime returned wrong time: got %v", result)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world this is a long string", 10, "hello w..."},
		{"", 10, ""},
		{"hello", 3, "..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"hi", 5, "hi   "},
		{"hello", 5, "hello"},
		{"hello world", 5, "hello world"},
		{"", 3, "   "},
	}

	for _, tt := range tests {
		if got := padRight(tt.input, tt.length); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0, "░░░░░░░░░░"},
		{50, "█████░░░░░"},
		{100, "██████████"},
		{150, "██████████"},
		{-5, "░░░░░░░░░░"},
	}

	for _, tt := range tests {
		if got := bar(tt.percent, 10); got != tt.want {
			t.Errorf("bar(%v) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestRootCmd(t *testing.T) {
	if rootCmd.Use != "pomodoro" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "pomodoro")
	}
	if rootCmd.Short == "" {
		t.Error("Expected rootCmd.Short to be non-empty")
	}

	want := []string{
		"record", "list", "delete", "stats", "clear", "export", "import",
		"serve", "timer", "stopwatch", "mcp", "sync", "migrate", "config",
		"remote", "install-skill",
	}
	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("Expected %s command to be registered", name)
		}
	}
}

func TestCommandAliases(t *testing.T) {
	tests := []struct {
		aliases []string
		want    string
	}{
		{recordCmd.Aliases, "add"},
		{listCmd.Aliases, "ls"},
		{deleteCmd.Aliases, "rm"},
		{timerCmd.Aliases, "t"},
		{stopwatchCmd.Aliases, "sw"},
		{remoteCmd.Aliases, "ctl"},
	}

	for _, tt := range tests {
		found := false
		for _, a := range tt.aliases {
			if a == tt.want {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected alias %q in %v", tt.want, tt.aliases)
		}
	}
}

func TestListCmdFlags(t *testing.T) {
	limitFlag := listCmd.Flags().Lookup("limit")
	if limitFlag == nil {
		t.Fatal("Expected --limit flag on list command")
	}
	if limitFlag.DefValue != "20" {
		t.Errorf("Expected default limit 20, got %s", limitFlag.DefValue)
	}
	if listCmd.Flags().Lookup("since") == nil {
		t.Error("Expected --since flag on list command")
	}
}

func TestStorageSkippedForLocalCommands(t *testing.T) {
	for _, cmd := range []string{"sync", "migrate", "config", "remote", "install-skill"} {
		c, _, err := rootCmd.Find([]string{cmd})
		if err != nil {
			t.Fatalf("find %s: %v", cmd, err)
		}
		if !skipsStorage(c) {
			t.Errorf("%s should not open storage", cmd)
		}
	}

	c, _, err := rootCmd.Find([]string{"sync", "status"})
	if err != nil {
		t.Fatal(err)
	}
	if !skipsStorage(c) {
		t.Error("sync subcommands inherit the no-storage annotation")
	}

	c, _, _ = rootCmd.Find([]string{"record"})
	if skipsStorage(c) {
		t.Error("record needs storage")
	}
}

// setupTestCLI points config and data at a temp directory and returns
// the path of the SQLite log the commands will use.
func setupTestCLI(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("POMODORO_DATA_DIR", filepath.Join(tmpDir, "data"))
	t.Setenv("POMODORO_BACKEND", "sqlite")
	resetFlags(t)

	return filepath.Join(tmpDir, "data", "pomodoro.db")
}

// resetFlags restores flag globals between command runs.
func resetFlags(t *testing.T) {
	t.Helper()
	backendFlag = ""
	recordAt, recordNotes, recordType = "", "", "pomodoro"
	listType, listLimit, listSince = "", 20, ""
	statsGoal, statsDays, statsJSON = 0, 7, false
	clearYes = false
	exportOutput, exportSince = "", ""
	migrateFrom, migrateTo, migrateDryRun = "sqlite", "charm", false

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	// A failing RunE skips PersistentPostRunE, so close here too.
	t.Cleanup(func() {
		if repo != nil {
			_ = repo.Close()
			repo = nil
		}
	})
}

// withDB opens the test log outside of a command run.
func withDB(t *testing.T, path string, fn func(db *storage.DB)) {
	t.Helper()
	db, err := storage.Open(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	fn(db)
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestRecordCmdDefaults(t *testing.T) {
	dbPath := setupTestCLI(t)

	if err := execute(t, "record"); err != nil {
		t.Fatalf("record command failed: %v", err)
	}

	withDB(t, dbPath, func(db *storage.DB) {
		cycles, err := db.ListCycles(nil)
		if err != nil {
			t.Fatalf("ListCycles failed: %v", err)
		}
		if len(cycles) != 1 {
			t.Fatalf("Expected 1 cycle, got %d", len(cycles))
		}
		if cycles[0].DurationMinutes != models.DefaultCycleMinutes {
			t.Errorf("Expected %v minutes, got %v", models.DefaultCycleMinutes, cycles[0].DurationMinutes)
		}
		if cycles[0].SessionType != models.SessionPomodoro {
			t.Errorf("Expected pomodoro, got %s", cycles[0].SessionType)
		}
	})
}

func TestRecordCmdWithFlags(t *testing.T) {
	dbPath := setupTestCLI(t)

	err := execute(t, "record", "42.5", "--type", "stopwatch", "--notes", "deep work", "--at", "2025-01-31 08:00")
	if err != nil {
		t.Fatalf("record command failed: %v", err)
	}

	withDB(t, dbPath, func(db *storage.DB) {
		cycles, err := db.ListCycles(nil)
		if err != nil {
			t.Fatalf("ListCycles failed: %v", err)
		}
		if len(cycles) != 1 {
			t.Fatalf("Expected 1 cycle, got %d", len(cycles))
		}
		c := cycles[0]
		if c.DurationMinutes != 42.5 || c.SessionType != models.SessionStopwatch {
			t.Errorf("unexpected cycle: %+v", c)
		}
		if c.Notes == nil || *c.Notes != "deep work" {
			t.Error("Notes not set correctly")
		}
		if got := c.RecordedAt.Local().Format("2006-01-02 15:04"); got != "2025-01-31 08:00" {
			t.Errorf("Expected timestamp 2025-01-31 08:00, got %s", got)
		}
	})
}

func TestRecordCmdErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"invalid minutes", []string{"record", "lots"}},
		{"negative minutes", []string{"record", "-5"}},
		{"invalid type", []string{"record", "25", "--type", "nap"}},
		{"invalid timestamp", []string{"record", "25", "--at", "yesterday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestCLI(t)
			if err := execute(t, tt.args...); err == nil {
				t.Errorf("Expected error for %v", tt.args)
			}
		})
	}
}

func TestListAndStatsCmds(t *testing.T) {
	dbPath := setupTestCLI(t)

	withDB(t, dbPath, func(db *storage.DB) {
		for i := 0; i < 3; i++ {
			if err := db.RecordCycle(models.NewCycle(25, models.SessionPomodoro)); err != nil {
				t.Fatal(err)
			}
		}
	})

	for _, args := range [][]string{
		{"list"},
		{"list", "--type", "pomodoro", "-n", "2"},
		{"list", "--since", "2025-01-01"},
		{"stats"},
		{"stats", "--json", "--goal", "4"},
	} {
		resetFlags(t)
		if err := execute(t, args...); err != nil {
			t.Errorf("%v failed: %v", args, err)
		}
	}
}

func TestListCmdInvalidSince(t *testing.T) {
	setupTestCLI(t)
	if err := execute(t, "list", "--since", "31/01/2025"); err == nil {
		t.Error("Expected error for invalid --since")
	}
}

func TestDeleteCmd(t *testing.T) {
	dbPath := setupTestCLI(t)

	c := models.NewCycle(25, models.SessionPomodoro)
	withDB(t, dbPath, func(db *storage.DB) {
		if err := db.RecordCycle(c); err != nil {
			t.Fatal(err)
		}
	})

	if err := execute(t, "delete", c.ShortID()); err != nil {
		t.Fatalf("delete command failed: %v", err)
	}

	withDB(t, dbPath, func(db *storage.DB) {
		cycles, _ := db.ListCycles(nil)
		if len(cycles) != 0 {
			t.Errorf("Expected 0 cycles after delete, got %d", len(cycles))
		}
	})

	if err := execute(t, "delete", "ffffffff"); err == nil {
		t.Error("Expected error deleting unknown id")
	}
}

func TestClearCmd(t *testing.T) {
	dbPath := setupTestCLI(t)

	withDB(t, dbPath, func(db *storage.DB) {
		for i := 0; i < 2; i++ {
			if err := db.RecordCycle(models.NewCycle(25, models.SessionPomodoro)); err != nil {
				t.Fatal(err)
			}
		}
	})

	if err := execute(t, "clear", "--yes"); err != nil {
		t.Fatalf("clear command failed: %v", err)
	}

	withDB(t, dbPath, func(db *storage.DB) {
		cycles, _ := db.ListCycles(nil)
		if len(cycles) != 0 {
			t.Errorf("Expected empty log, got %d cycles", len(cycles))
		}
	})
}

func TestExportImportRoundTrip(t *testing.T) {
	dbPath := setupTestCLI(t)
	out := filepath.Join(t.TempDir(), "backup.json")

	withDB(t, dbPath, func(db *storage.DB) {
		if err := db.RecordCycle(models.NewCycle(25, models.SessionPomodoro).WithNotes("first")); err != nil {
			t.Fatal(err)
		}
		if err := db.RecordCycle(models.NewCycle(61.5, models.SessionStopwatch)); err != nil {
			t.Fatal(err)
		}
	})

	if err := execute(t, "export", "json", "-o", out); err != nil {
		t.Fatalf("export command failed: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("export file not written: %v", err)
	}
	var data storage.ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(data.Cycles) != 2 {
		t.Errorf("Expected 2 exported cycles, got %d", len(data.Cycles))
	}

	// Import into a fresh data directory.
	fresh := setupTestCLI(t)
	if err := execute(t, "import", out); err != nil {
		t.Fatalf("import command failed: %v", err)
	}
	// A second import skips every duplicate.
	if err := execute(t, "import", out); err != nil {
		t.Fatalf("second import failed: %v", err)
	}

	withDB(t, fresh, func(db *storage.DB) {
		cycles, _ := db.ListCycles(nil)
		if len(cycles) != 2 {
			t.Errorf("Expected 2 cycles after import, got %d", len(cycles))
		}
	})
}

func TestExportCmdFormats(t *testing.T) {
	dbPath := setupTestCLI(t)
	withDB(t, dbPath, func(db *storage.DB) {
		if err := db.RecordCycle(models.NewCycle(25, models.SessionPomodoro)); err != nil {
			t.Fatal(err)
		}
	})

	for _, format := range storage.Formats {
		out := filepath.Join(t.TempDir(), "export."+format)
		if err := execute(t, "export", format, "-o", out); err != nil {
			t.Errorf("export %s failed: %v", format, err)
			continue
		}
		if info, err := os.Stat(out); err != nil || info.Size() == 0 {
			t.Errorf("export %s wrote nothing", format)
		}
	}

	resetFlags(t)
	if err := execute(t, "export", "xml"); err == nil {
		t.Error("Expected error for unknown export format")
	}
}

func TestConfigSetAndShow(t *testing.T) {
	setupTestCLI(t)

	if err := execute(t, "config", "set", "work_minutes", "50"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}

	saved, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load failed: %v", err)
	}
	if saved.WorkMinutes != 50 {
		t.Errorf("Expected work_minutes 50, got %d", saved.WorkMinutes)
	}
	// The environment overlay is not written back.
	if saved.Backend != "" || saved.DataDir != "" {
		t.Errorf("environment leaked into the config file: %+v", saved)
	}

	if err := execute(t, "config", "set", "work_minutes", "500"); err == nil {
		t.Error("Expected error for out of range work minutes")
	}
	if err := execute(t, "config", "set", "colour", "blue"); err == nil {
		t.Error("Expected error for unknown key")
	}
	if err := execute(t, "config", "show"); err != nil {
		t.Errorf("config show failed: %v", err)
	}
}

func TestBackendFlagRejectsUnknown(t *testing.T) {
	setupTestCLI(t)
	if err := execute(t, "list", "--backend", "postgres"); err == nil {
		t.Error("Expected error for unknown backend")
	}
	backendFlag = ""
}

func TestMigrateSameBackend(t *testing.T) {
	setupTestCLI(t)
	if err := execute(t, "migrate", "--from", "sqlite", "--to", "sqlite"); err == nil {
		t.Error("Expected error when source and destination match")
	}
}

func TestOpenBackendDoesNotMutateConfig(t *testing.T) {
	dbPath := setupTestCLI(t)

	loaded, err := config.LoadWithEnv()
	if err != nil {
		t.Fatal(err)
	}
	cfg = loaded
	cfg.Backend = "charm"

	r, err := openBackend("sqlite")
	if err != nil {
		t.Fatalf("openBackend failed: %v", err)
	}
	defer r.Close()

	if cfg.Backend != "charm" {
		t.Errorf("openBackend changed the loaded config to %s", cfg.Backend)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("Expected sqlite database at %s: %v", dbPath, err)
	}
}
