// ABOUTME: Export and import functionality for the cycle log.
// ABOUTME: Supports JSON, YAML, CSV, and Markdown export formats.
package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pomodoro/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion is bumped when the export layout changes incompatibly.
const ExportVersion = "1.0"

// ExportData represents the full export format for the cycle log.
type ExportData struct {
	Version    string             `json:"version" yaml:"version"`
	ExportedAt time.Time          `json:"exported_at" yaml:"exported_at"`
	Tool       string             `json:"tool" yaml:"tool"`
	Cycles     []*models.Cycle    `json:"cycles" yaml:"cycles"`
	Daily      []models.DailyStat `json:"daily" yaml:"daily"`
}

// ErrInvalidImport is returned when an import holds an unusable cycle entry.
var ErrInvalidImport = errors.New("invalid import entry")

// Check rejects null cycle entries and cycles without a uid.
func (d *ExportData) Check() error {
	for i, c := range d.Cycles {
		if c == nil {
			return fmt.Errorf("%w: cycle %d is empty", ErrInvalidImport, i)
		}
		if c.UID == uuid.Nil {
			return fmt.Errorf("%w: cycle %d has no uid", ErrInvalidImport, i)
		}
	}
	return nil
}

// Formats lists the export formats accepted by Export.
var Formats = []string{"json", "yaml", "csv", "markdown"}

// CollectExportData builds an ExportData snapshot from any repository.
func CollectExportData(repo Repository) (*ExportData, error) {
	cycles, err := repo.ListCycles(nil)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	daily, err := repo.DailyStats()
	if err != nil {
		return nil, fmt.Errorf("daily stats: %w", err)
	}
	if cycles == nil {
		cycles = []*models.Cycle{}
	}
	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now(),
		Tool:       "pomodoro",
		Cycles:     cycles,
		Daily:      daily,
	}, nil
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData() (*ExportData, error) {
	return CollectExportData(d)
}

// ImportData inserts every cycle whose UID is not already present.
// Imported cycles receive fresh local ids. Returns the number inserted.
func (d *DB) ImportData(data *ExportData) (int, error) {
	if err := data.Check(); err != nil {
		return 0, err
	}
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO completed_cycles (uid, timestamp, duration_minutes, session_type, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	imported := 0
	for _, c := range data.Cycles {
		if c.SessionType == "" {
			c.SessionType = models.SessionPomodoro
		}
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("import cycle %s: %w", c.UID, err)
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = c.RecordedAt
		}
		result, err := stmt.Exec(
			c.UID.String(),
			formatTime(c.RecordedAt),
			c.DurationMinutes,
			string(c.SessionType),
			c.Notes,
			formatTime(c.CreatedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("import cycle %s: %w", c.UID, err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			imported++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return imported, nil
}

// Export renders the repository contents in the named format.
func Export(repo Repository, format string) ([]byte, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return nil, err
	}

	switch format {
	case "json", "":
		return ExportJSON(data)
	case "yaml":
		return ExportYAML(data)
	case "csv":
		return ExportCSV(data)
	case "markdown", "md":
		return []byte(ExportMarkdown(data, nil)), nil
	default:
		return nil, fmt.Errorf("unknown format: %s (use %s)", format, strings.Join(Formats, ", "))
	}
}

// ExportJSON exports all data as JSON.
func ExportJSON(data *ExportData) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON parses a JSON export and imports it into repo.
func ImportJSON(repo Repository, raw []byte) (int, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return 0, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return repo.ImportData(&data)
}

type yamlCycle struct {
	ID         string  `yaml:"id"`
	Minutes    float64 `yaml:"minutes"`
	RecordedAt string  `yaml:"recorded_at"`
	Notes      string  `yaml:"notes,omitempty"`
}

type yamlDay struct {
	Date    string  `yaml:"date"`
	Cycles  int     `yaml:"cycles"`
	Hours   float64 `yaml:"hours"`
	Minutes float64 `yaml:"minutes"`
}

// ExportYAML exports data as YAML with cycles grouped by session type.
func ExportYAML(data *ExportData) ([]byte, error) {
	yamlData := struct {
		Version    string                 `yaml:"version"`
		ExportedAt string                 `yaml:"exported_at"`
		Tool       string                 `yaml:"tool"`
		Cycles     map[string][]yamlCycle `yaml:"cycles"`
		Daily      []yamlDay              `yaml:"daily"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Cycles:     make(map[string][]yamlCycle),
		Daily:      make([]yamlDay, 0, len(data.Daily)),
	}

	for _, c := range data.Cycles {
		yc := yamlCycle{
			ID:         c.ShortID(),
			Minutes:    c.DurationMinutes,
			RecordedAt: c.RecordedAt.Format(time.RFC3339),
		}
		if c.Notes != nil {
			yc.Notes = *c.Notes
		}
		st := string(c.SessionType)
		yamlData.Cycles[st] = append(yamlData.Cycles[st], yc)
	}

	for _, ds := range data.Daily {
		yamlData.Daily = append(yamlData.Daily, yamlDay{
			Date:    ds.Date,
			Cycles:  ds.Cycles,
			Hours:   roundTo(ds.Hours, 2),
			Minutes: roundTo(ds.Minutes, 2),
		})
	}

	return yaml.Marshal(yamlData)
}

// ExportCSV exports one row per cycle.
func ExportCSV(data *ExportData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "uid", "timestamp", "duration_minutes", "session_type", "notes"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write CSV header: %w", err)
	}

	for _, c := range data.Cycles {
		notes := ""
		if c.Notes != nil {
			notes = *c.Notes
		}
		row := []string{
			strconv.FormatInt(c.ID, 10),
			c.UID.String(),
			c.RecordedAt.Format(time.RFC3339),
			strconv.FormatFloat(c.DurationMinutes, 'f', -1, 64),
			string(c.SessionType),
			notes,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportMarkdown renders a daily summary table followed by the cycle log.
// When since is set, older cycles and days are left out.
func ExportMarkdown(data *ExportData, since *time.Time) string {
	cycles := data.Cycles
	daily := data.Daily
	if since != nil {
		var filtered []*models.Cycle
		for _, c := range cycles {
			if !c.RecordedAt.Before(*since) {
				filtered = append(filtered, c)
			}
		}
		cycles = filtered
		daily = models.AggregateDaily(cycles)
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Pomodoro Export - %s\n\n", now.Format(models.DateLayout)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	sb.WriteString("## Daily\n\n")
	sb.WriteString("| Date | Cycles | Hours |\n")
	sb.WriteString("|------|--------|-------|\n")
	for _, ds := range daily {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.2f |\n", ds.Date, ds.Cycles, ds.Hours))
	}
	sb.WriteString("\n")

	// Group by session type, sorted for stable output
	grouped := make(map[models.SessionType][]*models.Cycle)
	for _, c := range cycles {
		grouped[c.SessionType] = append(grouped[c.SessionType], c)
	}
	var types []models.SessionType
	for t := range grouped {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		return string(types[i]) < string(types[j])
	})

	for _, t := range types {
		sb.WriteString(fmt.Sprintf("## %s\n\n", t))
		sb.WriteString("| Date | Minutes | Notes |\n")
		sb.WriteString("|------|---------|-------|\n")
		for _, c := range grouped[t] {
			notes := ""
			if c.Notes != nil {
				notes = *c.Notes
			}
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %s |\n",
				c.RecordedAt.Format("2006-01-02 15:04"), c.DurationMinutes, notes))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
