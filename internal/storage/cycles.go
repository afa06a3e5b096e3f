// ABOUTME: Cycle CRUD and daily aggregation for SQLite storage.
// ABOUTME: Implements Repository interface methods for the completed_cycles table.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pomodoro/internal/models"
)

const cycleColumns = `id, uid, timestamp, duration_minutes, session_type, notes, created_at`

// RecordCycle stores a new cycle and assigns its ID.
func (d *DB) RecordCycle(c *models.Cycle) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("record cycle: %w", err)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO completed_cycles (uid, timestamp, duration_minutes, session_type, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := d.db.Exec(query,
		c.UID.String(),
		formatTime(c.RecordedAt),
		c.DurationMinutes,
		string(c.SessionType),
		c.Notes,
		formatTime(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record cycle: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("record cycle: %w", err)
	}
	c.ID = id
	return nil
}

// GetCycle retrieves a cycle by UID or UID prefix.
func (d *DB) GetCycle(idOrPrefix string) (*models.Cycle, error) {
	uid, err := d.resolveCycleUID(idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + cycleColumns + ` FROM completed_cycles WHERE uid = ?`
	return scanCycle(d.db.QueryRow(query, uid))
}

// ListCycles retrieves cycles, most recent first.
func (d *DB) ListCycles(filter *CycleFilter) ([]*models.Cycle, error) {
	var where []string
	var args []interface{}

	if filter != nil && filter.SessionType != nil {
		where = append(where, "session_type = ?")
		args = append(args, string(*filter.SessionType))
	}
	if filter != nil && filter.Since != nil {
		where = append(where, "timestamp >= ?")
		args = append(args, formatTime(*filter.Since))
	}

	query := `SELECT ` + cycleColumns + ` FROM completed_cycles`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC"

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var cycles []*models.Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

// DeleteCycle removes a cycle by UID or prefix.
func (d *DB) DeleteCycle(idOrPrefix string) error {
	uid, err := d.resolveCycleUID(idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete cycle: %w", err)
	}

	result, err := d.db.Exec("DELETE FROM completed_cycles WHERE uid = ?", uid)
	if err != nil {
		return fmt.Errorf("delete cycle: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cycle: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete cycle: %w: %s", ErrNotFound, idOrPrefix)
	}
	return nil
}

// DailyStats groups cycles by the local calendar day they were recorded on.
func (d *DB) DailyStats() ([]models.DailyStat, error) {
	// Timestamps are stored in local time, so the first ten characters are the local day.
	query := `
		SELECT substr(timestamp, 1, 10) AS day, COUNT(*), COALESCE(SUM(duration_minutes), 0)
		FROM completed_cycles
		GROUP BY day
		ORDER BY day DESC
	`
	rows, err := d.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("daily stats: %w", err)
	}
	defer rows.Close()

	stats := []models.DailyStat{}
	for rows.Next() {
		var ds models.DailyStat
		if err := rows.Scan(&ds.Date, &ds.Cycles, &ds.Minutes); err != nil {
			return nil, fmt.Errorf("scan daily stat: %w", err)
		}
		ds.Hours = ds.Minutes / 60
		stats = append(stats, ds)
	}
	return stats, rows.Err()
}

// ClearAll deletes every cycle. The AUTOINCREMENT sequence is kept so ids never repeat.
func (d *DB) ClearAll() (int, error) {
	result, err := d.db.Exec("DELETE FROM completed_cycles")
	if err != nil {
		return 0, fmt.Errorf("clear cycles: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear cycles: %w", err)
	}
	return int(affected), nil
}

// resolveCycleUID finds the full UID from a prefix.
func (d *DB) resolveCycleUID(idOrPrefix string) (string, error) {
	if idOrPrefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}
	if len(idOrPrefix) == 36 && strings.Count(idOrPrefix, "-") == 4 {
		return idOrPrefix, nil
	}

	rows, err := d.db.Query(`SELECT uid FROM completed_cycles WHERE uid LIKE ? || '%' LIMIT 2`, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve cycle ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return "", fmt.Errorf("scan cycle ID: %w", err)
		}
		matches = append(matches, uid)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve cycle ID: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w %s: matches multiple cycles", ErrAmbiguousPrefix, idOrPrefix)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCycle(row rowScanner) (*models.Cycle, error) {
	var c models.Cycle
	var uidStr, sessionType, recordedAt string
	var notes, createdAt sql.NullString

	err := row.Scan(&c.ID, &uidStr, &recordedAt, &c.DurationMinutes, &sessionType, &notes, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan cycle: %w", err)
	}

	c.UID, _ = uuid.Parse(uidStr)
	c.SessionType = models.SessionType(sessionType)
	c.RecordedAt = parseTime(recordedAt)
	if createdAt.Valid {
		c.CreatedAt = parseTime(createdAt.String)
	}
	if notes.Valid {
		c.Notes = &notes.String
	}
	return &c, nil
}

// formatTime stores timestamps in local time so the date prefix is the local day.
func formatTime(t time.Time) string {
	return t.Local().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
