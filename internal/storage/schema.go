// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines the completed_cycles log table and its indexes.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS completed_cycles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uid TEXT NOT NULL UNIQUE,
		timestamp DATETIME NOT NULL,
		duration_minutes REAL NOT NULL DEFAULT 25,
		session_type TEXT NOT NULL DEFAULT 'pomodoro',
		notes TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_cycles_timestamp ON completed_cycles(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_cycles_type ON completed_cycles(session_type);
	`

	_, err := d.db.Exec(schema)
	return err
}
