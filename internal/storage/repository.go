// ABOUTME: Repository interface for the completed-cycle log.
// ABOUTME: Defines the contract shared by the SQLite and Charm KV backends.
package storage

import (
	"errors"
	"time"

	"github.com/harperreed/pomodoro/internal/models"
)

var (
	// ErrNotFound is returned when no cycle matches an id or prefix.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguousPrefix is returned when a prefix matches several cycles.
	ErrAmbiguousPrefix = errors.New("ambiguous prefix")
	// ErrReadOnly is returned for writes while another process holds the store.
	ErrReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")
)

// CycleFilter narrows ListCycles. Zero values mean no filtering.
type CycleFilter struct {
	SessionType *models.SessionType
	Since       *time.Time
	Limit       int
}

// Repository defines the storage interface for the cycle log.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	RecordCycle(c *models.Cycle) error
	GetCycle(idOrPrefix string) (*models.Cycle, error)
	ListCycles(filter *CycleFilter) ([]*models.Cycle, error)
	DeleteCycle(idOrPrefix string) error

	// DailyStats returns one row per calendar day, newest first.
	DailyStats() ([]models.DailyStat, error)
	// ClearAll empties the log and reports how many cycles were removed.
	ClearAll() (int, error)

	// Export/Import
	GetAllData() (*ExportData, error)
	ImportData(data *ExportData) (int, error)

	// Lifecycle
	Close() error
}
