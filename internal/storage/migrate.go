// ABOUTME: Data migration between pomodoro storage backends.
// ABOUTME: Copies every cycle from a source repository to a destination.

package storage

import (
	"fmt"
	"os"
	"sort"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Cycles  int
	Skipped int
}

// MigrateData copies all cycles from src to dst, oldest first, so the
// destination assigns ids in the original recording order. Cycles whose
// UID already exists in dst are skipped.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	cycles, err := src.ListCycles(nil)
	if err != nil {
		return nil, fmt.Errorf("list source cycles: %w", err)
	}

	sort.SliceStable(cycles, func(i, j int) bool {
		if cycles[i].RecordedAt.Equal(cycles[j].RecordedAt) {
			return cycles[i].ID < cycles[j].ID
		}
		return cycles[i].RecordedAt.Before(cycles[j].RecordedAt)
	})

	imported, err := dst.ImportData(&ExportData{Version: ExportVersion, Cycles: cycles})
	if err != nil {
		return nil, fmt.Errorf("import cycles: %w", err)
	}

	return &MigrateSummary{
		Cycles:  imported,
		Skipped: len(cycles) - imported,
	}, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
