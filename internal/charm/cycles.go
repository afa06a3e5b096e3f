// ABOUTME: Cycle CRUD operations for Charm KV storage.
// ABOUTME: Uses cycle:<uid> keys, a seq:cycle id counter, and client-side filtering.
package charm

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/pomodoro/internal/models"
	"github.com/harperreed/pomodoro/internal/storage"
)

// RecordCycle stores a new cycle and assigns the next sequence id.
func (c *Client) RecordCycle(cy *models.Cycle) error {
	if err := cy.Validate(); err != nil {
		return fmt.Errorf("record cycle: %w", err)
	}
	if cy.CreatedAt.IsZero() {
		cy.CreatedAt = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}
	if err := c.putCycle(cy); err != nil {
		return fmt.Errorf("record cycle: %w", err)
	}
	c.syncIfEnabled()
	return nil
}

// putCycle assigns an id and writes the cycle. Callers hold the write lock.
func (c *Client) putCycle(cy *models.Cycle) error {
	id, err := c.nextID()
	if err != nil {
		return err
	}
	cy.ID = id

	data, err := json.Marshal(cy)
	if err != nil {
		return fmt.Errorf("marshal cycle: %w", err)
	}
	if err := c.kv.Set([]byte(CyclePrefix+cy.UID.String()), data); err != nil {
		return err
	}
	return c.kv.Set([]byte(seqKey), []byte(strconv.FormatInt(id, 10)))
}

func (c *Client) nextID() (int64, error) {
	raw, err := c.kv.Get([]byte(seqKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read id sequence: %w", err)
	}
	last, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id sequence %q: %w", raw, err)
	}
	return last + 1, nil
}

// GetCycle retrieves a cycle by UID or UID prefix.
func (c *Client) GetCycle(idOrPrefix string) (*models.Cycle, error) {
	data, err := c.getByIDPrefix(CyclePrefix, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get cycle: %w", err)
	}

	cy, err := unmarshalJSON[models.Cycle](data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal cycle: %w", err)
	}
	return cy, nil
}

// ListCycles retrieves cycles, most recent first.
func (c *Client) ListCycles(filter *storage.CycleFilter) ([]*models.Cycle, error) {
	allData, err := c.listByPrefix(CyclePrefix)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}

	var cycles []*models.Cycle
	for _, data := range allData {
		cy, err := unmarshalJSON[models.Cycle](data)
		if err != nil {
			continue // Skip invalid entries
		}
		if filter != nil && filter.SessionType != nil && cy.SessionType != *filter.SessionType {
			continue
		}
		if filter != nil && filter.Since != nil && cy.RecordedAt.Before(*filter.Since) {
			continue
		}
		cycles = append(cycles, cy)
	}

	sort.Slice(cycles, func(i, j int) bool {
		if cycles[i].RecordedAt.Equal(cycles[j].RecordedAt) {
			return cycles[i].ID > cycles[j].ID
		}
		return cycles[i].RecordedAt.After(cycles[j].RecordedAt)
	})

	if filter != nil && filter.Limit > 0 && len(cycles) > filter.Limit {
		cycles = cycles[:filter.Limit]
	}
	return cycles, nil
}

// DeleteCycle removes a cycle by UID or prefix.
func (c *Client) DeleteCycle(idOrPrefix string) error {
	if err := c.deleteByIDPrefix(CyclePrefix, idOrPrefix); err != nil {
		return fmt.Errorf("delete cycle: %w", err)
	}
	return nil
}

// DailyStats aggregates cycles client-side by local calendar day.
func (c *Client) DailyStats() ([]models.DailyStat, error) {
	cycles, err := c.ListCycles(nil)
	if err != nil {
		return nil, err
	}
	return models.AggregateDaily(cycles), nil
}

// ClearAll deletes every cycle key. The id sequence is kept.
func (c *Client) ClearAll() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return 0, ErrReadOnly
	}

	keys, err := c.keysWithPrefix(CyclePrefix)
	if err != nil {
		return 0, fmt.Errorf("clear cycles: %w", err)
	}
	for _, key := range keys {
		if err := c.kv.Delete(key); err != nil {
			return 0, fmt.Errorf("clear cycles: %w", err)
		}
	}
	c.syncIfEnabled()
	return len(keys), nil
}

// GetAllData retrieves all data for export.
func (c *Client) GetAllData() (*storage.ExportData, error) {
	return storage.CollectExportData(c)
}

// ImportData stores every cycle whose UID is not already present, with a single sync at the end.
func (c *Client) ImportData(data *storage.ExportData) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return 0, ErrReadOnly
	}
	if err := data.Check(); err != nil {
		return 0, err
	}

	existing, err := c.keysWithPrefix(CyclePrefix)
	if err != nil {
		return 0, fmt.Errorf("import cycles: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, key := range existing {
		seen[string(key)] = true
	}

	imported := 0
	for _, src := range data.Cycles {
		cy := *src
		if cy.SessionType == "" {
			cy.SessionType = models.SessionPomodoro
		}
		if err := cy.Validate(); err != nil {
			return imported, fmt.Errorf("import cycle %s: %w", cy.UID, err)
		}
		key := CyclePrefix + cy.UID.String()
		if seen[key] {
			continue
		}
		if cy.CreatedAt.IsZero() {
			cy.CreatedAt = cy.RecordedAt
		}
		if err := c.putCycle(&cy); err != nil {
			return imported, fmt.Errorf("import cycle %s: %w", cy.UID, err)
		}
		seen[key] = true
		imported++
	}

	if imported > 0 {
		c.syncIfEnabled()
	}
	return imported, nil
}
