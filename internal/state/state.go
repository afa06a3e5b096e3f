// ABOUTME: Badger-backed persistence for engine snapshots and companion preferences.
// ABOUTME: Lets the server restore a paused timer or stopwatch after a restart.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/pomodoro/internal/stopwatch"
	"github.com/harperreed/pomodoro/internal/timer"
)

const (
	keyTimer       = "timer"
	keyStopwatch   = "stopwatch"
	keyAlwaysOnTop = "pip:always_on_top"
)

// Store persists engine state in a Badger database.
type Store struct {
	db *badger.DB
}

// Open opens or creates a store in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory returns a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open in-memory state store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes key into v. It reports false when the key is absent.
func (s *Store) get(key string, v any) (bool, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// SaveTimer stores the timer state.
func (s *Store) SaveTimer(st timer.State) error {
	return s.put(keyTimer, st)
}

// LoadTimer returns the saved timer state, if any.
func (s *Store) LoadTimer() (timer.State, bool, error) {
	var st timer.State
	ok, err := s.get(keyTimer, &st)
	return st, ok, err
}

// SaveStopwatch stores the stopwatch state.
func (s *Store) SaveStopwatch(st stopwatch.State) error {
	return s.put(keyStopwatch, st)
}

// LoadStopwatch returns the saved stopwatch state, if any.
func (s *Store) LoadStopwatch() (stopwatch.State, bool, error) {
	var st stopwatch.State
	ok, err := s.get(keyStopwatch, &st)
	return st, ok, err
}

// SaveAlwaysOnTop stores the companion always-on-top preference.
func (s *Store) SaveAlwaysOnTop(v bool) error {
	return s.put(keyAlwaysOnTop, v)
}

// LoadAlwaysOnTop returns the saved preference, defaulting to false.
func (s *Store) LoadAlwaysOnTop() (bool, error) {
	var v bool
	_, err := s.get(keyAlwaysOnTop, &v)
	return v, err
}
