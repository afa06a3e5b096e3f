// ABOUTME: Cycle model and SessionType enum for completed work sessions.
// ABOUTME: One Cycle is logged per finished pomodoro or stopwatch session.
package models

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// SessionType tags what produced a cycle.
type SessionType string

const (
	SessionPomodoro  SessionType = "pomodoro"
	SessionStopwatch SessionType = "stopwatch"
)

// DefaultCycleMinutes is used when a cycle is recorded without a duration.
const DefaultCycleMinutes = 25.0

// MaxCycleMinutes caps a single cycle at one day.
const MaxCycleMinutes = 24 * 60.0

// AllSessionTypes returns all valid session types.
var AllSessionTypes = []SessionType{SessionPomodoro, SessionStopwatch}

// ErrInvalidDuration is returned for durations outside (0, MaxCycleMinutes].
var ErrInvalidDuration = errors.New("invalid duration")

// ErrInvalidSessionType is returned for unknown session types.
var ErrInvalidSessionType = errors.New("invalid session type")

// IsValidSessionType checks if a string is a valid session type.
// The empty string is accepted and means pomodoro.
func IsValidSessionType(s string) bool {
	if s == "" {
		return true
	}
	for _, st := range AllSessionTypes {
		if string(st) == s {
			return true
		}
	}
	return false
}

// ParseSessionType normalises s, defaulting to pomodoro.
func ParseSessionType(s string) (SessionType, error) {
	if !IsValidSessionType(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionType, s)
	}
	if s == "" {
		return SessionPomodoro, nil
	}
	return SessionType(s), nil
}

// Cycle represents one completed work session.
type Cycle struct {
	ID              int64       `json:"id"`
	UID             uuid.UUID   `json:"uid"`
	RecordedAt      time.Time   `json:"timestamp"`
	DurationMinutes float64     `json:"duration_minutes"`
	SessionType     SessionType `json:"session_type"`
	Notes           *string     `json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// NewCycle creates a Cycle with a generated UID and the current timestamp.
// A zero duration becomes DefaultCycleMinutes and an empty type becomes pomodoro.
func NewCycle(minutes float64, sessionType SessionType) *Cycle {
	if minutes == 0 {
		minutes = DefaultCycleMinutes
	}
	if sessionType == "" {
		sessionType = SessionPomodoro
	}
	now := time.Now()
	return &Cycle{
		UID:             uuid.New(),
		RecordedAt:      now,
		DurationMinutes: minutes,
		SessionType:     sessionType,
		CreatedAt:       now,
	}
}

// WithRecordedAt sets a custom timestamp.
func (c *Cycle) WithRecordedAt(t time.Time) *Cycle {
	c.RecordedAt = t
	return c
}

// WithNotes sets notes on the cycle.
func (c *Cycle) WithNotes(notes string) *Cycle {
	c.Notes = &notes
	return c
}

// Validate checks duration bounds and session type.
func (c *Cycle) Validate() error {
	if math.IsNaN(c.DurationMinutes) || c.DurationMinutes <= 0 || c.DurationMinutes > MaxCycleMinutes {
		return fmt.Errorf("%w: %.2f minutes", ErrInvalidDuration, c.DurationMinutes)
	}
	if !IsValidSessionType(string(c.SessionType)) || c.SessionType == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSessionType, c.SessionType)
	}
	return nil
}

// ShortID returns the 8-character UID prefix shown in listings.
func (c *Cycle) ShortID() string {
	return c.UID.String()[:8]
}

// Day returns the local calendar day of the cycle as YYYY-MM-DD.
func (c *Cycle) Day() string {
	return c.RecordedAt.Local().Format(DateLayout)
}

// DateLayout is the day key used for daily aggregation.
const DateLayout = "2006-01-02"

// DailyStat aggregates the cycles of one calendar day.
type DailyStat struct {
	Date    string  `json:"date"`
	Cycles  int     `json:"cycles"`
	Minutes float64 `json:"minutes"`
	Hours   float64 `json:"hours"`
}

// AggregateDaily groups cycles by day, newest day first.
func AggregateDaily(cycles []*Cycle) []DailyStat {
	byDay := make(map[string]*DailyStat)
	var order []string
	for _, c := range cycles {
		day := c.Day()
		ds, ok := byDay[day]
		if !ok {
			ds = &DailyStat{Date: day}
			byDay[day] = ds
			order = append(order, day)
		}
		ds.Cycles++
		ds.Minutes += c.DurationMinutes
	}

	stats := make([]DailyStat, 0, len(order))
	for _, day := range order {
		ds := byDay[day]
		ds.Hours = ds.Minutes / 60
		stats = append(stats, *ds)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Date > stats[j].Date
	})
	return stats
}
