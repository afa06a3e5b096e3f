// ABOUTME: HTTP handlers for the cycle log, statistics, export, and companion preferences.
// ABOUTME: Errors are reported as {"error": "..."} with sentinel errors mapped to 4xx.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/harperreed/pomodoro/internal/models"
	"github.com/harperreed/pomodoro/internal/pip"
	"github.com/harperreed/pomodoro/internal/stats"
	"github.com/harperreed/pomodoro/internal/storage"
	"github.com/harperreed/pomodoro/internal/timer"
)

// RecordRequest is the body of POST /pomodoro/cycle. Missing fields fall
// back to a 25 minute pomodoro recorded now.
type RecordRequest struct {
	DurationMinutes float64    `json:"durationMinutes"`
	SessionType     string     `json:"sessionType,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
}

// RecordResponse is returned for a recorded cycle.
type RecordResponse struct {
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Cycle     *models.Cycle `json:"cycle"`
}

// DeleteResponse confirms a delete or clear. Deleted is always present,
// zero included.
type DeleteResponse struct {
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AlwaysOnTopResponse reports the companion window preference.
type AlwaysOnTopResponse struct {
	Enabled bool `json:"enabled"`
}

// DurationRequest is the body of PUT /pomodoro/timer/duration.
type DurationRequest struct {
	Minutes int `json:"minutes"`
}

const (
	msgRecorded = "Cycle recorded successfully"
	msgCleared  = "All data cleared successfully"
	msgDeleted  = "Cycle deleted successfully"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Pomodoro API is working!"))
}

func (s *Server) handleRecordCycle(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sessionType, err := models.ParseSessionType(req.SessionType)
	if err != nil {
		s.fail(w, err, "Failed to record cycle")
		return
	}
	c := models.NewCycle(req.DurationMinutes, sessionType)
	if req.Timestamp != nil {
		c.WithRecordedAt(*req.Timestamp)
	}
	if req.Notes != "" {
		c.WithNotes(req.Notes)
	}

	if err := s.repo.RecordCycle(c); err != nil {
		s.fail(w, err, "Failed to record cycle")
		return
	}

	s.logger.Info("cycle recorded", "id", c.ShortID(), "minutes", c.DurationMinutes, "type", c.SessionType)
	writeJSON(w, http.StatusCreated, RecordResponse{
		Message:   msgRecorded,
		Timestamp: s.now().UTC(),
		Cycle:     c,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	daily, err := s.repo.DailyStats()
	if err != nil {
		s.fail(w, err, "Failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, daily)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	daily, err := s.repo.DailyStats()
	if err != nil {
		s.fail(w, err, "Failed to get stats")
		return
	}
	goal := s.goalHours
	if v := r.URL.Query().Get("goal"); v != "" {
		g, err := strconv.ParseFloat(v, 64)
		if err != nil || g <= 0 {
			writeError(w, http.StatusBadRequest, "goal must be a positive number")
			return
		}
		goal = g
	}
	writeJSON(w, http.StatusOK, stats.Summarize(daily, s.now(), goal))
}

func (s *Server) handleListCycles(w http.ResponseWriter, r *http.Request) {
	filter, err := parseCycleFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cycles, err := s.repo.ListCycles(filter)
	if err != nil {
		s.fail(w, err, "Failed to list cycles")
		return
	}
	if cycles == nil {
		cycles = []*models.Cycle{}
	}
	writeJSON(w, http.StatusOK, cycles)
}

func parseCycleFilter(r *http.Request) (*storage.CycleFilter, error) {
	q := r.URL.Query()
	filter := &storage.CycleFilter{}

	if v := q.Get("type"); v != "" {
		st, err := models.ParseSessionType(v)
		if err != nil {
			return nil, err
		}
		filter.SessionType = &st
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, errors.New("limit must be a non-negative integer")
		}
		filter.Limit = n
	}
	if v := q.Get("since"); v != "" {
		t, err := parseSince(v)
		if err != nil {
			return nil, err
		}
		filter.Since = &t
	}
	return filter, nil
}

// parseSince accepts RFC3339 or a local YYYY-MM-DD day.
func parseSince(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(models.DateLayout, v, time.Local)
	if err != nil {
		return time.Time{}, errors.New("since must be RFC3339 or YYYY-MM-DD")
	}
	return t, nil
}

func (s *Server) handleDeleteCycle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.repo.DeleteCycle(id); err != nil {
		s.fail(w, err, "Failed to delete cycle")
		return
	}
	s.logger.Info("cycle deleted", "id", id)
	writeJSON(w, http.StatusOK, DeleteResponse{Message: msgDeleted, Deleted: 1})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	n, err := s.repo.ClearAll()
	if err != nil {
		s.fail(w, err, "Failed to clear data")
		return
	}
	s.logger.Info("all cycles cleared", "deleted", n)
	writeJSON(w, http.StatusOK, DeleteResponse{Message: msgCleared, Deleted: n})
}

var exportContentTypes = map[string]string{
	"json":     "application/json",
	"yaml":     "application/yaml",
	"csv":      "text/csv; charset=utf-8",
	"markdown": "text/markdown; charset=utf-8",
	"md":       "text/markdown; charset=utf-8",
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	contentType, ok := exportContentTypes[format]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown format: "+format)
		return
	}

	body, err := storage.Export(s.repo, format)
	if err != nil {
		s.fail(w, err, "Failed to export data")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleTimerAction(w http.ResponseWriter, r *http.Request) {
	if err := pip.Relay(s.engine, r.PathValue("action")); err != nil {
		s.fail(w, err, "Failed to apply action")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleSetDuration(w http.ResponseWriter, r *http.Request) {
	var req DurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.engine.SetWorkDuration(req.Minutes); err != nil {
		s.fail(w, err, "Failed to set duration")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleGetAlwaysOnTop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AlwaysOnTopResponse{Enabled: s.prefs.AlwaysOnTop()})
}

func (s *Server) handleToggleAlwaysOnTop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AlwaysOnTopResponse{Enabled: s.prefs.ToggleAlwaysOnTop()})
}

func (s *Server) handleSetAlwaysOnTop(w http.ResponseWriter, r *http.Request) {
	var req AlwaysOnTopResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, AlwaysOnTopResponse{Enabled: s.prefs.SetAlwaysOnTop(req.Enabled)})
}

// fail logs err and writes the matching status. Unrecognised errors get
// the generic message.
func (s *Server) fail(w http.ResponseWriter, err error, generic string) {
	status := statusFor(err)
	s.logger.Error(generic, "err", err, "status", status)
	if status == http.StatusInternalServerError {
		writeError(w, status, generic)
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAmbiguousPrefix),
		errors.Is(err, models.ErrInvalidDuration),
		errors.Is(err, models.ErrInvalidSessionType),
		errors.Is(err, timer.ErrInvalidWorkDuration),
		errors.Is(err, timer.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrReadOnly):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
