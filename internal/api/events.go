// ABOUTME: Server-Sent Events stream of timer snapshots for the PiP companion.
// ABOUTME: Each subscriber sees the latest state first and then every change.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/harperreed/pomodoro/internal/timer"
)

func (s *Server) handleTimerEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	sub := s.hub.Subscribe()
	defer sub.Close()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		s.logger.Warn("event stream not flushable", "err", err)
		return
	}

	ping := time.NewTicker(s.heartbeat)
	defer ping.Stop()

	s.logger.Debug("event stream opened", "remote", r.RemoteAddr)
	defer s.logger.Debug("event stream closed", "remote", r.RemoteAddr)

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-sub.C:
			if !ok {
				return
			}
			if err := writeSnapshotEvent(w, snap); err != nil {
				return
			}
		case <-ping.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeSnapshotEvent(w http.ResponseWriter, snap timer.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: timer\ndata: %s\n\n", data)
	return err
}
