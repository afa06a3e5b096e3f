// ABOUTME: HTTP server for the pomodoro API and the timer mirror stream.
// ABOUTME: Routes on net/http ServeMux method patterns with graceful shutdown.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/pomodoro/internal/logging"
	"github.com/harperreed/pomodoro/internal/pip"
	"github.com/harperreed/pomodoro/internal/stats"
	"github.com/harperreed/pomodoro/internal/storage"
	"github.com/harperreed/pomodoro/internal/timer"
)

// Options configures a Server. Repo is required; the timer routes are
// registered only when Engine is set.
type Options struct {
	Repo      storage.Repository
	Engine    *timer.Engine
	Hub       *pip.Hub[timer.Snapshot]
	Prefs     *pip.Preferences
	GoalHours float64
	Port      int
	Logger    *log.Logger
	// Heartbeat is the event stream keep-alive interval.
	Heartbeat time.Duration
	Now       func() time.Time
}

type Server struct {
	repo      storage.Repository
	engine    *timer.Engine
	hub       *pip.Hub[timer.Snapshot]
	prefs     *pip.Preferences
	goalHours float64
	port      int
	logger    *log.Logger
	heartbeat time.Duration
	now       func() time.Time
	router    *http.ServeMux
}

func NewServer(opts Options) *Server {
	s := &Server{
		repo:      opts.Repo,
		engine:    opts.Engine,
		hub:       opts.Hub,
		prefs:     opts.Prefs,
		goalHours: opts.GoalHours,
		port:      opts.Port,
		logger:    opts.Logger,
		heartbeat: opts.Heartbeat,
		now:       opts.Now,
		router:    http.NewServeMux(),
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.goalHours <= 0 {
		s.goalHours = stats.DefaultGoalHours
	}
	if s.heartbeat <= 0 {
		s.heartbeat = 15 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.prefs == nil {
		s.prefs = pip.NewPreferences(false, nil)
	}
	if s.engine != nil && s.hub == nil {
		s.hub = pip.NewHub[timer.Snapshot]()
		s.engine.OnChange(s.hub.Publish)
		s.hub.Publish(s.engine.Snapshot())
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.HandleFunc("GET /pomodoro", s.handleRoot)
	s.router.HandleFunc("GET /pomodoro/{$}", s.handleRoot)

	// Cycle log
	s.router.HandleFunc("POST /pomodoro/cycle", s.handleRecordCycle)
	s.router.HandleFunc("GET /pomodoro/stats", s.handleStats)
	s.router.HandleFunc("GET /pomodoro/summary", s.handleSummary)
	s.router.HandleFunc("GET /pomodoro/cycles", s.handleListCycles)
	s.router.HandleFunc("DELETE /pomodoro/cycles/{id}", s.handleDeleteCycle)
	s.router.HandleFunc("DELETE /pomodoro/clear", s.handleClear)
	s.router.HandleFunc("GET /pomodoro/export", s.handleExport)

	// Companion preferences
	s.router.HandleFunc("GET /pomodoro/pip/always-on-top", s.handleGetAlwaysOnTop)
	s.router.HandleFunc("POST /pomodoro/pip/always-on-top/toggle", s.handleToggleAlwaysOnTop)
	s.router.HandleFunc("PUT /pomodoro/pip/always-on-top", s.handleSetAlwaysOnTop)

	if s.engine == nil {
		return
	}

	// Timer mirror and remote control
	s.router.HandleFunc("GET /pomodoro/timer", s.handleTimer)
	s.router.HandleFunc("GET /pomodoro/timer/events", s.handleTimerEvents)
	s.router.HandleFunc("PUT /pomodoro/timer/duration", s.handleSetDuration)
	s.router.HandleFunc("POST /pomodoro/timer/{action}", s.handleTimerAction)
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return chain(s.router,
		s.recoverer,
		s.requestLogger,
		tracing,
		cors,
	)
}

// Start serves until ctx is cancelled, then shuts down within five seconds.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", s.port),
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
		// No write timeout: the event stream is long-lived.
		IdleTimeout: 60 * time.Second,
	}

	s.logger.Info("starting server", "url", fmt.Sprintf("http://localhost:%d/pomodoro", s.port))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown", "err", err)
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
