// ABOUTME: CLI command for running the HTTP API server.
// ABOUTME: Hosts the cycle log endpoints and a shared timer with its event stream.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/pomodoro/internal/api"
	"github.com/harperreed/pomodoro/internal/logging"
	"github.com/harperreed/pomodoro/internal/pip"
	"github.com/harperreed/pomodoro/internal/telemetry"
	"github.com/harperreed/pomodoro/internal/timer"
	"github.com/spf13/cobra"
)

var (
	servePort    int
	serveNoTimer bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the pomodoro HTTP API.

ENDPOINTS:

  GET    /health                          Liveness check
  POST   /pomodoro/cycle                  Record a cycle
  GET    /pomodoro/stats                  Daily aggregates
  GET    /pomodoro/summary?goal=8         Goal progress, streak, and chart rows
  GET    /pomodoro/cycles                 List cycles (?type, ?since, ?limit)
  DELETE /pomodoro/cycles/{id}            Delete a cycle
  DELETE /pomodoro/clear                  Delete every cycle
  GET    /pomodoro/export?format=csv      Export the log

  GET    /pomodoro/timer                  Current timer snapshot
  GET    /pomodoro/timer/events           Server-Sent Events stream of snapshots
  POST   /pomodoro/timer/{action}         start, pause, toggle, reset, complete-reset, skip
  PUT    /pomodoro/timer/duration         {"minutes": 45}

The timer state is saved to the state store and restored paused on restart.

ENVIRONMENT:

  POMODORO_PORT (or PORT)       Listen port (default 3000)
  POMODORO_LOG_LEVEL            debug, info, warn, error
  POMODORO_OTEL_ENDPOINT        OTLP/HTTP endpoint for tracing`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger, err := logging.New(os.Stderr, cfg.GetLogLevel(), "pomodoro")
		if err != nil {
			return err
		}

		shutdown, err := telemetry.Setup(ctx, cfg.OTelEndpoint)
		if err != nil {
			return fmt.Errorf("failed to set up tracing: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				logger.Warn("tracing shutdown", "err", err)
			}
		}()

		port := cfg.GetPort()
		if servePort > 0 {
			port = servePort
		}
		opts := api.Options{
			Repo:      repo,
			GoalHours: cfg.GetDailyGoalHours(),
			Port:      port,
			Logger:    logger,
		}

		if !serveNoTimer {
			st := openState(logger)
			if st != nil {
				defer st.Close()
			}

			engine := timer.New(engineConfig(cfg), timer.WithRecorder(repo), timer.WithLogger(logger))
			hub := pip.NewHub[timer.Snapshot]()

			onTop := false
			if st != nil {
				if saved, ok, err := st.LoadTimer(); err != nil {
					logger.Warn("could not load timer state", "err", err)
				} else if ok {
					engine.Restore(saved)
					logger.Info("timer restored", "phase", saved.Phase, "time_left", saved.TimeLeft, "cycles", saved.Cycles)
				}
				if onTop, err = st.LoadAlwaysOnTop(); err != nil {
					logger.Warn("could not load companion preferences", "err", err)
				}
			}

			defer engine.OnChange(func(s timer.Snapshot) {
				hub.Publish(s)
				if st != nil {
					if err := st.SaveTimer(s.State); err != nil {
						logger.Warn("could not save timer state", "err", err)
					}
				}
			})()
			hub.Publish(engine.Snapshot())
			defer engine.Pause()

			opts.Engine = engine
			opts.Hub = hub
			opts.Prefs = pip.NewPreferences(onTop, func(v bool) {
				if st == nil {
					return
				}
				if err := st.SaveAlwaysOnTop(v); err != nil {
					logger.Warn("could not save companion preferences", "err", err)
				}
			})
		}

		logger.Info("using storage", "backend", cfg.GetBackend())
		return api.NewServer(opts).Start(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config)")
	serveCmd.Flags().BoolVar(&serveNoTimer, "no-timer", false, "serve the cycle log only, without the shared timer")
	rootCmd.AddCommand(serveCmd)
}
