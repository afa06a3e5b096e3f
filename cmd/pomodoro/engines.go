// ABOUTME: Shared wiring for the commands that run a timer or stopwatch.
// ABOUTME: Builds engine config, picks a recorder, and opens the state store.
package main

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/harperreed/pomodoro/internal/client"
	"github.com/harperreed/pomodoro/internal/config"
	"github.com/harperreed/pomodoro/internal/logging"
	"github.com/harperreed/pomodoro/internal/state"
	"github.com/harperreed/pomodoro/internal/timer"
)

func engineConfig(c *config.Config) timer.Config {
	return timer.Config{
		WorkMinutes:       c.GetWorkMinutes(),
		ShortBreakMinutes: c.GetShortBreakMinutes(),
		LongBreakMinutes:  c.GetLongBreakMinutes(),
		LongBreakInterval: c.GetLongBreakInterval(),
	}
}

// recorder returns the local repository, or an API client when remote is set.
func recorder(remote bool, logger *log.Logger) timer.Recorder {
	if remote {
		return client.New(cfg.GetServerURL(), client.WithLogger(logger))
	}
	return repo
}

// tuiLogger writes to a file in the data directory so log lines do not
// tear the terminal UI. It falls back to discarding.
func tuiLogger(name string) (*log.Logger, func()) {
	dir := cfg.GetDataDir()
	if err := os.MkdirAll(dir, 0750); err != nil {
		return logging.Discard(), func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, name+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return logging.Discard(), func() {}
	}
	logger, err := logging.New(f, cfg.GetLogLevel(), name)
	if err != nil {
		_ = f.Close()
		return logging.Discard(), func() {}
	}
	return logger, func() { _ = f.Close() }
}

// openState opens the engine state store. A store held by a running server
// yields nil and a warning; the caller runs without persistence.
func openState(logger *log.Logger) *state.Store {
	st, err := state.Open(cfg.StateDir())
	if err != nil {
		logger.Warn("state store unavailable, running without persistence", "dir", cfg.StateDir(), "err", err)
		return nil
	}
	return st
}
