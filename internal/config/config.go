// ABOUTME: Pomodoro configuration management with backend selection.
// ABOUTME: Loads JSON settings, overlays environment variables, and opens storage.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/harperreed/pomodoro/internal/charm"
	"github.com/harperreed/pomodoro/internal/storage"
)

// Defaults for unset configuration values.
const (
	DefaultBackend           = "sqlite"
	DefaultPort              = 3000
	DefaultWorkMinutes       = 25
	DefaultShortBreakMinutes = 5
	DefaultLongBreakMinutes  = 15
	DefaultLongBreakInterval = 4
	DefaultDailyGoalHours    = 8.0
	DefaultLogLevel          = "info"

	MinWorkMinutes = 1
	MaxWorkMinutes = 120
)

// Backends lists the storage backends OpenStorage understands.
var Backends = []string{"sqlite", "charm"}

// Config stores pomodoro tool configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "charm".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// SQLite puts pomodoro.db here and the engine state lives in state/.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/pomodoro.
	DataDir string `json:"data_dir,omitempty"`

	Port              int     `json:"port,omitempty"`
	WorkMinutes       int     `json:"work_minutes,omitempty"`
	ShortBreakMinutes int     `json:"short_break_minutes,omitempty"`
	LongBreakMinutes  int     `json:"long_break_minutes,omitempty"`
	LongBreakInterval int     `json:"long_break_interval,omitempty"`
	DailyGoalHours    float64 `json:"daily_goal_hours,omitempty"`

	// ServerURL is the pomodoro API the timer records to when --remote is set.
	ServerURL string `json:"server_url,omitempty"`
	LogLevel  string `json:"log_level,omitempty"`

	// OTelEndpoint enables OTLP/HTTP tracing when set.
	OTelEndpoint string `json:"otel_endpoint,omitempty"`
}

// envOverlay mirrors the settings that may be overridden from the environment.
type envOverlay struct {
	Port       int    `env:"POMODORO_PORT"`
	LegacyPort int    `env:"PORT"`
	Backend    string `env:"POMODORO_BACKEND"`
	DataDir    string `env:"POMODORO_DATA_DIR"`
	ServerURL  string `env:"POMODORO_SERVER"`
	LogLevel   string `env:"POMODORO_LOG_LEVEL"`
	OTel       string `env:"POMODORO_OTEL_ENDPOINT"`
}

// ApplyEnv overlays non-empty environment variables onto the config.
// POMODORO_PORT wins over PORT.
func (c *Config) ApplyEnv() error {
	var overlay envOverlay
	if err := env.Parse(&overlay); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	switch {
	case overlay.Port != 0:
		c.Port = overlay.Port
	case overlay.LegacyPort != 0:
		c.Port = overlay.LegacyPort
	}
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.DataDir != "" {
		c.DataDir = overlay.DataDir
	}
	if overlay.ServerURL != "" {
		c.ServerURL = overlay.ServerURL
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.OTel != "" {
		c.OTelEndpoint = overlay.OTel
	}
	return nil
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return DefaultBackend
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// StateDir is where the engine state store lives.
func (c *Config) StateDir() string {
	return filepath.Join(c.GetDataDir(), "state")
}

func (c *Config) GetPort() int {
	if c.Port <= 0 {
		return DefaultPort
	}
	return c.Port
}

func (c *Config) GetWorkMinutes() int {
	if c.WorkMinutes < MinWorkMinutes || c.WorkMinutes > MaxWorkMinutes {
		return DefaultWorkMinutes
	}
	return c.WorkMinutes
}

func (c *Config) GetShortBreakMinutes() int {
	if c.ShortBreakMinutes <= 0 {
		return DefaultShortBreakMinutes
	}
	return c.ShortBreakMinutes
}

func (c *Config) GetLongBreakMinutes() int {
	if c.LongBreakMinutes <= 0 {
		return DefaultLongBreakMinutes
	}
	return c.LongBreakMinutes
}

func (c *Config) GetLongBreakInterval() int {
	if c.LongBreakInterval <= 0 {
		return DefaultLongBreakInterval
	}
	return c.LongBreakInterval
}

func (c *Config) GetDailyGoalHours() float64 {
	if c.DailyGoalHours <= 0 {
		return DefaultDailyGoalHours
	}
	return c.DailyGoalHours
}

// GetServerURL returns the API base URL, defaulting to the local server port.
func (c *Config) GetServerURL() string {
	if c.ServerURL == "" {
		return fmt.Sprintf("http://localhost:%d", c.GetPort())
	}
	return strings.TrimRight(c.ServerURL, "/")
}

func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return DefaultLogLevel
	}
	return c.LogLevel
}

// Keys lists the settings accepted by Set.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var setters = map[string]func(c *Config, v string) error{
	"backend": func(c *Config, v string) error {
		for _, b := range Backends {
			if v == b {
				c.Backend = v
				return nil
			}
		}
		return fmt.Errorf("unknown backend %q (use %s)", v, strings.Join(Backends, ", "))
	},
	"data_dir":      func(c *Config, v string) error { c.DataDir = v; return nil },
	"server_url":    func(c *Config, v string) error { c.ServerURL = v; return nil },
	"otel_endpoint": func(c *Config, v string) error { c.OTelEndpoint = v; return nil },
	"log_level": func(c *Config, v string) error {
		switch v {
		case "debug", "info", "warn", "error":
			c.LogLevel = v
			return nil
		}
		return fmt.Errorf("unknown log level %q", v)
	},
	"port": intSetter(func(c *Config, n int) error {
		if n < 1 || n > 65535 {
			return fmt.Errorf("port %d out of range", n)
		}
		c.Port = n
		return nil
	}),
	"work_minutes": intSetter(func(c *Config, n int) error {
		if n < MinWorkMinutes || n > MaxWorkMinutes {
			return fmt.Errorf("work minutes must be between %d and %d", MinWorkMinutes, MaxWorkMinutes)
		}
		c.WorkMinutes = n
		return nil
	}),
	"short_break_minutes": intSetter(func(c *Config, n int) error {
		if n < 1 {
			return fmt.Errorf("short break must be at least 1 minute")
		}
		c.ShortBreakMinutes = n
		return nil
	}),
	"long_break_minutes": intSetter(func(c *Config, n int) error {
		if n < 1 {
			return fmt.Errorf("long break must be at least 1 minute")
		}
		c.LongBreakMinutes = n
		return nil
	}),
	"long_break_interval": intSetter(func(c *Config, n int) error {
		if n < 1 {
			return fmt.Errorf("long break interval must be at least 1")
		}
		c.LongBreakInterval = n
		return nil
	}),
	"daily_goal_hours": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 24 {
			return fmt.Errorf("daily goal must be between 0 and 24 hours")
		}
		c.DailyGoalHours = f
		return nil
	},
}

func intSetter(fn func(c *Config, n int) error) func(c *Config, v string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%q is not a number", v)
		}
		return fn(c, n)
	}
}

// Set updates a single setting by its JSON key.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (use %s)", key, strings.Join(Keys(), ", "))
	}
	return set(c, value)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	switch backend := c.GetBackend(); backend {
	case "sqlite":
		return storage.Open(filepath.Join(c.GetDataDir(), "pomodoro.db"))
	case "charm":
		return charm.InitClient()
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "pomodoro", "config.json")
}

// Load reads config from disk. A missing file yields defaults.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadWithEnv reads the config file and applies the environment overlay.
func LoadWithEnv() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
