// Package config loads and saves the finboard TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all finboard configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	General    GeneralConfig    `toml:"general"`
	TUI        TUIConfig        `toml:"tui"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
}

// APIConfig holds finance backend settings.
type APIConfig struct {
	BaseURL    string `toml:"base_url"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DefaultAccountID int64  `toml:"default_account_id"`
	Locale           string `toml:"locale"`
	Currency         string `toml:"currency"`
}

// TUIConfig holds dashboard timing settings.
type TUIConfig struct {
	RefreshIntervalSec int `toml:"refresh_interval_sec"`
	NotificationSec    int `toml:"notification_sec"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig controls the log file written by the TUI and watcher.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

const (
	minRefreshInterval     = 10 * time.Second
	defaultRefreshInterval = 5 * time.Minute
	defaultNotification    = 5 * time.Second
	defaultTimeout         = 10 * time.Second
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:    "http://localhost:8000",
			TimeoutSec: 10,
		},
		General: GeneralConfig{
			DefaultAccountID: 1,
			Locale:           "id-ID",
			Currency:         "Rp",
		},
		TUI: TUIConfig{
			RefreshIntervalSec: 300,
			NotificationSec:    5,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "finboard")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "finboard")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// CacheDir returns the XDG-compliant cache directory used for logs and pid files.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "finboard")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "finboard")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied last.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// WithEnv returns cfg with the FINBOARD_* environment overrides applied.
func WithEnv(cfg Config) Config {
	applyEnv(&cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("FINBOARD_API_URL")); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("FINBOARD_ACCOUNT_ID")); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			cfg.General.DefaultAccountID = id
		}
	}
	if v := strings.TrimSpace(os.Getenv("FINBOARD_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
}

// RefreshInterval returns the silent reload period, never below 10s.
func (c Config) RefreshInterval() time.Duration {
	if c.TUI.RefreshIntervalSec <= 0 {
		return defaultRefreshInterval
	}
	d := time.Duration(c.TUI.RefreshIntervalSec) * time.Second
	if d < minRefreshInterval {
		return minRefreshInterval
	}
	return d
}

// NotificationDuration returns how long a notification stays on screen.
func (c Config) NotificationDuration() time.Duration {
	if c.TUI.NotificationSec <= 0 {
		return defaultNotification
	}
	return time.Duration(c.TUI.NotificationSec) * time.Second
}

// Timeout returns the per-request API timeout.
func (c Config) Timeout() time.Duration {
	if c.API.TimeoutSec <= 0 {
		return defaultTimeout
	}
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// LogPath returns the log file path, defaulting to the cache dir.
func (c Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(CacheDir(), "finboard.log")
}
