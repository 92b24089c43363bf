package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// APIConfig holds the backend connection settings.
type APIConfig struct {
	// BaseURL is the root URL of the MatchBox backend.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds every backend request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns TimeoutSec as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme ThemeName `mapstructure:"theme" yaml:"theme"`
}

// SearchConfig holds user-search settings.
type SearchConfig struct {
	// DebounceMs is the quiet period after the last keystroke before a
	// search request is sent.
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// Debounce returns DebounceMs as a duration.
func (c SearchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// NotificationConfig controls notification polling.
type NotificationConfig struct {
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	File   string `mapstructure:"file" yaml:"file"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API           APIConfig          `mapstructure:"api" yaml:"api"`
	Display       DisplayConfig      `mapstructure:"display" yaml:"display"`
	Search        SearchConfig       `mapstructure:"search" yaml:"search"`
	Notifications NotificationConfig `mapstructure:"notifications" yaml:"notifications"`
	Log           LogConfig          `mapstructure:"log" yaml:"log"`

	// Token is only ever set from the environment and is never saved.
	Token string `mapstructure:"-" yaml:"-"`
}

// EnvOverrides are values read from the process environment. They take
// precedence over the config file.
type EnvOverrides struct {
	APIURL   string `env:"MATCHBOX_API_URL"`
	LogLevel string `env:"MATCHBOX_LOG_LEVEL"`
	Token    string `env:"MATCHBOX_TOKEN"`
}

// configDir returns ~/.config/matchbox, or the working directory when the
// home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "matchbox")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/matchbox/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultDataPath returns the path of the local SQLite cache.
func DefaultDataPath() string {
	return filepath.Join(configDir(), "matchbox.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:8080/api",
			TimeoutSec: 30,
		},
		Display: DisplayConfig{
			Theme: ThemeDark,
		},
		Search: SearchConfig{
			DebounceMs: 500,
		},
		Notifications: NotificationConfig{
			PollIntervalSec: 60,
		},
		Log: LogConfig{
			Level:  "info",
			File:   filepath.Join(configDir(), "matchbox.log"),
			Format: "text",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper
// and applies environment overrides. If the file does not exist, the
// defaults are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := defaultAppConfig()
	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.timeout_sec", def.API.TimeoutSec)
	v.SetDefault("display.theme", string(def.Display.Theme))
	v.SetDefault("search.debounce_ms", def.Search.DebounceMs)
	v.SetDefault("notifications.poll_interval_sec", def.Notifications.PollIntervalSec)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.format", def.Log.Format)

	cfg := def
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()

	return cfg, nil
}

// applyEnv overlays MATCHBOX_* environment variables.
func (c *AppConfig) applyEnv() error {
	var o EnvOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.APIURL != "" {
		c.API.BaseURL = o.APIURL
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	c.Token = o.Token
	return nil
}

// normalize repairs out-of-range values left by a hand-edited file.
func (c *AppConfig) normalize() {
	if c.API.TimeoutSec <= 0 {
		c.API.TimeoutSec = 30
	}
	if c.Search.DebounceMs <= 0 {
		c.Search.DebounceMs = 500
	}
	if c.Notifications.PollIntervalSec <= 0 {
		c.Notifications.PollIntervalSec = 60
	}
	if c.Display.Theme != ThemeLight {
		c.Display.Theme = ThemeDark
	}
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("display", cfg.Display)
	v.Set("search", cfg.Search)
	v.Set("notifications", cfg.Notifications)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
