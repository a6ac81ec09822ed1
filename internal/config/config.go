package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const appDir = "snapclick"

type Config struct {
	LogLevel          string          `json:"log_level"`
	SchemesPath       string          `json:"schemes_path"` // empty: schemes.json beside config.json
	AutoStart         bool            `json:"auto_start"`
	WatchSchemes      bool            `json:"watch_schemes"`
	Notifications     bool            `json:"notifications"`
	PromptPermissions bool            `json:"prompt_permissions"`
	Clicker           ClickerConfig   `json:"clicker"`
	Cue               CueConfig       `json:"cue"`
	Intercept         InterceptConfig `json:"intercept"`

	path string
}

type ClickerConfig struct {
	PressHoldMs int `json:"press_hold_ms"` // gap between press and release
}

type CueConfig struct {
	Enabled     bool    `json:"enabled"`
	FrequencyHz float64 `json:"frequency_hz"`
	DurationMs  int     `json:"duration_ms"`
	Volume      float64 `json:"volume"` // 0..1
}

type InterceptConfig struct {
	QueueSize int `json:"queue_size"` // pending matches before drops
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:          "info",
		AutoStart:         true,
		WatchSchemes:      true,
		Notifications:     true,
		PromptPermissions: true,
		Clicker: ClickerConfig{
			PressHoldMs: 1,
		},
		Cue: CueConfig{
			Enabled:     true,
			FrequencyHz: 1760,
			DurationMs:  60,
			Volume:      0.3,
		},
		Intercept: InterceptConfig{
			QueueSize: 16,
		},
	}
}

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	return LoadFrom(configPath())
}

// LoadFrom reads the config at path, keeping defaults for absent fields.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.normalize()
	return cfg, nil
}

// Save writes the config back to where it was loaded from.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		path = configPath()
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SchemesFile is the scheme store location.
func (c *Config) SchemesFile() string {
	if c.SchemesPath != "" {
		return c.SchemesPath
	}
	if c.path != "" {
		return filepath.Join(filepath.Dir(c.path), "schemes.json")
	}
	return filepath.Join(configDir(), "schemes.json")
}

// PressHold is the configured press-to-release delay.
func (c *Config) PressHold() time.Duration {
	return time.Duration(c.Clicker.PressHoldMs) * time.Millisecond
}

func (c *Config) normalize() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Clicker.PressHoldMs < 0 {
		c.Clicker.PressHoldMs = 0
	}
	if c.Intercept.QueueSize <= 0 {
		c.Intercept.QueueSize = 16
	}
	if c.Cue.Volume < 0 {
		c.Cue.Volume = 0
	} else if c.Cue.Volume > 1 {
		c.Cue.Volume = 1
	}
}

// configPath returns the platform-specific config file path
func configPath() string {
	return filepath.Join(configDir(), "config.json")
}

func configDir() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, appDir)
}
