// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/coursechat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete coursechat configuration.
type Config struct {
	API    APIConfig    `toml:"api"`
	Reveal RevealConfig `toml:"reveal"`
	UI     UIConfig     `toml:"ui"`
	Log    LogConfig    `toml:"log"`
}

// APIConfig configures the connection to the course backend.
type APIConfig struct {
	// BaseURL is the backend root, e.g. http://127.0.0.1:8000.
	BaseURL string `toml:"base_url"`

	// TimeoutSecs bounds list, delete and chat requests.
	TimeoutSecs int `toml:"timeout_secs"`

	// UploadTimeoutSecs bounds a whole upload including server-side processing.
	UploadTimeoutSecs int `toml:"upload_timeout_secs"`

	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// RevealConfig controls the typewriter reveal of answers.
type RevealConfig struct {
	Enabled       bool `toml:"enabled"`
	FrameMillis   int  `toml:"frame_millis"`
	RunesPerFrame int  `toml:"runes_per_frame"`
}

// UIConfig contains dashboard settings.
type UIConfig struct {
	// Theme is "auto", "dark", "light" or "notty".
	Theme string `toml:"theme"`

	// WordWrap is the markdown wrap width; 0 follows the terminal width.
	WordWrap int `toml:"word_wrap"`

	// NotifySecs is how long notifications stay on screen.
	NotifySecs int `toml:"notify_secs"`
}

// LogConfig configures the rotated log file.
type LogConfig struct {
	Path       string `toml:"path"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// APITimeout returns the request timeout as a duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// UploadTimeout returns the upload timeout as a duration.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.API.UploadTimeoutSecs) * time.Second
}

// FrameDelay returns the pause between reveal frames.
func (c *Config) FrameDelay() time.Duration {
	return time.Duration(c.Reveal.FrameMillis) * time.Millisecond
}

// NotifyDuration returns how long a notification is displayed.
func (c *Config) NotifyDuration() time.Duration {
	return time.Duration(c.UI.NotifySecs) * time.Second
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	logPath := ""
	if dir, err := ConfigDir(); err == nil {
		logPath = filepath.Join(dir, "logs", "coursechat.log")
	}

	return &Config{
		API: APIConfig{
			BaseURL:           "http://127.0.0.1:8000",
			TimeoutSecs:       120,
			UploadTimeoutSecs: 1800,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Reveal: RevealConfig{
			Enabled:       true,
			FrameMillis:   16,
			RunesPerFrame: 16,
		},
		UI: UIConfig{
			Theme:      "auto",
			WordWrap:   0,
			NotifySecs: 5,
		},
		Log: LogConfig{
			Path:       logPath,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// fillDefaults replaces zero values left by a partial config file.
func fillDefaults(cfg *Config) {
	def := Default()

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = def.API.BaseURL
	}
	if cfg.API.TimeoutSecs == 0 {
		cfg.API.TimeoutSecs = def.API.TimeoutSecs
	}
	if cfg.API.UploadTimeoutSecs == 0 {
		cfg.API.UploadTimeoutSecs = def.API.UploadTimeoutSecs
	}
	if cfg.API.RequestsPerSecond == 0 {
		cfg.API.RequestsPerSecond = def.API.RequestsPerSecond
	}
	if cfg.API.Burst == 0 {
		cfg.API.Burst = def.API.Burst
	}
	if cfg.Reveal.FrameMillis == 0 {
		cfg.Reveal.FrameMillis = def.Reveal.FrameMillis
	}
	if cfg.Reveal.RunesPerFrame == 0 {
		cfg.Reveal.RunesPerFrame = def.Reveal.RunesPerFrame
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = def.UI.Theme
	}
	if cfg.UI.NotifySecs == 0 {
		cfg.UI.NotifySecs = def.UI.NotifySecs
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = def.Log.Path
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = def.Log.MaxSizeMB
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = def.Log.MaxBackups
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = def.Log.MaxAgeDays
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the coursechat configuration directory path.
// COURSECHAT_HOME overrides the default of ~/.coursechat.
func ConfigDir() (string, error) {
	if dir := os.Getenv("COURSECHAT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".coursechat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// HistoryPath returns the path of the chat REPL history file.
func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file, falling back to
// defaults when the file does not exist. A .env file and environment
// overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return load(path, false)
}

// LoadFromPath loads configuration from a specific file, which must exist.
func LoadFromPath(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, mustExist bool) (*Config, error) {
	cfg := Default()

	if err := LoadTOML(cfg, path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || mustExist {
			return nil, err
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes the TOML file at path over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	fillDefaults(cfg)
	return nil
}

// loadDotEnv reads ./.env if present. Variables already set in the
// environment win.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes the configuration to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

var (
	validThemes = map[string]bool{"auto": true, "dark": true, "light": true, "notty": true}
	validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate checks the configuration and returns ValidationErrors if any
// field is out of range.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	u, err := url.Parse(c.API.BaseURL)
	switch {
	case err != nil:
		add("api.base_url", "invalid URL: %v", err)
	case u.Scheme != "http" && u.Scheme != "https":
		add("api.base_url", "scheme must be http or https, got %q", u.Scheme)
	case u.Host == "":
		add("api.base_url", "missing host")
	}
	if c.API.TimeoutSecs <= 0 {
		add("api.timeout_secs", "must be positive")
	}
	if c.API.UploadTimeoutSecs <= 0 {
		add("api.upload_timeout_secs", "must be positive")
	}
	if c.API.RequestsPerSecond <= 0 {
		add("api.requests_per_second", "must be positive")
	}
	if c.API.Burst <= 0 {
		add("api.burst", "must be positive")
	}

	if c.Reveal.FrameMillis < 1 || c.Reveal.FrameMillis > 1000 {
		add("reveal.frame_millis", "must be between 1 and 1000, got %d", c.Reveal.FrameMillis)
	}
	if c.Reveal.RunesPerFrame < 1 {
		add("reveal.runes_per_frame", "must be at least 1")
	}

	if !validThemes[strings.ToLower(c.UI.Theme)] {
		add("ui.theme", "invalid theme %q, must be one of: auto, dark, light, notty", c.UI.Theme)
	}
	if c.UI.WordWrap != 0 && (c.UI.WordWrap < 20 || c.UI.WordWrap > 400) {
		add("ui.word_wrap", "must be 0 or between 20 and 400, got %d", c.UI.WordWrap)
	}
	if c.UI.NotifySecs <= 0 {
		add("ui.notify_secs", "must be positive")
	}

	if !validLevels[strings.ToLower(c.Log.Level)] {
		add("log.level", "invalid level %q, must be one of: debug, info, warn, error", c.Log.Level)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		add("log", "rotation limits cannot be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - COURSECHAT_API_URL: overrides api.base_url
//   - COURSECHAT_TIMEOUT: overrides api.timeout_secs
//   - COURSECHAT_LOG_LEVEL: overrides log.level
//   - COURSECHAT_LOG_PATH: overrides log.path
//   - COURSECHAT_THEME: overrides ui.theme
//   - COURSECHAT_NO_REVEAL: "1" or "true" disables the typewriter reveal
//
// Unparseable numeric values are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("COURSECHAT_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("COURSECHAT_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("COURSECHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("COURSECHAT_LOG_PATH"); v != "" {
		c.Log.Path = v
	}
	if v := os.Getenv("COURSECHAT_THEME"); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}
	if v := os.Getenv("COURSECHAT_NO_REVEAL"); v != "" {
		if v == "1" || strings.EqualFold(v, "true") {
			c.Reveal.Enabled = false
		}
	}
}
