// Package config loads the fude settings file and its environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the user-tunable settings. All fields are optional in
// the file; zero values are replaced by defaults before validation.
type Config struct {
	// TabStop is the column multiple tabs expand to when rendered.
	TabStop int `yaml:"tab_stop"`
	// ReadTimeoutMS is how long a raw-mode read waits for input, in
	// milliseconds. The terminal driver rounds it up to tenths of a
	// second.
	ReadTimeoutMS int `yaml:"read_timeout_ms"`
	// HideBanner suppresses the welcome banner on empty content.
	HideBanner bool `yaml:"hide_banner"`
	// DebugLog is the path diagnostics are appended to. Empty
	// disables logging unless --debug picks the default path.
	DebugLog string `yaml:"debug_log"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		TabStop:       8,
		ReadTimeoutMS: 100,
	}
}

// Path returns the standard config file location,
// $XDG_CONFIG_HOME/fude/config.yaml or the platform equivalent.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "fude", "config.yaml"), nil
}

// Load reads the file at path, falling back to defaults when it does
// not exist, then applies FUDE_* environment overrides and validates
// the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err == nil {
		var file Config
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		merge(cfg, &file)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// merge overlays set fields from file onto base. Numeric fields use
// zero as "not set" so a file cannot select a zero tab stop, which
// Validate would reject anyway.
func merge(base, file *Config) {
	if file.TabStop != 0 {
		base.TabStop = file.TabStop
	}
	if file.ReadTimeoutMS != 0 {
		base.ReadTimeoutMS = file.ReadTimeoutMS
	}
	if file.HideBanner {
		base.HideBanner = true
	}
	if file.DebugLog != "" {
		base.DebugLog = file.DebugLog
	}
}

// applyEnv overlays FUDE_* variables on top of the file settings.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("FUDE_TAB_STOP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing FUDE_TAB_STOP: %w", err)
		}
		cfg.TabStop = n
	}
	if v := os.Getenv("FUDE_READ_TIMEOUT_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing FUDE_READ_TIMEOUT_MS: %w", err)
		}
		cfg.ReadTimeoutMS = n
	}
	if v := os.Getenv("FUDE_HIDE_BANNER"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing FUDE_HIDE_BANNER: %w", err)
		}
		cfg.HideBanner = b
	}
	if v := os.Getenv("FUDE_DEBUG_LOG"); v != "" {
		cfg.DebugLog = v
	}
	return nil
}

// Validate checks the merged settings.
func (c *Config) Validate() error {
	if c.TabStop < 1 || c.TabStop > 64 {
		return fmt.Errorf("tab_stop must be between 1 and 64, got %d", c.TabStop)
	}
	if c.ReadTimeoutMS < 1 || c.ReadTimeoutMS > 25500 {
		return fmt.Errorf("read_timeout_ms must be between 1 and 25500, got %d", c.ReadTimeoutMS)
	}
	return nil
}

// ReadTimeout returns the read timeout as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}
