// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "DRAUGR_CONFIG"

// Config is the master configuration for the client.
type Config struct {
	// World selects an entry of Worlds whose values override the base
	// configuration. Empty means no world is applied.
	World string `yaml:"world"`

	// Connection configures the server connection.
	Connection ConnectionConfig `yaml:"connection"`

	// History configures in-memory history sizes.
	History HistoryConfig `yaml:"history"`

	// Display configures the terminal presentation.
	Display DisplayConfig `yaml:"display"`

	// Script configures startup automation.
	Script ScriptConfig `yaml:"script"`

	// Log configures diagnostic logging.
	Log LogConfig `yaml:"log"`

	// Worlds contains per-server overrides, keyed by world name.
	Worlds map[string]WorldConfig `yaml:"worlds,omitempty"`
}

// WorldConfig contains the fields a world can override.
type WorldConfig struct {
	Host   string `yaml:"host,omitempty"`
	Port   int    `yaml:"port,omitempty"`
	Script string `yaml:"script,omitempty"`
	Layout string `yaml:"layout,omitempty"`
}

// ConnectionConfig configures the server connection.
type ConnectionConfig struct {
	// Host is the server to connect to at startup. Empty means the
	// client starts disconnected and waits for a script to connect.
	Host string `yaml:"host"`

	// Port is the server's TCP port.
	// Default: 4000
	Port int `yaml:"port"`

	// DialTimeout bounds connection establishment.
	// Default: 10s
	DialTimeout string `yaml:"dial_timeout"`

	// ReadTimeout is how long a single socket read waits before the
	// connection checks for outgoing work. Not an idle timeout: reads
	// that time out without data are retried indefinitely.
	// Default: 20ms
	ReadTimeout string `yaml:"read_timeout"`

	// LineTerminator is appended to every line sent. "\n" or "\r\n".
	// Default: "\n"
	LineTerminator string `yaml:"line_terminator"`
}

// HistoryConfig configures in-memory history sizes. Nothing is
// persisted.
type HistoryConfig struct {
	// InputLines is how many submitted lines the input line remembers.
	// Default: 1000
	InputLines int `yaml:"input_lines"`

	// Scrollback is how many lines each transcript pane retains.
	// Default: 2000
	Scrollback int `yaml:"scrollback"`
}

// DisplayConfig configures the terminal presentation.
type DisplayConfig struct {
	// SecretMask is echoed to the transcript in place of secret input.
	// Default: *****
	SecretMask string `yaml:"secret_mask"`

	// Color selects the color profile: auto, ascii, ansi, ansi256,
	// truecolor.
	// Default: auto
	Color string `yaml:"color"`

	// Welcome is printed to the main transcript at startup. Empty
	// prints nothing.
	Welcome string `yaml:"welcome"`
}

// ScriptConfig configures startup automation.
type ScriptConfig struct {
	// Startup is a Lua script run once the client starts.
	Startup string `yaml:"startup"`

	// Layout is a JSONC layout file applied at startup.
	Layout string `yaml:"layout"`

	// Watch re-runs Startup whenever the file changes.
	Watch bool `yaml:"watch"`
}

// LogConfig configures diagnostic logging. The terminal belongs to the
// interface, so logs go to a file or nowhere.
type LogConfig struct {
	// File receives JSON log records. Empty disables file logging.
	File string `yaml:"file"`

	// Level is debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level"`
}

// DefaultWelcome is the default startup banner.
const DefaultWelcome = "Welcome to Draugr! (press 'Alt+q' to quit)"

// ColorProfiles lists the accepted Display.Color values.
var ColorProfiles = []string{"auto", "ascii", "ansi", "ansi256", "truecolor"}

// LogLevels lists the accepted Log.Level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Default returns the default configuration. Every field has a usable
// value, so a missing config file is not an error.
func Default() *Config {
	return &Config{
		Connection: ConnectionConfig{
			Port:           4000,
			DialTimeout:    "10s",
			ReadTimeout:    "20ms",
			LineTerminator: "\n",
		},
		History: HistoryConfig{
			InputLines: 1000,
			Scrollback: 2000,
		},
		Display: DisplayConfig{
			SecretMask: "*****",
			Color:      "auto",
			Welcome:    DefaultWelcome,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the file named by DRAUGR_CONFIG. When
// the variable is unset the defaults are returned.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, applies the
// selected world, and expands variables in path fields. The result is
// not validated; call Validate after applying command-line overrides.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	if err := cfg.applyWorld(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	absolute, err := filepath.Abs(path)
	if err != nil {
		absolute = path
	}
	cfg.expandVariables(filepath.Dir(absolute))

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyWorld applies the overrides of the selected world.
func (c *Config) applyWorld() error {
	if c.World == "" {
		return nil
	}
	world, ok := c.Worlds[c.World]
	if !ok {
		return fmt.Errorf("world %q is not defined under worlds", c.World)
	}
	if world.Host != "" {
		c.Connection.Host = world.Host
	}
	if world.Port != 0 {
		c.Connection.Port = world.Port
	}
	if world.Script != "" {
		c.Script.Startup = world.Script
	}
	if world.Layout != "" {
		c.Script.Layout = world.Layout
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables(configDirectory string) {
	vars := map[string]string{
		"DRAUGR_CONFIG_DIR": configDirectory,
		"HOME":              os.Getenv("HOME"),
	}

	c.Script.Startup = expandVars(c.Script.Startup, vars)
	c.Script.Layout = expandVars(c.Script.Layout, vars)
	c.Log.File = expandVars(c.Log.File, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// DialTimeout returns Connection.DialTimeout parsed. Call Validate
// first; an unparseable value yields zero.
func (c *Config) DialTimeout() time.Duration {
	duration, _ := time.ParseDuration(c.Connection.DialTimeout)
	return duration
}

// ReadTimeout returns Connection.ReadTimeout parsed. Call Validate
// first; an unparseable value yields zero.
func (c *Config) ReadTimeout() time.Duration {
	duration, _ := time.ParseDuration(c.Connection.ReadTimeout)
	return duration
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Connection.Port < 1 || c.Connection.Port > 65535 {
		errs = append(errs, fmt.Errorf("connection.port must be between 1 and 65535, got %d", c.Connection.Port))
	}
	for _, field := range []struct{ name, value string }{
		{"connection.dial_timeout", c.Connection.DialTimeout},
		{"connection.read_timeout", c.Connection.ReadTimeout},
	} {
		duration, err := time.ParseDuration(field.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field.name, err))
		} else if duration <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", field.name, field.value))
		}
	}
	if c.Connection.LineTerminator != "\n" && c.Connection.LineTerminator != "\r\n" {
		errs = append(errs, fmt.Errorf("connection.line_terminator must be \"\\n\" or \"\\r\\n\", got %q", c.Connection.LineTerminator))
	}

	if c.History.InputLines < 1 {
		errs = append(errs, fmt.Errorf("history.input_lines must be positive, got %d", c.History.InputLines))
	}
	if c.History.Scrollback < 1 {
		errs = append(errs, fmt.Errorf("history.scrollback must be positive, got %d", c.History.Scrollback))
	}

	if !slices.Contains(ColorProfiles, c.Display.Color) {
		errs = append(errs, fmt.Errorf("display.color must be one of: %v", ColorProfiles))
	}
	if !slices.Contains(LogLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", LogLevels))
	}

	if c.Script.Watch && c.Script.Startup == "" {
		errs = append(errs, errors.New("script.watch requires script.startup"))
	}

	return errors.Join(errs...)
}
