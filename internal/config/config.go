// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for parley.
//
// Configuration lives in TOML at ~/.parley/config.toml, with sensible
// defaults and PARLEY_* environment variable overrides. Environment
// overrides are applied after file values and before validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete parley configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	UI     UIConfig     `toml:"ui"`
	Agents AgentsConfig `toml:"agents"`
	Log    LogConfig    `toml:"log"`
	Update UpdateConfig `toml:"update"`
}

// ServerConfig selects the server and credentials.
type ServerConfig struct {
	// BaseURL is the API base, e.g. "https://api.parley.chat/api/v1".
	BaseURL string `toml:"base_url"`

	// Token is the bearer access token. Prefer the PARLEY_TOKEN
	// environment variable over storing it in the file.
	Token string `toml:"token"`

	// Scope narrows which slash commands the server returns, e.g. a
	// project or workspace identifier. Empty means the account default.
	Scope string `toml:"scope"`
}

// UIConfig controls presentation.
type UIConfig struct {
	// Theme is "dark", "light", or "auto".
	Theme string `toml:"theme"`

	// MarkdownWidth is the wrap width for rendered assistant messages.
	// Clamped to [40, 200].
	MarkdownWidth int `toml:"markdown_width"`

	// MouseEnabled turns on mouse support in the palette and lists.
	MouseEnabled bool `toml:"mouse_enabled"`
}

// AgentsConfig locates local agent definitions.
type AgentsConfig struct {
	// Dir is the directory of per-agent TOML files; empty means
	// ~/.parley/agents.
	Dir string `toml:"dir"`
}

// LogConfig controls the debug log file.
type LogConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `toml:"level"`

	// Path is the log file location; empty means ~/.parley/parley.log.
	Path string `toml:"path"`
}

// UpdateConfig controls the release check.
type UpdateConfig struct {
	// CheckOnStartup enables the version check and update banner.
	CheckOnStartup bool `toml:"check_on_startup"`
}

// Markdown width bounds.
const (
	minMarkdownWidth = 40
	maxMarkdownWidth = 200
)

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "https://api.parley.chat/api/v1",
		},
		UI: UIConfig{
			Theme:         "auto",
			MarkdownWidth: 80,
			MouseEnabled:  true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Update: UpdateConfig{
			CheckOnStartup: true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the parley configuration directory (~/.parley).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".parley"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ensureSecurePermissions tightens config file permissions to 0600.
// The file can hold an access token.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		if err := os.Chmod(path, 0o600); err != nil {
			return fmt.Errorf("fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads the config file if present, falling back to defaults, then
// applies environment overrides, fills gaps, and validates.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills any missing values from the defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaults.Server.BaseURL
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.MarkdownWidth == 0 {
		c.UI.MarkdownWidth = defaults.UI.MarkdownWidth
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// ApplyEnvOverrides applies PARLEY_* environment variables:
//   - PARLEY_TOKEN: overrides server.token
//   - PARLEY_BASE_URL: overrides server.base_url
//   - PARLEY_SCOPE: overrides server.scope
//   - PARLEY_THEME: overrides ui.theme
//   - PARLEY_LOG_LEVEL: overrides log.level
//   - PARLEY_NO_UPDATE_CHECK: disables update.check_on_startup
func (c *Config) ApplyEnvOverrides() {
	if token := os.Getenv("PARLEY_TOKEN"); token != "" {
		c.Server.Token = token
	}
	if base := os.Getenv("PARLEY_BASE_URL"); base != "" {
		c.Server.BaseURL = base
	}
	if scope := os.Getenv("PARLEY_SCOPE"); scope != "" {
		c.Server.Scope = scope
	}
	if theme := os.Getenv("PARLEY_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if level := os.Getenv("PARLEY_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if v := os.Getenv("PARLEY_NO_UPDATE_CHECK"); v == "1" || strings.EqualFold(v, "true") {
		c.Update.CheckOnStartup = false
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// validThemes are the accepted ui.theme values.
var validThemes = map[string]bool{"dark": true, "light": true, "auto": true}

// validLevels are the accepted log.level values.
var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks the configuration, clamping soft limits and rejecting
// values that cannot be used.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("server.base_url %q is not a valid URL", c.Server.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.base_url scheme %q must be http or https", u.Scheme)
	}

	if !validThemes[c.UI.Theme] {
		return fmt.Errorf("ui.theme %q must be dark, light, or auto", c.UI.Theme)
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("log.level %q must be debug, info, warn, or error", c.Log.Level)
	}

	if c.UI.MarkdownWidth < minMarkdownWidth {
		c.UI.MarkdownWidth = minMarkdownWidth
	}
	if c.UI.MarkdownWidth > maxMarkdownWidth {
		c.UI.MarkdownWidth = maxMarkdownWidth
	}
	return nil
}

// =============================================================================
// RESOLVED PATHS
// =============================================================================

// AgentsDir returns the agents directory, defaulting under the config
// directory.
func (c *Config) AgentsDir() (string, error) {
	if c.Agents.Dir != "" {
		return c.Agents.Dir, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "agents"), nil
}

// LogPath returns the log file location, defaulting under the config
// directory.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "parley.log"), nil
}

// Save writes the configuration to the default path with 0600
// permissions.
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.toml")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}
