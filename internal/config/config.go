// Package config loads optional infcat settings from a TOML file.
//
// Lookup order: an explicit path, then $XDG_CONFIG_HOME/infcat/config.toml
// (~/.config/infcat/config.toml when unset). A missing default file is not
// an error; a missing explicit file is.
//
//	os = "10X64"
//	os_attr = "2:6.4"
//	strict = true
//
//	[cache]
//	url = "redis://cache.build.internal:6379/0"
//	ttl = "72h"
//
//	[makecat]
//	command = "C:/Program Files (x86)/Windows Kits/10/bin/x64/makecat.exe"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/infcat/pkg/cache"
	"github.com/matzehuels/infcat/pkg/catalog"
)

// AppName names the config and cache directories.
const AppName = "infcat"

// Config holds file-level defaults. Command-line flags override them.
type Config struct {
	OS               string        `toml:"os"`
	OSAttr           string        `toml:"os_attr"`
	Strict           bool          `toml:"strict"`
	Dedupe           bool          `toml:"dedupe"`
	MaxFiles         int           `toml:"max_files"`
	RequireSignature bool          `toml:"require_signature"`
	Cache            CacheConfig   `toml:"cache"`
	Makecat          MakecatConfig `toml:"makecat"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// CacheConfig selects the resolve cache backend.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"` // file cache directory
	URL      string `toml:"url"` // redis:// URL; wins over Dir
	TTL      string `toml:"ttl"` // Go duration, e.g. "72h"
}

// MakecatConfig configures the external catalog tool.
type MakecatConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OS:     catalog.DefaultOS,
		OSAttr: catalog.DefaultOSAttr,
		// Matches SetupAPI's INF_STYLE_WIN4 open.
		RequireSignature: true,
		Makecat: MakecatConfig{
			Command: catalog.DefaultCommand,
			Args:    []string{"-v"},
		},
	}
}

// Dir returns $XDG_CONFIG_HOME/infcat, falling back to ~/.config/infcat.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Load reads path, or the default location when path is empty, on top of
// Default().
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			return Default(), nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.MaxFiles < 0 {
		return fmt.Errorf("max_files must not be negative")
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	return nil
}

// CacheTTL returns the configured cache TTL, or cache.TTLResolve.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return cache.TTLResolve, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, fmt.Errorf("cache.ttl: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("cache.ttl must not be negative")
	}
	return d, nil
}
