package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures optional tool-level settings for a project, read from
// amaris.yaml at the project root.
type Config struct {
	Version          int            `yaml:"version"`
	ProvidersDir     string         `yaml:"providers_dir,omitempty"`
	ConfigsDir       string         `yaml:"configs_dir,omitempty"`
	PackageManager   string         `yaml:"package_manager,omitempty"`
	OverwriteScripts *bool          `yaml:"overwrite_scripts,omitempty"`
	Timeouts         TimeoutsConfig `yaml:"timeouts"`
}

// TimeoutsConfig bounds external calls made during apply and remove.
type TimeoutsConfig struct {
	InstallSec int `yaml:"install_s"`
	FetchSec   int `yaml:"fetch_s"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version:        1,
		PackageManager: "bun",
		Timeouts: TimeoutsConfig{
			InstallSec: 600,
			FetchSec:   60,
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures nested fields fall back to sensible defaults when the
// YAML omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.PackageManager == "" {
		c.PackageManager = defaults.PackageManager
	}
	if c.Timeouts.InstallSec == 0 {
		c.Timeouts.InstallSec = defaults.Timeouts.InstallSec
	}
	if c.Timeouts.FetchSec == 0 {
		c.Timeouts.FetchSec = defaults.Timeouts.FetchSec
	}
}

// OverwriteScriptsEnabled returns the effective overwrite policy. Scripts are
// never overwritten unless explicitly enabled.
func (c Config) OverwriteScriptsEnabled() bool {
	if c.OverwriteScripts == nil {
		return false
	}
	return *c.OverwriteScripts
}

// InstallTimeout returns the bound for package manager invocations.
func (c Config) InstallTimeout() time.Duration {
	return time.Duration(c.Timeouts.InstallSec) * time.Second
}

// FetchTimeout returns the bound for remote template fetches.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Timeouts.FetchSec) * time.Second
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}
