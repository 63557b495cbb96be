// ABOUTME: Configuration for the Charm KV connection
// ABOUTME: Persists server host, auto-sync and staleness settings as JSON under the XDG data dir

package charm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/charm/kv"
)

const (
	// DefaultCharmHost is the self-hosted 2389 research server.
	DefaultCharmHost = "charm.2389.dev"

	// AppName names the charm KV database and the local data directory.
	AppName = "dealflow"

	ConfigFileName = "charm-config.json"
)

// Config holds charm connection settings.
type Config struct {
	Host string `json:"host,omitempty"`

	// AutoSync pushes after every write and pulls on open
	AutoSync bool `json:"auto_sync"`

	// StaleThreshold is how old the last pull may be before reads trigger a sync
	StaleThreshold time.Duration `json:"stale_threshold,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Host:           DefaultCharmHost,
		AutoSync:       true,
		StaleThreshold: kv.DefaultStaleThreshold,
	}
}

// ConfigPath is $XDG_DATA_HOME/dealflow/charm-config.json.
func ConfigPath() string {
	return filepath.Join(xdg.DataHome, AppName, ConfigFileName)
}

// LoadConfig loads the config from ConfigPath.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(ConfigPath())
}

// LoadConfigFrom reads path. A missing or unreadable JSON file yields defaults;
// only I/O errors other than not-exist are returned.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read charm config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), nil //nolint:nilerr // a corrupt file falls back to defaults
	}

	if cfg.Host == "" {
		cfg.Host = DefaultCharmHost
	}
	if cfg.StaleThreshold <= 0 {
		cfg.StaleThreshold = kv.DefaultStaleThreshold
	}
	return &cfg, nil
}

// Save persists the config to ConfigPath.
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// SetAutoSync toggles auto-sync and saves.
func (c *Config) SetAutoSync(enabled bool) error {
	c.AutoSync = enabled
	return c.Save()
}
