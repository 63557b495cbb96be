// ABOUTME: Application configuration loaded from YAML with .env and environment overrides
// ABOUTME: Holds store selection, database path, rot thresholds, forecast horizon, logging and web settings
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/harperreed/dealflow/logging"
	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/pipeline"
)

const (
	AppName        = "dealflow"
	ConfigFileName = "config.yaml"

	StoreSQLite = "sqlite"
	StoreCharm  = "charm"
)

type Config struct {
	DBPath          string         `yaml:"db_path"`
	Store           string         `yaml:"store"`
	ForecastHorizon int            `yaml:"forecast_horizon"`
	RotThresholds   map[string]int `yaml:"rot_thresholds,omitempty"`
	Log             LogConfig      `yaml:"log"`
	Web             WebConfig      `yaml:"web"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		DBPath:          DefaultDBPath(),
		Store:           StoreSQLite,
		ForecastHorizon: pipeline.HorizonQuarter,
		Log:             LogConfig{Level: "info", Encoding: "console"},
		Web:             WebConfig{Port: 10666},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/dealflow/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// DefaultDBPath is $XDG_DATA_HOME/dealflow/dealflow.db.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, AppName, AppName+".db")
}

// Load reads path (DefaultPath when empty), then applies .env and DEALFLOW_* overrides.
// A missing file yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	_ = godotenv.Load(".env")
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.DBPath = getString("DEALFLOW_DB_PATH", c.DBPath)
	c.Store = getString("DEALFLOW_STORE", c.Store)
	c.Log.Level = getString("DEALFLOW_LOG_LEVEL", c.Log.Level)
	c.Log.Encoding = getString("DEALFLOW_LOG_ENCODING", c.Log.Encoding)
	c.Web.Port = getInt("DEALFLOW_WEB_PORT", c.Web.Port)

	if v := os.Getenv("DEALFLOW_FORECAST_HORIZON"); v != "" {
		if n, err := pipeline.ParseHorizon(v); err == nil {
			c.ForecastHorizon = n
		}
	}
}

// Validate rejects settings the engine cannot use.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreCharm:
	default:
		return fmt.Errorf("invalid store: %s (valid: sqlite, charm)", c.Store)
	}

	if !pipeline.ValidHorizon(c.ForecastHorizon) {
		return fmt.Errorf("invalid forecast_horizon: %d (valid: 3, 6, 12)", c.ForecastHorizon)
	}

	for name, days := range c.RotThresholds {
		stage, err := models.ParseStage(name)
		if err != nil {
			return fmt.Errorf("invalid rot_thresholds: %w", err)
		}
		if stage == models.StageClosed {
			return fmt.Errorf("invalid rot_thresholds: closed deals never rot")
		}
		if days < 0 {
			return fmt.Errorf("invalid rot_thresholds: %s must not be negative", name)
		}
	}

	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return fmt.Errorf("invalid web.port: %d", c.Web.Port)
	}
	return nil
}

// Thresholds merges configured rot thresholds over the defaults.
func (c *Config) Thresholds() pipeline.Thresholds {
	t := pipeline.DefaultThresholds()
	for name, days := range c.RotThresholds {
		stage, err := models.ParseStage(name)
		if err != nil || days < 0 {
			continue
		}
		t[stage] = days
	}
	return t
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Encoding: c.Log.Encoding}
}

// Save writes the config as YAML to path (DefaultPath when empty).
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func getString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
