// Package config loads and saves the wpstack tool configuration.
//
// The configuration lives at ~/.config/wpstack/config.yaml and holds host
// level settings: the parent directory for provisioned sites, the certbot
// live directory, and the renewal schedule. A missing file yields defaults.
// Per-site parameters (domain, credentials) are never persisted here.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ksyq12/wpstack/internal/errors"
)

// Schedule describes the weekly renewal slot registered in cron.
type Schedule struct {
	Minute    int `yaml:"minute"`
	Hour      int `yaml:"hour"`
	DayOfWeek int `yaml:"day_of_week"` // 0=Sunday .. 6=Saturday
}

// Config represents the tool configuration.
type Config struct {
	SitesDir        string            `yaml:"sites_dir"`        // parent directory for site environments
	LetsEncryptDir  string            `yaml:"letsencrypt_dir"`  // certbot live certificate store
	RenewalSchedule Schedule          `yaml:"renewal_schedule"` // weekly renewal cron slot
	Sites           map[string]string `yaml:"sites"`            // site name -> domain
}

const configDir = ".config/wpstack"
const configFile = "config.yaml"

// New creates a Config with default values.
func New() *Config {
	return &Config{
		SitesDir:       "/opt/wpstack",
		LetsEncryptDir: "/etc/letsencrypt/live",
		RenewalSchedule: Schedule{
			Minute:    0,
			Hour:      3,
			DayOfWeek: 1, // Monday
		},
		Sites: make(map[string]string),
	}
}

// ConfigDir returns the config directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// ConfigPath returns the config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config from disk. A missing file is not an error; defaults
// are returned.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, "failed to read config", err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, "failed to parse config", err)
	}

	if cfg.SitesDir == "" || !filepath.IsAbs(cfg.SitesDir) {
		return nil, errors.ErrConfigInvalid
	}
	if cfg.Sites == nil {
		cfg.Sites = make(map[string]string)
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "failed to create config directory", err)
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "failed to write config", err)
	}

	return nil
}

// CronSpec renders the schedule as the first five crontab fields.
func (s Schedule) CronSpec() string {
	return fmt.Sprintf("%d %d * * %d", s.Minute, s.Hour, s.DayOfWeek)
}
