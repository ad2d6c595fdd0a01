// Package config loads the tool's YAML configuration with environment
// overrides. Everything has a working default; the file is optional.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration.
type Config struct {
	OAuth struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
	} `yaml:"oauth"`

	// CallbackPort is tried first for the login listener; 0 means the
	// standard port with ephemeral fallback.
	CallbackPort int    `yaml:"callback_port"`
	DatabasePath string `yaml:"database_path"`
	APIBaseURL   string `yaml:"api_base_url"`
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "firelens", "config.yaml")
}

// DefaultDatabasePath returns where the credential store lives when the
// config does not say otherwise.
func DefaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "firelens.db"
	}
	return filepath.Join(dir, "firelens", "firelens.db")
}

// Load reads the config at path, falling back to defaults when the file does
// not exist. Environment variables FIRELENS_DB and FIRELENS_API_BASE_URL
// override the file.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No file is fine; defaults apply.
	case err != nil:
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if v := os.Getenv("FIRELENS_DB"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("FIRELENS_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = DefaultDatabasePath()
	}
	return cfg, nil
}
