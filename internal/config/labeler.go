package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"labeling-service/internal/apiclient"
	"labeling-service/internal/kvstore"
	"labeling-service/internal/models"

	"gopkg.in/yaml.v3"
)

// Work sources for the labeling client.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// Environment variables that override the labeler config file.
const (
	EnvAPIURL       = "LABELER_API_URL"
	EnvAPITimeoutMS = "LABELER_API_TIMEOUT_MS"
	EnvDebug        = "LABELER_DEBUG"
)

// LabelerConfig holds labeling client configuration
type LabelerConfig struct {
	API struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		Debug   bool          `yaml:"debug"`
	} `yaml:"api"`

	Storage kvstore.Config `yaml:"storage"`

	Export struct {
		Dir  string `yaml:"dir"`
		Auto bool   `yaml:"auto"`
	} `yaml:"export"`

	// Source is "local" (queue in storage) or "remote" (labeling service).
	Source string `yaml:"source"`
	// Forward sends local labeling decisions to the service before they
	// are committed locally.
	Forward bool `yaml:"forward"`
}

// LoadLabelerConfig reads the labeler config. A missing file is not an
// error: defaults and environment overrides still apply.
func LoadLabelerConfig(configPath string) (*LabelerConfig, error) {
	config := &LabelerConfig{}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to decode config file: %w", err)
			}
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *LabelerConfig) applyEnv() error {
	if v, ok := os.LookupEnv(EnvAPIURL); ok && v != "" {
		c.API.BaseURL = v
	}

	if v, ok := os.LookupEnv(EnvAPITimeoutMS); ok && v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return fmt.Errorf("%w: %s must be a positive number of milliseconds, got %q", models.ErrValidation, EnvAPITimeoutMS, v)
		}
		c.API.Timeout = time.Duration(ms) * time.Millisecond
	}

	if v, ok := os.LookupEnv(EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s must be a boolean, got %q", models.ErrValidation, EnvDebug, v)
		}
		c.API.Debug = debug
	}

	c.Storage.URL = os.ExpandEnv(c.Storage.URL)

	return nil
}

func (c *LabelerConfig) setDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8080"
	}

	if c.API.Timeout == 0 {
		c.API.Timeout = apiclient.DefaultTimeout
	}

	if c.Storage.Type == "" {
		c.Storage.Type = kvstore.TypeSQLite
	}

	if c.Storage.Type == kvstore.TypeSQLite && c.Storage.Path == "" {
		c.Storage.Path = "./data/queue.db"
	}

	if c.Export.Dir == "" {
		c.Export.Dir = "."
	}

	if c.Source == "" {
		c.Source = SourceLocal
	}
	c.Source = strings.ToLower(c.Source)
}

// Validate checks values that defaults cannot fix.
func (c *LabelerConfig) Validate() error {
	if c.Source != SourceLocal && c.Source != SourceRemote {
		return fmt.Errorf("%w: source must be %q or %q, got %q", models.ErrValidation, SourceLocal, SourceRemote, c.Source)
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("%w: api.timeout must be positive", models.ErrValidation)
	}

	return nil
}

// APIClient returns the remote client settings.
func (c *LabelerConfig) APIClient() apiclient.Config {
	return apiclient.Config{
		BaseURL: c.API.BaseURL,
		Timeout: c.API.Timeout,
		Debug:   c.API.Debug,
	}
}
