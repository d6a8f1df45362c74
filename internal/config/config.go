package config

import (
	"fmt"
	"os"

	"labeling-service/internal/llm"

	"gopkg.in/yaml.v3"
)

// Config holds labeling service configuration
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	// Suggestion providers, tried in order
	Providers []llm.ProviderConfig `yaml:"providers"`

	// Single provider shorthand, used when providers is empty
	Gemini struct {
		APIKey     string `yaml:"api_key"`
		ModelName  string `yaml:"model_name"`
		MaxRetries int    `yaml:"max_retries"`
	} `yaml:"gemini"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	MaxFailuresBeforeSwitch int `yaml:"max_failures_before_switch"`
}

// LoadConfig loads configuration from YAML file
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	// Set defaults
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Database.Path == "" {
		config.Database.Path = "./data/labels.db"
	}

	if config.MaxFailuresBeforeSwitch == 0 {
		config.MaxFailuresBeforeSwitch = 3
	}

	// Expand environment variables in provider API keys
	for i := range config.Providers {
		config.Providers[i].APIKey = os.ExpandEnv(config.Providers[i].APIKey)
	}
	config.Gemini.APIKey = os.ExpandEnv(config.Gemini.APIKey)

	return config, nil
}

// SuggestionProviders returns the configured providers, falling back to the
// gemini shorthand. Providers without an API key are left out.
func (c *Config) SuggestionProviders() []llm.ProviderConfig {
	providers := c.Providers
	if len(providers) == 0 && c.Gemini.APIKey != "" {
		providers = []llm.ProviderConfig{{
			Type:       llm.ProviderGemini,
			APIKey:     c.Gemini.APIKey,
			ModelName:  c.Gemini.ModelName,
			MaxRetries: c.Gemini.MaxRetries,
		}}
	}

	enabled := make([]llm.ProviderConfig, 0, len(providers))
	for _, p := range providers {
		if p.APIKey == "" || p.APIKey == "YOUR_API_KEY_HERE" {
			continue
		}
		enabled = append(enabled, p)
	}
	return enabled
}
