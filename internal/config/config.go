package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// APIKeyEnvVar is the environment variable carrying the OpenRouter key.
// Its absence switches the completion client to mock mode.
const APIKeyEnvVar = "OPENROUTER_API_KEY"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:       "openai/gpt-oss-20b:free",
			Temperature: 0.7,
			BaseURL:     "https://openrouter.ai/api/v1",
			Referer:     "http://localhost",
			Title:       "Careteam Simulation",
			Timeout:     60 * time.Second,
		},
		DataDir:            "data",
		MemberName:         "Rohan",
		MaxAgents:          2,
		TotalWeeks:         34,
		AdherenceThreshold: 0.6,
		Server: ServerConfig{
			Port: 8833,
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CARETEAM_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: CARETEAM_LLM_MODEL -> llm.model, etc.
	if err := k.Load(env.Provider("CARETEAM_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CARETEAM_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be in [0, 2]")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.MaxAgents < 1 {
		return fmt.Errorf("max_agents must be at least 1")
	}
	if c.TotalWeeks < 1 {
		return fmt.Errorf("total_weeks must be at least 1")
	}
	if c.AdherenceThreshold < 0 || c.AdherenceThreshold > 1 {
		return fmt.Errorf("adherence_threshold must be in [0, 1]")
	}
	return nil
}

// MockMode reports whether the completion client should run without network
// calls: either explicitly configured, or no API key is present.
func (c *Config) MockMode() bool {
	return c.LLM.Mock || os.Getenv(APIKeyEnvVar) == ""
}
