package config

import "time"

// Config is the top-level careteam configuration, corresponding to .careteam.yml.
type Config struct {
	// LLM holds completion-client settings.
	LLM LLMConfig `yaml:"llm" koanf:"llm"`

	// DataDir is where the SQLite database and exports live.
	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	// MemberName is the display name of the simulated member.
	MemberName string `yaml:"member_name" koanf:"member_name"`

	// MaxAgents caps how many specialists a routing decision may involve.
	MaxAgents int `yaml:"max_agents" koanf:"max_agents"`

	// TotalWeeks is the length of the simulated journey.
	TotalWeeks int `yaml:"total_weeks" koanf:"total_weeks"`

	// AdherenceThreshold is the weekly adherence score below which a
	// micro-replan is emitted.
	AdherenceThreshold float64 `yaml:"adherence_threshold" koanf:"adherence_threshold"`

	// Seed seeds the simulation's random source. Zero means time-seeded.
	Seed int64 `yaml:"seed" koanf:"seed"`

	Server ServerConfig `yaml:"server" koanf:"server"`
}

// LLMConfig configures the OpenRouter-compatible completion client.
type LLMConfig struct {
	Model       string        `yaml:"model" koanf:"model"`
	Temperature float64       `yaml:"temperature" koanf:"temperature"`
	BaseURL     string        `yaml:"base_url" koanf:"base_url"`
	Referer     string        `yaml:"referer" koanf:"referer"`
	Title       string        `yaml:"title" koanf:"title"`
	Timeout     time.Duration `yaml:"timeout" koanf:"timeout"`

	// Mock forces deterministic canned responses; it is also implied when
	// no API key is present, so the whole system runs without credentials.
	Mock bool `yaml:"mock" koanf:"mock"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"` // allow all CORS origins (dev mode)
}
