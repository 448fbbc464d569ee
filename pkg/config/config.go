// Package config loads deliberate.yaml into typed, validated,
// immutable registries at process startup, the way this corpus's own
// YAML config loader builds its agent/chain registries.
package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// ModelCatalogEntry seeds a built-in, organization-wide model without
// requiring every user to re-enter its endpoint.
type ModelCatalogEntry struct {
	ModelName   string `yaml:"modelName"`
	DisplayName string `yaml:"displayName"`
	Endpoint    string `yaml:"endpoint"`
	Provider    string `yaml:"provider"`
}

// OrchestrationConfig mirrors spec ยง6's orchestration.* knobs.
type OrchestrationConfig struct {
	DefaultMaxIterations   int  `yaml:"defaultMaxIterations"`
	DefaultStopMarker      string `yaml:"defaultStopMarker"`
	StopOnReviewerApproved bool `yaml:"stopOnReviewerApproved"`
	MaxPromptChars         int  `yaml:"maxPromptChars"`
	MaxDraftChars          int  `yaml:"maxDraftChars"`
	ContextTurnsToSend     int  `yaml:"contextTurnsToSend"`
}

// PersistenceConfig mirrors spec ยง6's persistence.* knobs.
type PersistenceConfig struct {
	Enabled          bool   `yaml:"enabled"`
	ConnectionString string `yaml:"connectionString"`
}

// RateLimitConfig mirrors spec ยง6's rateLimit.* knobs.
type RateLimitConfig struct {
	PermitLimit   int `yaml:"permitLimit"`
	WindowSeconds int `yaml:"windowSeconds"`
}

// Config is the fully loaded, merged, validated configuration.
type Config struct {
	DefaultCreatorModel  string              `yaml:"defaultCreatorModel"`
	DefaultReviewerModel string              `yaml:"defaultReviewerModel"`
	RequestTimeoutSeconds int                `yaml:"requestTimeoutSeconds"`
	MaxRetries           int                 `yaml:"maxRetries"`
	Models               []ModelCatalogEntry `yaml:"models"`
	Orchestration        OrchestrationConfig `yaml:"orchestration"`
	Persistence          PersistenceConfig   `yaml:"persistence"`
	RateLimit            RateLimitConfig     `yaml:"rateLimit"`
}

func defaults() Config {
	return Config{
		RequestTimeoutSeconds: 60,
		MaxRetries:            3,
		Orchestration: OrchestrationConfig{
			DefaultMaxIterations:   5,
			DefaultStopMarker:      "FINAL:",
			StopOnReviewerApproved: true,
			MaxPromptChars:         16000,
			MaxDraftChars:          32000,
			ContextTurnsToSend:     8,
		},
		RateLimit: RateLimitConfig{PermitLimit: 60, WindowSeconds: 60},
	}
}

// Load reads path (expanding ${VAR} environment references the way
// the rest of this corpus's YAML loader does) and merges the result
// over the built-in defaults. A missing file is not an error: the
// defaults alone are a valid configuration for local development.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return &cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(raw))

	var loaded Config
	if err := yaml.Unmarshal([]byte(expanded), &loaded); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := mergo.Merge(&cfg, loaded, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("config: merge %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that would misbehave silently.
func (c *Config) Validate() error {
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("config: requestTimeoutSeconds must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config: maxRetries must be >= 0")
	}
	if c.Orchestration.DefaultMaxIterations <= 0 {
		return fmt.Errorf("config: orchestration.defaultMaxIterations must be positive")
	}
	if c.Orchestration.ContextTurnsToSend <= 0 {
		return fmt.Errorf("config: orchestration.contextTurnsToSend must be positive")
	}
	return nil
}
