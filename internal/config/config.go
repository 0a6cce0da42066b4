/*
PURPOSE:
  Defines the configuration structure and loading logic for AI Tester.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Allow configuration of request timeout, retry count and backoff policy.
  - Allow configuration of the default endpoint and the state file paths.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Needs to support Environment variables overrides (AI_TESTER_...).
  - The loaded value is immutable; components receive a copy.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine, internal/state
  - Dependencies: gopkg.in/yaml.v3, github.com/joho/godotenv (see env.go)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing default config files fall back to defaults.
  - Validate() rejects values the retry loop cannot work with.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Durations are time.Duration in YAML ("30s"); env overrides use seconds.

USAGE:
  cfg, err := config.Load("ai_tester.yaml")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and update DefaultConfig().

RELATED FILES:
  - internal/config/env.go
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for AI Tester.
type Config struct {
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	MaxRetries         int           `yaml:"max_retries"`
	RetryDelay         time.Duration `yaml:"retry_delay"`
	ExponentialBackoff bool          `yaml:"exponential_backoff"`
	BackoffMultiplier  float64       `yaml:"backoff_multiplier"`
	DefaultEndpoint    string        `yaml:"default_endpoint"`
	LogLevel           string        `yaml:"log_level"`

	QuestionsFile      string `yaml:"questions_file"`
	SuccessLogFile     string `yaml:"success_log_file"`
	ErrorLogFile       string `yaml:"error_log_file"`
	SuccessLogMetaFile string `yaml:"success_log_meta_file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		RequestTimeout:     30 * time.Second,
		MaxRetries:         3,
		RetryDelay:         2 * time.Second,
		ExponentialBackoff: true,
		BackoffMultiplier:  1.5,
		DefaultEndpoint:    "/conversation",
		LogLevel:           "INFO",
		QuestionsFile:      "./questions.yml",
		SuccessLogFile:     ".success_log.jsonl",
		ErrorLogFile:       ".error_log.jsonl",
		SuccessLogMetaFile: ".success_log.meta.json",
	}
}

// DefaultFiles are searched in order when no config path is given.
var DefaultFiles = []string{"ai_tester.yaml", "ai-tester.yaml", "ai_tester.yml"}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches DefaultFiles in order.
// If no file found, returns default config.
// Environment overrides are NOT applied here; see ApplyEnv.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		found := false
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the configuration can drive the request executor.
func (c Config) Validate() error {
	var errs []error
	if c.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("retry_delay cannot be negative, got %s", c.RetryDelay))
	}
	if c.BackoffMultiplier < 1 {
		errs = append(errs, fmt.Errorf("backoff_multiplier must be >= 1, got %g", c.BackoffMultiplier))
	}
	if !strings.HasPrefix(c.DefaultEndpoint, "/") {
		errs = append(errs, fmt.Errorf("default_endpoint must start with '/', got %q", c.DefaultEndpoint))
	}
	if c.SuccessLogFile == "" || c.ErrorLogFile == "" || c.SuccessLogMetaFile == "" {
		errs = append(errs, errors.New("state file paths cannot be empty"))
	}
	return errors.Join(errs...)
}
