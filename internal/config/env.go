/*
PURPOSE:
  Environment overrides for the loaded configuration, including .env files.

REQUIREMENTS:
  User-specified:
  - AI_TESTER_* variables override file settings.

  Implementation-discovered:
  - Variables already set in the process win over .env files.
  - lookup is injected so tests never touch the real environment.

ERROR HANDLING:
  - An unparsable value is a load error naming the variable.

RELATED FILES:
  - internal/config/config.go
  - internal/cli/root.go
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/daryltucker/ai-tester/internal/output"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvTimeout            = "AI_TESTER_TIMEOUT"     // integer seconds
	EnvMaxRetries         = "AI_TESTER_MAX_RETRIES" // integer
	EnvRetryDelay         = "AI_TESTER_RETRY_DELAY" // float seconds
	EnvLogLevel           = "AI_TESTER_LOG_LEVEL"
	EnvEndpoint           = "AI_TESTER_ENDPOINT"
	EnvExponentialBackoff = "AI_TESTER_EXPONENTIAL_BACKOFF"
	EnvBackoffMultiplier  = "AI_TESTER_BACKOFF_MULTIPLIER"
)

// LoadDotEnv loads variables from .env files into the process environment.
//
// Explicit paths are tried first, then .env in the current directory.
// Missing files are ignored. Variables that are already set are NOT
// overwritten, so the real environment always wins.
func LoadDotEnv(paths ...string) error {
	for _, path := range append(paths, ".env") {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		output.Logger.Debug("Loaded environment from file", "path", path)
	}
	return nil
}

// ApplyEnv returns a copy of cfg with AI_TESTER_* overrides applied.
// lookup is usually os.LookupEnv.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	if v, ok := lookup(EnvTimeout); ok {
		secs, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		cfg.RequestTimeout = time.Duration(secs) * time.Second
	}
	if v, ok := lookup(EnvMaxRetries); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvMaxRetries, v, err)
		}
		cfg.MaxRetries = n
	}
	if v, ok := lookup(EnvRetryDelay); ok {
		secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvRetryDelay, v, err)
		}
		cfg.RetryDelay = time.Duration(secs * float64(time.Second))
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvEndpoint); ok {
		cfg.DefaultEndpoint = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvExponentialBackoff); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvExponentialBackoff, v, err)
		}
		cfg.ExponentialBackoff = b
	}
	if v, ok := lookup(EnvBackoffMultiplier); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvBackoffMultiplier, v, err)
		}
		cfg.BackoffMultiplier = f
	}
	return cfg, nil
}
