package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.RetryDelay)
	assert.True(t, cfg.ExponentialBackoff)
	assert.Equal(t, 1.5, cfg.BackoffMultiplier)
	assert.Equal(t, "/conversation", cfg.DefaultEndpoint)
	assert.Equal(t, "./questions.yml", cfg.QuestionsFile)
	assert.Equal(t, ".success_log.jsonl", cfg.SuccessLogFile)
	assert.Equal(t, ".error_log.jsonl", cfg.ErrorLogFile)
	assert.Equal(t, ".success_log.meta.json", cfg.SuccessLogMetaFile)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := `
max_retries: 5
retry_delay: 500ms
request_timeout: 1m
exponential_backoff: false
default_endpoint: /api/chat
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, time.Minute, cfg.RequestTimeout)
	assert.False(t, cfg.ExponentialBackoff)
	assert.Equal(t, "/api/chat", cfg.DefaultEndpoint)
	assert.Equal(t, 1.5, cfg.BackoffMultiplier, "unset keys keep their defaults")
	assert.Equal(t, ".success_log.jsonl", cfg.SuccessLogFile)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_retries: [oops"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_SearchesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg, "no file means defaults")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ai-tester.yaml"), []byte("max_retries: 7\n"), 0644))
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxRetries)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ai_tester.yaml"), []byte("max_retries: 9\n"), 0644))
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.MaxRetries, "ai_tester.yaml takes precedence")
}

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg, err := ApplyEnv(DefaultConfig(), mapLookup(map[string]string{
		EnvTimeout:            "45",
		EnvMaxRetries:         " 6 ",
		EnvRetryDelay:         "0.25",
		EnvLogLevel:           "DEBUG",
		EnvEndpoint:           "/api/v2/chat",
		EnvExponentialBackoff: "false",
		EnvBackoffMultiplier:  "2",
	}))
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 6, cfg.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "/api/v2/chat", cfg.DefaultEndpoint)
	assert.False(t, cfg.ExponentialBackoff)
	assert.Equal(t, 2.0, cfg.BackoffMultiplier)
}

func TestApplyEnv_Unset(t *testing.T) {
	cfg, err := ApplyEnv(DefaultConfig(), mapLookup(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	tests := map[string]string{
		EnvTimeout:            "thirty",
		EnvMaxRetries:         "3.5",
		EnvRetryDelay:         "soon",
		EnvExponentialBackoff: "maybe",
		EnvBackoffMultiplier:  "x2",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := ApplyEnv(DefaultConfig(), mapLookup(map[string]string{key: value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, "max_retries must be at least 1"},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, "request_timeout must be positive"},
		{"negative delay", func(c *Config) { c.RetryDelay = -time.Second }, "retry_delay cannot be negative"},
		{"shrinking backoff", func(c *Config) { c.BackoffMultiplier = 0.5 }, "backoff_multiplier must be >= 1"},
		{"relative endpoint", func(c *Config) { c.DefaultEndpoint = "conversation" }, "default_endpoint must start with '/'"},
		{"empty state path", func(c *Config) { c.ErrorLogFile = "" }, "state file paths cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	cfg := DefaultConfig()
	cfg.MaxRetries = 0
	cfg.RequestTimeout = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_retries")
	assert.Contains(t, err.Error(), "request_timeout", "all problems are reported together")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	// Register cleanup for both variables, then make sure the loaded one
	// starts out unset.
	t.Setenv(EnvMaxRetries, "")
	require.NoError(t, os.Unsetenv(EnvMaxRetries))
	t.Setenv(EnvTimeout, "99")

	envFile := filepath.Join(dir, "custom.env")
	require.NoError(t, os.WriteFile(envFile, []byte("AI_TESTER_MAX_RETRIES=8\nAI_TESTER_TIMEOUT=5\n"), 0644))

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "8", os.Getenv(EnvMaxRetries))
	assert.Equal(t, "99", os.Getenv(EnvTimeout), "existing variables are not overwritten")

	cfg, err := ApplyEnv(DefaultConfig(), os.LookupEnv)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxRetries)
	assert.Equal(t, 99*time.Second, cfg.RequestTimeout)
}

func TestLoadDotEnv_DefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(EnvEndpoint, "")
	require.NoError(t, os.Unsetenv(EnvEndpoint))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AI_TESTER_ENDPOINT=/from/dotenv\n"), 0644))
	require.NoError(t, LoadDotEnv())
	assert.Equal(t, "/from/dotenv", os.Getenv(EnvEndpoint))
}
