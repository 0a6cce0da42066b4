/*
PURPOSE:
  Defines the root Cobra command for the AI Tester CLI.
  Handles global flags and configuration loading.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Config is loaded once per command: file, then .env, then AI_TESTER_*
    environment, then flags. The result is never mutated afterwards.
  - Ctrl-C cancels the running batch through the command context.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/ai-tester/main.go
  - Calls: Child commands (run, ask, state)

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root is usually empty or helps.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to init().

RELATED FILES:
  - cmd/ai-tester/main.go
  - internal/config/config.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daryltucker/ai-tester/internal/config"
	"github.com/daryltucker/ai-tester/internal/output"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile  string
	envFile  string
	logLevel string

	rootCmd = &cobra.Command{
		Use:   "ai-tester",
		Short: "Ask a chat backend a batch of questions and collect answers with citations",
		Long: `AI Tester sends natural-language questions to a chat-style HTTP backend,
parses its streaming JSON response into answers and citations, and keeps
track of progress so an interrupted batch can be resumed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ai_tester.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "additional .env file to load before ./.env")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR (overrides config)")
}

// loadConfig builds the immutable configuration for a command.
func loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, err
	}

	cfg, err = config.ApplyEnv(cfg, os.LookupEnv)
	if err != nil {
		return config.Config{}, err
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := output.SetLevel(cfg.LogLevel); err != nil {
		return config.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
