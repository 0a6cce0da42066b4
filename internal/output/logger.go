/*
PURPOSE:
  Provides a structured logger for AI Tester.
  Wraps slog for consistent output.

REQUIREMENTS:
  User-specified:
  - "Sane" CLI output. Not spammy.
  - Log level configurable (DEBUG, INFO, WARN, ERROR).

  Implementation-discovered:
  - Logs go to stderr so json/raw results on stdout stay pipeable.

ARCHITECTURE INTEGRATION:
  - Used everywhere.

ERROR HANDLING:
  - SetLevel rejects unknown level names.

IMPLEMENTATION RULES:
  - Use `log/slog` (Go 1.21+).

USAGE:
  output.Logger.Info("message", "key", "value")

SELF-HEALING INSTRUCTIONS:
  - Ensure Go 1.21+ is used.

RELATED FILES:
  - All.

MAINTENANCE:
  - None.
*/

package output

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

var (
	Logger *slog.Logger
	level  = new(slog.LevelVar)
)

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// SetLogger allows overriding the default logger (e.g. for testing or config changes)
func SetLogger(l *slog.Logger) {
	Logger = l
}

// SetLevel changes the level of the default logger.
// Accepts DEBUG, INFO, WARN/WARNING and ERROR, case-insensitively.
func SetLevel(name string) error {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		level.Set(slog.LevelDebug)
	case "", "INFO":
		level.Set(slog.LevelInfo)
	case "WARN", "WARNING":
		level.Set(slog.LevelWarn)
	case "ERROR", "CRITICAL":
		level.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level %q", name)
	}
	return nil
}

// Truncate shortens s to at most n runes for log lines.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
