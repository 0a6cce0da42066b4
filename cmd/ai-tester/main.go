/*
PURPOSE:
  Binary entry point for ai-tester, the question batch runner.
  Hands control to the cobra command tree in internal/cli.

REQUIREMENTS:
  User-specified:
  - One binary exposing the run, ask and state commands.
  - Non-zero exit status when a command fails.

  Implementation-discovered:
  - Signal handling (SIGINT/SIGTERM) lives in cli.Execute so an interrupted
    batch stops between questions and keeps its run state.

ARCHITECTURE INTEGRATION:
  - Calls: internal/cli.Execute()

ERROR HANDLING:
  - Commands silence cobra's own error printing; the single "Error:" line
    on stderr comes from here. Exit code 1.

IMPLEMENTATION RULES:
  - Keep main() minimal. Wiring belongs in internal/cli.

USAGE:
  go build -o ai-tester ./cmd/ai-tester
  ./ai-tester run https://chat.example.com --questions ./questions.yml

RELATED FILES:
  - internal/cli/root.go
*/

package main

import (
	"fmt"
	"os"

	"github.com/daryltucker/ai-tester/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
