/*
PURPOSE:
  Defines the 'ask' subcommand.
  Sends questions given on the command line and prints the parsed results.

REQUIREMENTS:
  User-specified:
  - Quick connectivity and response-format check before a full batch.

  Implementation-discovered:
  - Must not touch the run state files.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Processor.ProcessQuestions()

ERROR HANDLING:
  - Validation errors are prefixed with "validation error:".
  - Results are printed even when some failed; the command then exits non-zero.

USAGE:
  ai-tester ask https://chat.example.com "What is X?" "What is Y?"

RELATED FILES:
  - internal/engine/processor.go
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/ai-tester/internal/engine"
	"github.com/daryltucker/ai-tester/internal/output"
)

var askCmd = &cobra.Command{
	Use:   "ask <base_url> <question>...",
	Short: "Ask one or more questions without recording run state",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		proc, err := engine.NewProcessor(engine.NewExecutor(cfg, nil), args[0], endpointFlag, debugMode)
		if err != nil {
			return fmt.Errorf("validation error: %w", err)
		}

		questions, err := engine.ValidateQuestions(toAny(args[1:]))
		if err != nil {
			return fmt.Errorf("validation error: %w", err)
		}

		results, err := proc.ProcessQuestions(cmd.Context(), questions)
		if werr := output.WriteJSON(cmd.OutOrStdout(), results); werr != nil {
			return werr
		}
		if err != nil {
			return err
		}

		failed := 0
		for _, r := range results {
			if r.Failed() {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d questions failed", failed, len(results))
		}
		return nil
	},
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&debugMode, "debug", false, "Include citation contents in the result")
	askCmd.Flags().StringVar(&endpointFlag, "endpoint", "", "Endpoint path appended to the base URL (default from config)")
}
