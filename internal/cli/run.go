/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes a resumable question batch and writes the results.

REQUIREMENTS:
  User-specified:
  - Run the questions file against a base URL.
  - Specific flags for output format, output file, debug and endpoint.

  Implementation-discovered:
  - Need to load config first.
  - Results are written even when the run ends with a state error.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Runner.Run()
  - Uses: internal/config, internal/state, internal/output, internal/metrics

ERROR HANDLING:
  - Validation errors are reported as "validation error: ..." before any
    request is sent.
  - Failed questions do not fail the command; see the error log.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Build Runner -> Run -> Output.

USAGE:
  ai-tester run https://chat.example.com --questions questions.yml

SELF-HEALING INSTRUCTIONS:
  - Check flag names match RunOptions fields generally.

RELATED FILES:
  - internal/cli/root.go
  - internal/engine/runner.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/ai-tester/internal/engine"
	"github.com/daryltucker/ai-tester/internal/metrics"
	"github.com/daryltucker/ai-tester/internal/output"
	"github.com/daryltucker/ai-tester/internal/state"
)

var (
	questionsFile string
	formatName    string
	outFile       string
	debugMode     bool
	endpointFlag  string
	metricsFile   string
)

var runCmd = &cobra.Command{
	Use:   "run <base_url>",
	Short: "Run a resumable question batch",
	Long: `Sends every question from the questions file to <base_url><endpoint> and
collects the answers.

Progress is kept in a success log, an error log and a metadata file. Running
the same command again (same URL, questions file, format, output file, debug
flag and endpoint) skips questions that already succeeded. Changing any of
these parameters starts over. When every question has succeeded the state
files are removed.`,
	Example: `  # Ask the questions in ./questions.yml, print JSON to the console
  ai-tester run https://chat.example.com

  # Write an Excel workbook, using a custom endpoint
  ai-tester run https://chat.example.com --format excel --outfile results.xlsx --endpoint /api/chat

  # Keep citation contents in the output
  ai-tester run https://chat.example.com --questions ./regression.yml --debug`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		format, err := output.ParseFormat(formatName)
		if err != nil {
			return err
		}

		if questionsFile == "" {
			questionsFile = cfg.QuestionsFile
		}

		// 2. Wiring
		var rec *metrics.Recorder
		if metricsFile != "" {
			rec = metrics.New()
		}
		exec := engine.NewExecutor(cfg, rec)
		runner := engine.NewRunner(exec, state.NewFileStore(state.PathsFromConfig(cfg)))

		// 3. Execution
		results, runErr := runner.Run(cmd.Context(), engine.RunOptions{
			BaseURL:       args[0],
			QuestionsFile: questionsFile,
			OutputFormat:  format.String(),
			Filename:      outFile,
			Debug:         debugMode,
			Endpoint:      endpointFlag,
		})
		if engine.IsValidationError(runErr) {
			return fmt.Errorf("validation error: %w", runErr)
		}

		// 4. Output
		if runErr == nil || len(results) > 0 {
			if err := output.Write(cmd.OutOrStdout(), format, results, outFile); err != nil {
				return fmt.Errorf("failed to write results: %w", err)
			}
		}

		if err := rec.WriteTextfile(metricsFile); err != nil {
			output.Logger.Error("Failed to write metrics", "path", metricsFile, "error", err)
		}

		return runErr
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&questionsFile, "questions", "", "Path to the questions file (default from config: ./questions.yml)")
	runCmd.Flags().StringVar(&formatName, "format", "json", "Output format: json, excel or raw")
	runCmd.Flags().StringVarP(&outFile, "outfile", "o", "", "Write results to this file instead of the console")
	runCmd.Flags().BoolVar(&debugMode, "debug", false, "Include citation contents in the results")
	runCmd.Flags().StringVar(&endpointFlag, "endpoint", "", "Endpoint path appended to the base URL (default from config: /conversation)")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics for the run to this file")
}
