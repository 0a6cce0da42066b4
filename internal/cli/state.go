/*
PURPOSE:
  Defines the 'state' subcommands for inspecting and clearing run state.

REQUIREMENTS:
  Implementation-discovered:
  - Users need to see why a batch keeps resuming and to force a restart.

ARCHITECTURE INTEGRATION:
  - Uses: internal/state.FileStore with paths from config

USAGE:
  ai-tester state show
  ai-tester state reset

RELATED FILES:
  - internal/state/store.go
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/ai-tester/internal/output"
	"github.com/daryltucker/ai-tester/internal/state"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or clear the resumable run state",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the persisted run parameters, answered questions and errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st := state.NewFileStore(state.PathsFromConfig(cfg))
		w := cmd.OutOrStdout()

		meta, err := st.LoadMetadata()
		if err != nil {
			return err
		}
		if meta == nil {
			fmt.Fprintln(w, "No run in progress.")
			return nil
		}

		fmt.Fprintf(w, "Base URL:       %s\n", meta.BaseURL)
		fmt.Fprintf(w, "Endpoint:       %s\n", meta.Endpoint)
		fmt.Fprintf(w, "Questions file: %s\n", meta.QuestionsFile)
		fmt.Fprintf(w, "Output format:  %s\n", meta.OutputFormat)
		fmt.Fprintf(w, "Output file:    %s\n", meta.Filename)
		fmt.Fprintf(w, "Debug:          %t\n", meta.Debug)

		done, err := st.LoadSuccessSet()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Answered:       %d\n", len(done))

		errs, err := st.LoadErrors()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Errors:         %d\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(w, "  %s  %s\n      %s\n", e.Timestamp, output.Truncate(e.Question, 70), e.Error)
		}
		return nil
	},
}

var stateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the success log, error log and run metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st := state.NewFileStore(state.PathsFromConfig(cfg))
		if err := st.Reset(); err != nil {
			return err
		}
		p := st.Paths()
		output.Logger.Info("Run state cleared", "success_log", p.SuccessLog, "error_log", p.ErrorLog, "meta", p.Meta)
		return nil
	},
}

func init() {
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateResetCmd)
	rootCmd.AddCommand(stateCmd)
}
