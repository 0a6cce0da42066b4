/*
PURPOSE:
  Writes question results as JSON.

REQUIREMENTS:
  User-specified:
  - JSON output for easier parsing.
  - Pretty-printed on the console, compact when written to a file.

  Implementation-discovered:
  - An empty batch must still produce a valid document ("[]").

ARCHITECTURE INTEGRATION:
  - Called by: output.Write (format.go)
  - Consumes: internal/model.QuestionResult

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.

USAGE:
  output.WriteJSON(os.Stdout, results)
  output.SaveJSON("results.json", results)

RELATED FILES:
  - internal/model/types.go
*/

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/daryltucker/ai-tester/internal/model"
)

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []model.QuestionResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(nonNil(results))
}

// SaveJSON writes results as a compact JSON array to path.
func SaveJSON(path string, results []model.QuestionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := json.NewEncoder(f).Encode(nonNil(results)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func nonNil(results []model.QuestionResult) []model.QuestionResult {
	if results == nil {
		return []model.QuestionResult{}
	}
	return results
}
