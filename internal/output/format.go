/*
PURPOSE:
  Selects and dispatches the result output format.

REQUIREMENTS:
  User-specified:
  - Formats are json, excel and raw; anything else is rejected up front.

  Implementation-discovered:
  - Without an output file, json and excel go to the command's stdout.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (run)
  - Uses: json.go, excel.go

RELATED FILES:
  - internal/output/json.go
  - internal/output/excel.go
*/

package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/daryltucker/ai-tester/internal/model"
)

// Format is one of the fixed result output formats.
type Format int

const (
	FormatJSON Format = iota
	FormatExcel
	FormatRaw
)

// Formats lists the accepted format names in display order.
var Formats = []string{"json", "excel", "raw"}

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatExcel:
		return "excel"
	case FormatRaw:
		return "raw"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a format name to its Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	case "raw":
		return FormatRaw, nil
	default:
		return 0, fmt.Errorf("unknown output format %q (expected one of %s)", name, strings.Join(Formats, ", "))
	}
}

// Write renders results in format f. With a filename the output goes to
// that file, otherwise to w. Raw output always goes to w.
func Write(w io.Writer, f Format, results []model.QuestionResult, filename string) error {
	switch f {
	case FormatJSON:
		if filename != "" {
			return SaveJSON(filename, results)
		}
		return WriteJSON(w, results)
	case FormatExcel:
		if filename != "" {
			if err := SaveExcel(filename, results); err != nil {
				return err
			}
			Logger.Info("Data written to file", "path", filename)
			return nil
		}
		return WriteExcel(w, results)
	case FormatRaw:
		_, err := fmt.Fprintf(w, "%+v\n", results)
		return err
	default:
		return fmt.Errorf("unsupported output format %s", f)
	}
}
