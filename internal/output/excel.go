/*
PURPOSE:
  Writes question results to an Excel workbook.
  One row per question: Question, Answer, then one column per citation.

REQUIREMENTS:
  User-specified:
  - Output to Excel for human review.
  - Wide, wrapped answer column; top-aligned rows.

  Implementation-discovered:
  - The number of citation columns is the largest citation count in the
    batch ("Cite 1" .. "Cite N").
  - An Error column is added only when some result failed.

ARCHITECTURE INTEGRATION:
  - Called by: output.Write (format.go)
  - Consumes: internal/model.QuestionResult
  - Dependencies: github.com/xuri/excelize/v2

ERROR HANDLING:
  - Returns error on any workbook or file failure.

IMPLEMENTATION RULES:
  - Build the whole workbook in memory, then save or stream it.

USAGE:
  output.SaveExcel("results.xlsx", results)

RELATED FILES:
  - internal/model/types.go
*/

package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/daryltucker/ai-tester/internal/model"
)

// SheetName is the worksheet holding the results.
const SheetName = "Results"

// Column widths, in Excel character units.
const (
	questionWidth = 60
	answerWidth   = 140
	citeWidth     = 30
)

// SaveExcel writes results to an .xlsx file at path.
func SaveExcel(path string, results []model.QuestionResult) error {
	f, err := buildWorkbook(results)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// WriteExcel streams the .xlsx bytes to w.
func WriteExcel(w io.Writer, results []model.QuestionResult) error {
	f, err := buildWorkbook(results)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(results []model.QuestionResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, err
	}

	if err := fillSheet(f, results); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}
	return f, nil
}

func fillSheet(f *excelize.File, results []model.QuestionResult) error {
	maxCites := 0
	hasErrors := false
	for _, r := range results {
		maxCites = max(maxCites, len(r.Citations))
		hasErrors = hasErrors || r.Failed()
	}

	header := []any{"Question", "Answer"}
	for i := 1; i <= maxCites; i++ {
		header = append(header, fmt.Sprintf("Cite %d", i))
	}
	if hasErrors {
		header = append(header, "Error")
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, r := range results {
		row := make([]any, 0, len(header))
		row = append(row, r.Question, r.Answer)
		for c := 0; c < maxCites; c++ {
			if c < len(r.Citations) {
				row = append(row, r.Citations[c])
			} else {
				row = append(row, "")
			}
		}
		if hasErrors {
			row = append(row, r.Error)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	return layoutSheet(f, len(header), len(results)+1)
}

// layoutSheet sets column widths and aligns every used cell to the top,
// wrapping Question and Answer.
func layoutSheet(f *excelize.File, cols, rows int) error {
	if err := f.SetColWidth(SheetName, "A", "A", questionWidth); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "B", "B", answerWidth); err != nil {
		return err
	}
	if cols > 2 {
		last, err := excelize.ColumnNumberToName(cols)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, "C", last, citeWidth); err != nil {
			return err
		}
	}

	wrapped, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return err
	}
	top, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top"},
	})
	if err != nil {
		return err
	}

	lastRow := fmt.Sprintf("B%d", rows)
	if err := f.SetCellStyle(SheetName, "A1", lastRow, wrapped); err != nil {
		return err
	}
	if cols > 2 {
		from := "C1"
		to, err := excelize.CoordinatesToCellName(cols, rows)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, from, to, top); err != nil {
			return err
		}
	}
	return nil
}
