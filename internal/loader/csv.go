package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVExtractor handles CSV files: annotated interview tables commonly export
// one response per cell. Cells are joined in row order, rows separated by
// newlines, so coded spans inside a cell stay contiguous.
type CSVExtractor struct{}

func (e *CSVExtractor) Extract(r io.Reader, filename string) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}

	var out strings.Builder
	for _, row := range rows {
		for j, cell := range row {
			if j > 0 {
				out.WriteString(" ")
			}
			out.WriteString(cell)
		}
		out.WriteString("\n")
	}
	return out.String(), nil
}
