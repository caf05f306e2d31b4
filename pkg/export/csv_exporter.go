package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Register is an ordered tabular snapshot prepared for download. Rows must
// match the column count.
type Register struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// CSVExporter renders a Register as CSV bytes.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes the column row followed by every record.
func (e *CSVExporter) Render(reg Register) ([]byte, error) {
	if len(reg.Columns) == 0 {
		return nil, fmt.Errorf("register has no columns")
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(reg.Columns); err != nil {
		return nil, fmt.Errorf("write register columns: %w", err)
	}
	for _, row := range reg.Rows {
		if len(row) != len(reg.Columns) {
			return nil, fmt.Errorf("register row has %d cells, want %d", len(row), len(reg.Columns))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write register row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush register: %w", err)
	}
	return buf.Bytes(), nil
}
