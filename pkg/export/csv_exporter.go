package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// formulaLeads are the first characters that make spreadsheet applications evaluate a cell.
const formulaLeads = "=+-@\t\r"

// CSVExporter writes a Dataset as a header record followed by one record per row, in header
// order. Text that would be evaluated as a formula is prefixed with a single quote.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType implements Renderer.
func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

// Extension implements Renderer.
func (e *CSVExporter) Extension() string { return "csv" }

// Render implements Renderer. The dataset title is not written.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, errors.New("csv requires at least one header")
	}

	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Headers)
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = inertCell(row[header])
		}
		records = append(records, record)
	}

	var buf bytes.Buffer
	if err := csv.NewWriter(&buf).WriteAll(records); err != nil {
		return nil, fmt.Errorf("write changelog csv: %w", err)
	}
	return buf.Bytes(), nil
}

// inertCell quotes values a spreadsheet would run as a formula. Plain numbers such as "-1" are
// kept as they are.
func inertCell(v string) string {
	if v == "" || !strings.ContainsRune(formulaLeads, rune(v[0])) {
		return v
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}
	return "'" + v
}
