package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVConverter renders CSV data as a markdown table, which the structure
// parser downstream recognizes as an atomic element.
type CSVConverter struct{}

func (c *CSVConverter) Convert(r io.Reader, filename string) (Result, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("parse csv: %w", err)
	}

	title := titleFromFilename(filename)
	if len(records) == 0 {
		return Result{Title: title}, nil
	}

	var b strings.Builder
	writeRow(&b, records[0])
	sep := make([]string, len(records[0]))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&b, sep)
	for _, row := range records[1:] {
		writeRow(&b, row)
	}

	return Result{Markdown: strings.TrimRight(b.String(), "\n"), Title: title}, nil
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, cell := range cells {
		b.WriteString(" ")
		b.WriteString(strings.ReplaceAll(cell, "|", "\\|"))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}
