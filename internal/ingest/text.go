package ingest

import (
	"bufio"
	"io"
	"strings"
)

// TextConverter handles plain text files. Paragraph breaks are preserved;
// everything else passes through as-is.
type TextConverter struct{}

func (c *TextConverter) Convert(r io.Reader, filename string) (Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	if err := scanner.Err(); err != nil {
		return Result{}, err
	}

	return Result{
		Markdown: strings.Join(paragraphs, "\n\n"),
		Title:    titleFromFilename(filename),
	}, nil
}
