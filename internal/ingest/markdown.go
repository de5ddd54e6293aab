package ingest

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownConverter passes markdown through unchanged, extracting a title
// from the first heading via the goldmark AST.
type MarkdownConverter struct{}

func (c *MarkdownConverter) Convert(r io.Reader, filename string) (Result, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return Result{}, err
	}

	title := FirstHeading(src)
	if title == "" {
		title = titleFromFilename(filename)
	}
	return Result{Markdown: string(src), Title: title}, nil
}

// FirstHeading returns the text of the first heading in a markdown document,
// or empty when there is none.
func FirstHeading(src []byte) string {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			return strings.TrimSpace(headingText(h, src))
		}
	}
	return ""
}

func headingText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Value(src))
		} else {
			b.WriteString(headingText(c, src))
		}
	}
	return b.String()
}
