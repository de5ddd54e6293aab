// Package enrich annotates chunks with document identity, vault-path
// semantics, position descriptors, and front-matter tags. The generated
// preamble plus the chunk's body is the string handed to the embedding
// client; the transform is pure and never re-triggers chunk splitting.
package enrich

import (
	"fmt"
	"strings"

	"github.com/tgrayson/vaultvec/internal/note"
)

// Category maps a folder-name keyword to a human-readable context label.
// The table is data, not code: extending the vocabulary means adding a row.
type Category struct {
	Keyword string
	Label   string
}

// Categories is evaluated uniformly against every folder segment; a segment
// containing a keyword contributes that label to the preamble.
var Categories = []Category{
	{"research", "research notes"},
	{"daily", "daily log"},
	{"journal", "personal journal"},
	{"meeting", "meeting notes"},
	{"project", "project documentation"},
	{"reference", "reference material"},
	{"archive", "archived material"},
	{"template", "note template"},
	{"draft", "work in progress"},
	{"inbox", "unsorted capture"},
}

// CategoriesFor returns the labels matching any folder segment, in table
// order, without duplicates.
func CategoriesFor(segments []string) []string {
	var labels []string
	for _, cat := range Categories {
		for _, seg := range segments {
			if strings.Contains(strings.ToLower(seg), cat.Keyword) {
				labels = append(labels, cat.Label)
				break
			}
		}
	}
	return labels
}

// PositionBand buckets a relative position into one of five descriptors.
func PositionBand(p float64) string {
	switch {
	case p < 0.2:
		return "beginning of document"
	case p < 0.4:
		return "early part of document"
	case p < 0.6:
		return "middle of document"
	case p < 0.8:
		return "late part of document"
	default:
		return "end of document"
	}
}

// Enrich builds the final chunk record: the stitched chunk as-is, plus an
// enriched text made of the context preamble and the pre-overlap body.
func Enrich(doc note.Document, c note.Chunk, body string) note.EnrichedChunk {
	return note.EnrichedChunk{
		Chunk:        c,
		EnrichedText: Preamble(doc, c) + "\n\n" + body,
		Features:     DetectFeatures(body),
	}
}

// Preamble renders the deterministic context header for a chunk. Lines with
// nothing to say are omitted entirely, so two documents differing only in
// metadata produce stably different preambles.
func Preamble(doc note.Document, c note.Chunk) string {
	var b strings.Builder

	title := doc.Title
	if title == "" {
		title = strings.TrimSuffix(doc.File.Name, ".md")
	}
	fmt.Fprintf(&b, "Document: %s", title)
	if doc.File.Name != "" && doc.File.Name != title {
		fmt.Fprintf(&b, " (file: %s)", doc.File.Name)
	}
	b.WriteString("\n")

	if len(doc.File.FolderSegments) > 0 {
		fmt.Fprintf(&b, "Folder: %s\n", strings.Join(doc.File.FolderSegments, " > "))
	}
	if labels := CategoriesFor(doc.File.FolderSegments); len(labels) > 0 {
		fmt.Fprintf(&b, "Context: %s\n", strings.Join(labels, ", "))
	}

	fmt.Fprintf(&b, "Position: %s", PositionBand(c.RelativePosition))

	if tags := FrontMatterTags(doc.FrontMatter); len(tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s", strings.Join(tags, ", "))
	}
	if v := frontMatterString(doc.FrontMatter, "type"); v != "" {
		fmt.Fprintf(&b, "\nType: %s", v)
	}
	if v := frontMatterString(doc.FrontMatter, "status"); v != "" {
		fmt.Fprintf(&b, "\nStatus: %s", v)
	}
	return b.String()
}

// FrontMatterTags normalizes the "tags" front-matter key, which shows up in
// the wild as a YAML list, a comma-separated string, or a single word.
func FrontMatterTags(meta map[string]any) []string {
	raw, ok := meta["tags"]
	if !ok {
		return nil
	}
	var tags []string
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				tags = append(tags, strings.TrimSpace(s))
			}
		}
	case []string:
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				tags = append(tags, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				tags = append(tags, s)
			}
		}
	}
	return tags
}

func frontMatterString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	s, _ := meta[key].(string)
	return strings.TrimSpace(s)
}
