// Package vault reads Obsidian-style note vaults from disk: walking the
// folder tree for markdown notes, splitting front matter from body, and
// building the Document values the segmentation pipeline consumes.
package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tgrayson/vaultvec/internal/ingest"
	"github.com/tgrayson/vaultvec/internal/note"
)

// Scan walks root and returns the vault-relative paths of every markdown
// note, in lexical walk order. Hidden files and directories (including the
// .obsidian config folder) are skipped.
func Scan(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".md" && ext != ".markdown" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan vault %s: %w", root, err)
	}
	return paths, nil
}

// Load reads a single note and builds its Document. relPath is
// vault-relative with forward slashes, as returned by Scan.
func Load(root, relPath string) (note.Document, error) {
	raw, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
	if err != nil {
		return note.Document{}, fmt.Errorf("read note %s: %w", relPath, err)
	}
	return NewDocument(string(raw), relPath), nil
}

// NewDocument builds a Document from raw note text and its vault-relative
// path. Front matter is parsed off the top; the title comes from front
// matter, then the first heading, then the filename stem.
func NewDocument(raw, relPath string) note.Document {
	meta, body := ParseFrontMatter(raw)

	doc := note.Document{
		RawText:     body,
		File:        identityFor(relPath),
		FrontMatter: meta,
	}
	doc.Title = titleFor(doc)
	return doc
}

func identityFor(relPath string) note.FileIdentity {
	folder := filepath.ToSlash(filepath.Dir(relPath))
	id := note.FileIdentity{
		Name:       filepath.Base(relPath),
		FolderPath: folder,
	}
	if folder == "." {
		id.FolderPath = ""
	} else {
		id.FolderSegments = strings.Split(id.FolderPath, "/")
	}
	return id
}

func titleFor(doc note.Document) string {
	if t, ok := doc.FrontMatter["title"].(string); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	if h := ingest.FirstHeading([]byte(doc.RawText)); h != "" {
		return h
	}
	name := doc.File.Name
	return strings.TrimSuffix(name, filepath.Ext(name))
}
