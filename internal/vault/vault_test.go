package vault

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeNote(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestScan_FindsMarkdownSkipsHidden(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "inbox.md", "note")
	writeNote(t, root, "areas/research/papers.md", "note")
	writeNote(t, root, "daily/2024-01-01.md", "note")
	writeNote(t, root, "attachments/diagram.png", "binary")
	writeNote(t, root, ".obsidian/workspace.json", "{}")
	writeNote(t, root, ".hidden-note.md", "note")

	paths, err := Scan(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"areas/research/papers.md", "daily/2024-01-01.md", "inbox.md"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("expected %v, got %v", want, paths)
	}
}

func TestScan_MissingRoot(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestLoad_BuildsDocument(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "areas/research/papers.md", "---\ntitle: Reading List\ntags: [research]\n---\nSome notes.\n")

	doc, err := Load(root, "areas/research/papers.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Reading List" {
		t.Errorf("expected front matter title, got %q", doc.Title)
	}
	if doc.RawText != "Some notes.\n" {
		t.Errorf("unexpected body: %q", doc.RawText)
	}
	if doc.File.Name != "papers.md" {
		t.Errorf("unexpected name: %q", doc.File.Name)
	}
	if doc.File.FolderPath != "areas/research" {
		t.Errorf("unexpected folder: %q", doc.File.FolderPath)
	}
	if !reflect.DeepEqual(doc.File.FolderSegments, []string{"areas", "research"}) {
		t.Errorf("unexpected segments: %v", doc.File.FolderSegments)
	}
}

func TestNewDocument_TitleFallbacks(t *testing.T) {
	doc := NewDocument("# First Heading\n\nBody.\n", "scratch.md")
	if doc.Title != "First Heading" {
		t.Errorf("expected heading title, got %q", doc.Title)
	}

	doc = NewDocument("plain text only\n", "2024-01-01.md")
	if doc.Title != "2024-01-01" {
		t.Errorf("expected filename title, got %q", doc.Title)
	}
	if doc.File.FolderPath != "" || doc.File.FolderSegments != nil {
		t.Errorf("root-level note should have empty folder identity")
	}
}
