package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testDoc(path string, n int) (DocumentInfo, []ChunkRecord) {
	docID := DocumentID(path)
	doc := DocumentInfo{
		ID:          docID,
		Title:       "Test Note",
		FileName:    filepath.Base(path),
		FolderPath:  filepath.Dir(path),
		ContentHash: "hash-" + path,
		ChunkCount:  n,
		IngestedAt:  time.Now(),
	}
	chunks := make([]ChunkRecord, n)
	for i := range chunks {
		chunks[i] = ChunkRecord{
			ID:               ChunkID(docID, i),
			Index:            i,
			Text:             "chunk text",
			EnrichedText:     "Document: Test Note\n\nchunk text",
			TokenCount:       10,
			RelativePosition: float64(i) / float64(n),
			Vector:           []float32{float32(i), 1, 0},
		}
	}
	return doc, chunks
}

func TestSQLiteStore_UpsertAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc, chunks := testDoc("notes/a.md", 3)
	if err := s.UpsertDocument(ctx, doc, chunks); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	docs, err := s.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].ID != doc.ID || docs[0].ChunkCount != 3 {
		t.Errorf("unexpected document: %+v", docs[0])
	}

	stored, err := s.ListChunks(ctx, doc.ID)
	if err != nil {
		t.Fatalf("list chunks: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(stored))
	}
	for i, c := range stored {
		if c.Index != i {
			t.Errorf("chunk %d out of order: index %d", i, c.Index)
		}
	}
}

func TestSQLiteStore_UpsertReplacesChunks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc, chunks := testDoc("notes/a.md", 5)
	if err := s.UpsertDocument(ctx, doc, chunks); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	doc2, chunks2 := testDoc("notes/a.md", 2)
	if err := s.UpsertDocument(ctx, doc2, chunks2); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	stored, err := s.ListChunks(ctx, doc.ID)
	if err != nil {
		t.Fatalf("list chunks: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("re-ingest should replace chunks, got %d", len(stored))
	}
}

func TestSQLiteStore_Search(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := DocumentInfo{
		ID: DocumentID("notes/s.md"), Title: "Search Note", FileName: "s.md",
		ContentHash: "h", ChunkCount: 3, IngestedAt: time.Now(),
	}
	chunks := []ChunkRecord{
		{ID: ChunkID(doc.ID, 0), Index: 0, Text: "x axis", Vector: []float32{1, 0, 0}},
		{ID: ChunkID(doc.ID, 1), Index: 1, Text: "y axis", Vector: []float32{0, 1, 0}},
		{ID: ChunkID(doc.ID, 2), Index: 2, Text: "diagonal", Vector: []float32{1, 1, 0}},
	}
	if err := s.UpsertDocument(ctx, doc, chunks); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	hits, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Text != "x axis" {
		t.Errorf("expected exact match first, got %q (score %f)", hits[0].Text, hits[0].Score)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("hits not sorted by score: %f < %f", hits[0].Score, hits[1].Score)
	}
	if hits[0].DocumentTitle != "Search Note" {
		t.Errorf("hit missing document title: %+v", hits[0])
	}
}

func TestSQLiteStore_GetChunk(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc, chunks := testDoc("notes/a.md", 1)
	if err := s.UpsertDocument(ctx, doc, chunks); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	c, err := s.GetChunk(ctx, chunks[0].ID)
	if err != nil {
		t.Fatalf("get chunk: %v", err)
	}
	if c.EnrichedText != chunks[0].EnrichedText {
		t.Errorf("unexpected enriched text: %q", c.EnrichedText)
	}

	if _, err := s.GetChunk(ctx, ChunkID(doc.ID, 99)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_DeleteDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc, chunks := testDoc("notes/a.md", 2)
	if err := s.UpsertDocument(ctx, doc, chunks); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.DeleteDocument(ctx, doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.ListChunks(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("chunks should cascade on delete, got %v", err)
	}
	if err := s.DeleteDocument(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_FindByContentHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc, chunks := testDoc("notes/a.md", 1)
	if err := s.UpsertDocument(ctx, doc, chunks); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	id, err := s.FindByContentHash(ctx, doc.ContentHash)
	if err != nil {
		t.Fatalf("find by hash: %v", err)
	}
	if id != doc.ID {
		t.Errorf("expected %s, got %s", doc.ID, id)
	}

	if _, err := s.FindByContentHash(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
