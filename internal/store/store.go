// Package store persists embedded chunks and serves similarity search.
// Two backends implement the same interface: an embedded SQLite database
// for single-binary deployments and a Qdrant server for larger vaults.
package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested document or chunk doesn't exist.
var ErrNotFound = errors.New("not found")

// DocumentInfo is the stored metadata for one ingested document.
type DocumentInfo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	FileName    string    `json:"file_name"`
	FolderPath  string    `json:"folder_path,omitempty"`
	ContentHash string    `json:"content_hash"`
	ChunkCount  int       `json:"chunk_count"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// ChunkRecord is one chunk ready for persistence: text, enrichment, and
// its embedding vector.
type ChunkRecord struct {
	ID               string
	Index            int
	Text             string
	EnrichedText     string
	TokenCount       int
	RelativePosition float64
	Vector           []float32
}

// StoredChunk is a chunk read back from the store, without its vector.
type StoredChunk struct {
	ID               string  `json:"id"`
	DocumentID       string  `json:"document_id"`
	Index            int     `json:"index"`
	Text             string  `json:"text"`
	EnrichedText     string  `json:"enriched_text"`
	TokenCount       int     `json:"token_count"`
	RelativePosition float64 `json:"relative_position"`
}

// SearchHit is one similarity search result.
type SearchHit struct {
	ChunkID       string  `json:"chunk_id"`
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	Index         int     `json:"index"`
	Text          string  `json:"text"`
	Score         float64 `json:"score"`
}

// Store is the persistence interface the pipeline and API speak.
type Store interface {
	// UpsertDocument replaces a document and all its chunks atomically.
	UpsertDocument(ctx context.Context, doc DocumentInfo, chunks []ChunkRecord) error
	// Search returns the top-k chunks nearest to the query vector.
	Search(ctx context.Context, vector []float32, limit int) ([]SearchHit, error)
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)
	ListChunks(ctx context.Context, documentID string) ([]StoredChunk, error)
	GetChunk(ctx context.Context, chunkID string) (StoredChunk, error)
	DeleteDocument(ctx context.Context, documentID string) error
	// FindByContentHash returns the ID of the document with this content
	// hash, or ErrNotFound.
	FindByContentHash(ctx context.Context, hash string) (string, error)
	Close() error
}

// idNamespace keys deterministic IDs so re-ingesting the same note
// overwrites its old points instead of accumulating duplicates.
var idNamespace = uuid.MustParse("9e2b14c6-7a41-4c5a-8b1f-3d9257b0a6e4")

// DocumentID derives a stable UUID from a document's vault-relative path.
func DocumentID(path string) string {
	return uuid.NewSHA1(idNamespace, []byte("doc:"+path)).String()
}

// ChunkID derives a stable UUID for one chunk of a document.
func ChunkID(documentID string, index int) string {
	return uuid.NewSHA1(idNamespace, []byte("chunk:"+documentID+":"+strconv.Itoa(index))).String()
}
