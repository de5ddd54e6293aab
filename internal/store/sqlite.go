package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	file_name     TEXT NOT NULL,
	folder_path   TEXT NOT NULL DEFAULT '',
	content_hash  TEXT NOT NULL,
	chunk_count   INTEGER NOT NULL,
	ingested_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash);

CREATE TABLE IF NOT EXISTS chunks (
	id                 TEXT PRIMARY KEY,
	document_id        TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	idx                INTEGER NOT NULL,
	text               TEXT NOT NULL,
	enriched_text      TEXT NOT NULL,
	token_count        INTEGER NOT NULL,
	relative_position  REAL NOT NULL,
	vector             BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id, idx);
`

// SQLiteStore is an embedded Store. Vectors live as little-endian float32
// blobs; similarity is computed in Go over a full scan, which is fine for
// personal-vault scale.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer suits SQLite; WAL keeps readers unblocked.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) UpsertDocument(ctx context.Context, doc DocumentInfo, chunks []ChunkRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, doc.ID); err != nil {
		return fmt.Errorf("clear old chunks: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, title, file_name, folder_path, content_hash, chunk_count, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			file_name = excluded.file_name,
			folder_path = excluded.folder_path,
			content_hash = excluded.content_hash,
			chunk_count = excluded.chunk_count,
			ingested_at = excluded.ingested_at`,
		doc.ID, doc.Title, doc.FileName, doc.FolderPath, doc.ContentHash,
		doc.ChunkCount, doc.IngestedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	for _, c := range chunks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (id, document_id, idx, text, enriched_text, token_count, relative_position, vector)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, doc.ID, c.Index, c.Text, c.EnrichedText, c.TokenCount,
			c.RelativePosition, serializeVector(c.Vector)); err != nil {
			return fmt.Errorf("insert chunk %d: %w", c.Index, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Search(ctx context.Context, vector []float32, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		return []SearchHit{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, d.title, c.idx, c.text, c.vector
		FROM chunks c
		INNER JOIN documents d ON d.id = c.document_id`)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var hit SearchHit
		var blob []byte
		if err := rows.Scan(&hit.ChunkID, &hit.DocumentID, &hit.DocumentTitle, &hit.Index, &hit.Text, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		candidate := deserializeVector(blob)
		if len(candidate) != len(vector) {
			continue
		}
		hit.Score = cosineSimilarity(vector, candidate)
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, file_name, folder_path, content_hash, chunk_count, ingested_at
		FROM documents ORDER BY ingested_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentInfo
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStore) ListChunks(ctx context.Context, documentID string) ([]StoredChunk, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ?`, documentID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, idx, text, enriched_text, token_count, relative_position
		FROM chunks WHERE document_id = ? ORDER BY idx`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []StoredChunk
	for rows.Next() {
		var c StoredChunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Text, &c.EnrichedText, &c.TokenCount, &c.RelativePosition); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (s *SQLiteStore) GetChunk(ctx context.Context, chunkID string) (StoredChunk, error) {
	var c StoredChunk
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, idx, text, enriched_text, token_count, relative_position
		FROM chunks WHERE id = ?`, chunkID).
		Scan(&c.ID, &c.DocumentID, &c.Index, &c.Text, &c.EnrichedText, &c.TokenCount, &c.RelativePosition)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredChunk{}, ErrNotFound
	}
	if err != nil {
		return StoredChunk{}, err
	}
	return c, nil
}

func (s *SQLiteStore) DeleteDocument(ctx context.Context, documentID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, documentID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) FindByContentHash(ctx context.Context, hash string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM documents WHERE content_hash = ? LIMIT 1`, hash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (DocumentInfo, error) {
	var doc DocumentInfo
	var ingestedAt string
	if err := row.Scan(&doc.ID, &doc.Title, &doc.FileName, &doc.FolderPath,
		&doc.ContentHash, &doc.ChunkCount, &ingestedAt); err != nil {
		return DocumentInfo{}, fmt.Errorf("scan document: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, ingestedAt)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("parse ingested_at: %w", err)
	}
	doc.IngestedAt = t
	return doc, nil
}
