package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/tgrayson/vaultvec/internal/embed"
	"github.com/tgrayson/vaultvec/internal/ingest"
	"github.com/tgrayson/vaultvec/internal/note"
	"github.com/tgrayson/vaultvec/internal/segment"
	"github.com/tgrayson/vaultvec/internal/store"
	"github.com/tgrayson/vaultvec/internal/token"
	"github.com/tgrayson/vaultvec/internal/vault"
)

// Worker processes a single document job: convert, segment, embed, store.
type Worker struct {
	embedder  embed.Embedder
	store     store.Store
	stats     *embed.Stats
	log       *slog.Logger
	segmenter *segment.Segmenter

	maxConcurrentEmbed int
	batchSize          int
	pdfFallback        bool
}

func NewWorker(embedder embed.Embedder, st store.Store, stats *embed.Stats, log *slog.Logger,
	segCfg segment.Config, maxEmbed, batchSize int, pdfFallback bool) (*Worker, error) {
	seg, err := segment.NewSegmenter(token.New(), segCfg)
	if err != nil {
		return nil, err
	}
	return &Worker{
		embedder:           embedder,
		store:              st,
		stats:              stats,
		log:                log,
		segmenter:          seg,
		maxConcurrentEmbed: maxEmbed,
		batchSize:          batchSize,
		pdfFallback:        pdfFallback,
	}, nil
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Convert to a Document.
	job.SetStatus(StatusConverting, "converting")
	doc, err := w.buildDocument(job)
	if err != nil {
		log.Error("convert failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "converting")
		return
	}
	job.SetTitle(doc.Title)

	job.ContentHash = ContentHashHex([]byte(doc.RawText))

	// Phase 1.5: Dedup check on body content.
	existingID, err := w.store.FindByContentHash(ctx, job.ContentHash)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Warn("dedup check failed, proceeding", "error", err)
	} else if err == nil {
		log.Info("duplicate document, skipping", "existing_doc_id", existingID)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Segment.
	job.SetStatus(StatusSegmenting, "segmenting")
	chunks, err := w.segmenter.Segment(doc)
	if err != nil {
		log.Error("segmentation failed", "error", err)
		job.AddError(fmt.Sprintf("segment: %s", err))
		job.SetStatus(StatusFailed, "segmenting")
		return
	}
	job.SetTotalChunks(len(chunks))
	log.Info("segmented document", "chunks", len(chunks))

	if len(chunks) == 0 {
		log.Warn("no chunks produced")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "segmenting")
		return
	}

	// Phase 3: Embed batches with bounded concurrency.
	job.SetStatus(StatusEmbedding, "embedding")
	vectors, hadErrors := w.embedChunks(ctx, job, chunks, log)

	records := make([]store.ChunkRecord, 0, len(chunks))
	for i, c := range chunks {
		if vectors[i] == nil {
			continue
		}
		records = append(records, store.ChunkRecord{
			ID:               store.ChunkID(job.DocID, c.Index),
			Index:            c.Index,
			Text:             c.Text,
			EnrichedText:     c.EnrichedText,
			TokenCount:       c.TokenCount,
			RelativePosition: c.RelativePosition,
			Vector:           vectors[i],
		})
	}
	if len(records) == 0 {
		job.SetStatus(StatusFailed, "embedding")
		return
	}

	// Phase 4: Store.
	job.SetStatus(StatusStoring, "storing")
	info := store.DocumentInfo{
		ID:          job.DocID,
		Title:       doc.Title,
		FileName:    doc.File.Name,
		FolderPath:  doc.File.FolderPath,
		ContentHash: job.ContentHash,
		ChunkCount:  len(records),
		IngestedAt:  job.CreatedAt,
	}
	if err := w.store.UpsertDocument(ctx, info, records); err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}
	job.AddChunksStored(len(records))
	log.Info("storage complete", "stored", len(records), "total", len(chunks))

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

// buildDocument converts the job's raw bytes into a Document. Vault notes
// skip conversion; uploads go through the format registry first.
func (w *Worker) buildDocument(job *Job) (note.Document, error) {
	if job.VaultPath != "" {
		doc := vault.NewDocument(string(job.FileData()), job.VaultPath)
		if job.Title != "" {
			doc.Title = job.Title
		}
		return doc, nil
	}

	conv, err := ingest.ForFile(job.Filename)
	if err != nil {
		return note.Document{}, err
	}
	if pdf, ok := conv.(*ingest.PDFConverter); ok {
		pdf.FallbackPdftotext = w.pdfFallback
	}

	res, err := conv.Convert(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		return note.Document{}, fmt.Errorf("convert: %w", err)
	}

	doc := vault.NewDocument(res.Markdown, filepath.Base(job.Filename))
	if doc.FrontMatter["title"] == nil && res.Title != "" {
		doc.Title = res.Title
	}
	if job.Title != "" {
		doc.Title = job.Title
	}
	return doc, nil
}

// embedChunks runs embedding calls in batches. The returned slice is
// indexed by chunk position; a nil vector marks a failed batch.
func (w *Worker) embedChunks(ctx context.Context, job *Job, chunks []note.EnrichedChunk, log *slog.Logger) ([][]float32, bool) {
	vectors := make([][]float32, len(chunks))

	type batchResult struct {
		start   int
		vectors [][]float32
		err     error
	}
	batches := 0
	results := make(chan batchResult, (len(chunks)+w.batchSize-1)/w.batchSize)
	sem := make(chan struct{}, w.maxConcurrentEmbed)

	for start := 0; start < len(chunks); start += w.batchSize {
		end := min(start+w.batchSize, len(chunks))
		batches++

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.EnrichedText)
		}

		sem <- struct{}{}
		go func(start int, texts []string) {
			defer func() { <-sem }()
			vecs, err := w.embedBatch(ctx, texts, log)
			results <- batchResult{start: start, vectors: vecs, err: err}
		}(start, embed.ForDocuments(texts))
	}

	hadErrors := false
	for range batches {
		r := <-results
		if r.err != nil {
			log.Error("embedding failed", "batch_start", r.start, "error", r.err)
			job.AddError(fmt.Sprintf("embed batch %d: %s", r.start, r.err))
			hadErrors = true
			continue
		}
		copy(vectors[r.start:], r.vectors)
		job.AddChunksEmbedded(len(r.vectors))
	}
	return vectors, hadErrors
}

func (w *Worker) embedBatch(ctx context.Context, texts []string, log *slog.Logger) ([][]float32, error) {
	var vecs [][]float32
	var lastErr error
	for attempt := range embed.MaxRetries {
		started := time.Now()
		vecs, lastErr = w.embedder.Embed(ctx, texts)
		w.stats.Record(time.Since(started).Milliseconds(), len(texts))
		if lastErr == nil || !embed.IsRetryable(lastErr) {
			break
		}
		w.stats.RecordRetry()
		log.Warn("retryable embedding error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(embed.Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return vecs, lastErr
}

// Close releases the worker's tokenizer.
func (w *Worker) Close() error {
	return w.segmenter.Close()
}
