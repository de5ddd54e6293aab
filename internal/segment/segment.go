// Package segment turns a document into bounded, overlapping,
// context-annotated chunks ready for embedding. The pipeline is a pure
// function of (document, config): no I/O, no logging, no shared state, so
// callers may run any number of documents in parallel.
package segment

import (
	"fmt"

	"github.com/tgrayson/vaultvec/internal/enrich"
	"github.com/tgrayson/vaultvec/internal/note"
	"github.com/tgrayson/vaultvec/internal/structure"
	"github.com/tgrayson/vaultvec/internal/token"
)

// Segmenter runs the structure-parse, chunk, overlap-stitch and enrich stages
// over single documents. It is safe for concurrent use.
type Segmenter struct {
	tok *token.Codec
	cfg Config
}

// NewSegmenter validates cfg and binds the tokenizer the pipeline will use.
// Invalid configuration fails here, before any document is parsed.
func NewSegmenter(tok *token.Codec, cfg Config) (*Segmenter, error) {
	if tok == nil {
		return nil, fmt.Errorf("segmenter requires a tokenizer")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid segmentation config: %w", err)
	}
	return &Segmenter{tok: tok, cfg: cfg}, nil
}

// Config returns the validated configuration in use.
func (s *Segmenter) Config() Config {
	return s.cfg
}

// Close releases the bound tokenizer.
func (s *Segmenter) Close() error {
	return s.tok.Close()
}

// Segment converts a document into its final enriched chunk sequence.
// Empty or whitespace-only input yields zero chunks. Re-running with
// identical input and config yields byte-identical output.
func (s *Segmenter) Segment(doc note.Document) ([]note.EnrichedChunk, error) {
	elems := structure.Parse(doc.RawText)
	if len(elems) == 0 {
		return nil, nil
	}

	texts := s.chunkSections(structure.Group(elems))

	// Drop chunks below the viability floor. They are considered too small
	// to carry standalone meaning and are discarded, not merged into a
	// neighbor; see the package design notes before changing this.
	kept := texts[:0]
	counts := make([]int, 0, len(texts))
	for _, t := range texts {
		n := s.tok.Count(t)
		if n < s.cfg.MinViableChunkTokens {
			continue
		}
		kept = append(kept, t)
		counts = append(counts, n)
	}

	chunks := make([]note.Chunk, len(kept))
	for i, t := range kept {
		chunks[i] = note.Chunk{
			Index:            i,
			Text:             t,
			TokenCount:       counts[i],
			RelativePosition: relativePosition(i, len(kept)),
		}
	}

	stitched := s.stitch(chunks)

	out := make([]note.EnrichedChunk, len(stitched))
	for i := range stitched {
		// Enrichment always works from the pre-overlap body so the
		// preamble and the copied tail never double-count content.
		out[i] = enrich.Enrich(doc, stitched[i], chunks[i].Text)
	}
	return out, nil
}

func relativePosition(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}
