package segment

import (
	"strings"
	"testing"

	"github.com/tgrayson/vaultvec/internal/note"
	"github.com/tgrayson/vaultvec/internal/token"
)

func makeChunks(tok *token.Codec, texts ...string) []note.Chunk {
	chunks := make([]note.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = note.Chunk{Index: i, Text: t, TokenCount: tok.Count(t)}
	}
	return chunks
}

func TestStitch_FirstChunkUntouched(t *testing.T) {
	s := newSegmenter(t, Config{MaxTokensPerChunk: 200, OverlapTokens: 50, MinViableChunkTokens: 1})
	tok := token.New()
	defer tok.Close()

	chunks := makeChunks(tok, para(200), para(200), para(200))
	stitched := s.stitch(chunks)

	if stitched[0].Text != chunks[0].Text {
		t.Error("first chunk must never be modified by stitching")
	}
	if stitched[0].TokenCount != 200 {
		t.Errorf("first chunk token count changed: %d", stitched[0].TokenCount)
	}
}

func TestStitch_OverlapWithinBudget(t *testing.T) {
	// Three 200-token chunks with a 50-token overlap: stitched chunks may
	// reach 250 tokens but no more.
	s := newSegmenter(t, Config{MaxTokensPerChunk: 200, OverlapTokens: 50, MinViableChunkTokens: 1})
	tok := token.New()
	defer tok.Close()

	chunks := makeChunks(tok, para(200), para(200), para(200))
	stitched := s.stitch(chunks)

	for i := 1; i < len(stitched); i++ {
		if stitched[i].TokenCount > 250 {
			t.Errorf("chunk %d: stitched count %d exceeds 200+50", i, stitched[i].TokenCount)
		}
		if stitched[i].TokenCount <= 200 {
			t.Errorf("chunk %d: expected an overlap prefix, count is %d", i, stitched[i].TokenCount)
		}
	}
}

func TestStitch_StrippingOverlapRestoresOriginal(t *testing.T) {
	s := newSegmenter(t, Config{MaxTokensPerChunk: 100, OverlapTokens: 20, MinViableChunkTokens: 1})
	tok := token.New()
	defer tok.Close()

	chunks := makeChunks(tok, para(90), para(80), para(70))
	stitched := s.stitch(chunks)

	for i := 1; i < len(stitched); i++ {
		tail := tok.WindowFromEnd(chunks[i-1].Text, 20)
		prefix := tail + overlapSeparator
		if !strings.HasPrefix(stitched[i].Text, prefix) {
			t.Fatalf("chunk %d: stitched text does not start with the computed overlap", i)
		}
		if got := strings.TrimPrefix(stitched[i].Text, prefix); got != chunks[i].Text {
			t.Errorf("chunk %d: stripping the overlap does not restore the original text", i)
		}
	}
}

func TestStitch_DisabledWhenNoOverlapConfigured(t *testing.T) {
	s := newSegmenter(t, Config{MaxTokensPerChunk: 100, OverlapTokens: 0, MinViableChunkTokens: 1})
	tok := token.New()
	defer tok.Close()

	chunks := makeChunks(tok, para(50), para(50))
	stitched := s.stitch(chunks)
	for i := range stitched {
		if stitched[i].Text != chunks[i].Text {
			t.Errorf("chunk %d modified despite zero overlap budget", i)
		}
	}
}
