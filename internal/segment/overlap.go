package segment

import "github.com/tgrayson/vaultvec/internal/note"

// overlapSeparator sits between the copied tail of the previous chunk and the
// current chunk's own text.
const overlapSeparator = "\n\n"

// stitch prepends a token-bounded suffix of each chunk's predecessor, so
// downstream similarity search keeps context across chunk boundaries. The
// first chunk is never modified. A stitched chunk's token count may exceed
// MaxTokensPerChunk by up to OverlapTokens; the ceiling binds the pre-stitch
// text only.
func (s *Segmenter) stitch(chunks []note.Chunk) []note.Chunk {
	if s.cfg.OverlapTokens <= 0 || len(chunks) < 2 {
		return chunks
	}
	out := make([]note.Chunk, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		c := chunks[i]
		tail := s.tok.WindowFromEnd(chunks[i-1].Text, s.cfg.OverlapTokens)
		if tail != "" {
			c.Text = tail + overlapSeparator + c.Text
			c.TokenCount = s.tok.Count(c.Text)
		}
		out[i] = c
	}
	return out
}
