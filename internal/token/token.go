package token

import "unicode"

// Codec is a deterministic sub-word tokenizer shared by every pipeline stage.
// A token boundary is placed before a non-space rune whenever the token under
// construction already holds maxRunesPerToken non-space runes, or the previous
// rune was whitespace. Whitespace always attaches to the preceding token, so
// every cut the codec makes reproduces an exact substring of the input.
//
// Two calls with the same input always return the same result; the codec keeps
// no state between calls. Construct with New and release with Close rather
// than sharing a package-level instance.
type Codec struct{}

// maxRunesPerToken approximates byte-pair vocabularies, where a typical token
// covers roughly four characters of English text.
const maxRunesPerToken = 4

// New returns a ready-to-use Codec.
func New() *Codec {
	return &Codec{}
}

// Close releases the codec. The current implementation holds no external
// resources; callers should still pair New with Close so the acquisition
// stays scoped.
func (c *Codec) Close() error {
	return nil
}

// Count returns the number of tokens in text. Empty and whitespace-only
// input counts as zero.
func (c *Codec) Count(text string) int {
	return len(c.boundaries(text))
}

// Truncate returns the longest prefix of text holding at most maxTokens
// tokens. The cut lands on a token boundary, never inside a rune.
func (c *Codec) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	ends := c.boundaries(text)
	if len(ends) <= maxTokens {
		return text
	}
	return text[:ends[maxTokens-1]]
}

// WindowFromEnd returns the longest suffix of text whose token count does not
// exceed targetTokens. Used to build the overlap carried between consecutive
// chunks.
func (c *Codec) WindowFromEnd(text string, targetTokens int) string {
	if targetTokens <= 0 {
		return ""
	}
	ends := c.boundaries(text)
	if len(ends) <= targetTokens {
		return text
	}
	// The suffix starts where the token before the window ends.
	return text[ends[len(ends)-targetTokens-1]:]
}

// boundaries returns the byte offset at which each token ends. Tokens start
// at offset 0 (or at the previous token's end) and swallow any trailing
// whitespace, which keeps prefix and suffix cuts exact.
func (c *Codec) boundaries(text string) []int {
	var ends []int
	runes := 0
	started := false
	prevSpace := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			prevSpace = true
			continue
		}
		if started && (runes >= maxRunesPerToken || prevSpace) {
			ends = append(ends, i)
			runes = 0
		}
		runes++
		started = true
		prevSpace = false
	}
	if started {
		ends = append(ends, len(text))
	}
	return ends
}
