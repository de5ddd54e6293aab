package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tgrayson/vaultvec/internal/structure"
)

// granularity names the cascade levels. Each level is entered only when a
// unit at the level above exceeds the token budget.
type granularity int

const (
	granSection granularity = iota
	granParagraph
	granSentence
	granWord
)

func (g granularity) String() string {
	switch g {
	case granSection:
		return "section"
	case granParagraph:
		return "paragraph"
	case granSentence:
		return "sentence"
	default:
		return "word"
	}
}

// paragraph is one accumulation unit at the paragraph level. Special elements
// (code, tables, lists, block quotes) are atomic: they never merge with
// neighboring text and split by line rather than by sentence when oversized.
type paragraph struct {
	text string
	elem *structure.Element // set only for atomic special elements
}

// chunkSections runs the cascade over grouped sections and returns chunk
// texts in document order.
func (s *Segmenter) chunkSections(secs []structure.Section) []string {
	var out []string
	for _, sec := range secs {
		text := sectionText(sec)
		if text == "" {
			continue
		}
		if s.tok.Count(text) <= s.cfg.MaxTokensPerChunk {
			out = append(out, text)
			continue
		}
		out = s.chunkParagraphs(sectionParagraphs(sec), out)
	}
	return out
}

// sectionText reassembles a section's source text. Single text lines arrive
// as individual elements, so contiguous elements rejoin with a bare newline;
// a blank-line gap in the source becomes one blank line here.
func sectionText(sec structure.Section) string {
	var b strings.Builder
	lastLine := -2
	for i := range sec.Elements {
		el := &sec.Elements[i]
		if b.Len() > 0 {
			if el.StartLine > lastLine+1 {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString(el.Text())
		lastLine = el.EndLine
	}
	return strings.TrimSpace(b.String())
}

// sectionParagraphs flattens a section into paragraph units: consecutive text
// lines with no blank gap form one paragraph, every special element stands
// alone.
func sectionParagraphs(sec structure.Section) []paragraph {
	var paras []paragraph
	var cur []string
	lastLine := -2
	lastKind := structure.KindText

	flush := func() {
		if len(cur) > 0 {
			paras = append(paras, paragraph{text: strings.Join(cur, "\n")})
			cur = nil
		}
	}

	for i := range sec.Elements {
		el := &sec.Elements[i]
		switch el.Kind {
		case structure.KindText:
			// A blank-line gap between text lines closes the paragraph,
			// unless the pending text is a header waiting for its body.
			if len(cur) > 0 && lastKind == structure.KindText && el.StartLine > lastLine+1 {
				flush()
			}
			cur = append(cur, el.Lines...)
		case structure.KindHeader:
			// Headers travel with the content that follows rather than
			// forming a chunk of their own.
			flush()
			cur = append(cur, el.Lines...)
		default:
			flush()
			paras = append(paras, paragraph{text: el.Text(), elem: el})
		}
		lastLine = el.EndLine
		lastKind = el.Kind
	}
	flush()
	return paras
}

// chunkParagraphs accumulates paragraphs into budget-bounded chunks,
// recursing into finer granularities for units that exceed the budget on
// their own.
func (s *Segmenter) chunkParagraphs(paras []paragraph, out []string) []string {
	max := s.cfg.MaxTokensPerChunk
	var cur strings.Builder
	curTokens := 0

	flush := func() {
		if curTokens > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curTokens = 0
		}
	}

	for _, p := range paras {
		pt := s.tok.Count(p.text)
		if pt > max {
			flush()
			if p.elem != nil {
				out = append(out, s.splitElement(p.elem)...)
			} else {
				out = s.chunkSentences(p.text, out)
			}
			continue
		}
		if curTokens > 0 && curTokens+pt > max {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(p.text)
		curTokens += pt
	}
	flush()
	return out
}

// chunkSentences applies the same accumulate-and-flush strategy at sentence
// granularity. A single over-budget sentence falls through to word splitting.
func (s *Segmenter) chunkSentences(text string, out []string) []string {
	max := s.cfg.MaxTokensPerChunk
	var cur strings.Builder
	curTokens := 0

	flush := func() {
		if curTokens > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curTokens = 0
		}
	}

	for _, sent := range splitSentences(text) {
		st := s.tok.Count(sent)
		if st > max {
			flush()
			out = s.chunkWords(sent, out)
			continue
		}
		if curTokens > 0 && curTokens+st > max {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString(" ")
		}
		cur.WriteString(sent)
		curTokens += st
	}
	flush()
	return out
}

// chunkWords is the terminal cascade level and always succeeds. A lone word
// wider than the entire budget is emitted as an oversized chunk; the pipeline
// prefers the ceiling but does not guarantee it for indivisible input.
func (s *Segmenter) chunkWords(text string, out []string) []string {
	max := s.cfg.MaxTokensPerChunk
	var cur strings.Builder
	curTokens := 0

	for _, word := range strings.Fields(text) {
		wt := s.tok.Count(word)
		if curTokens > 0 && curTokens+wt > max {
			out = append(out, cur.String())
			cur.Reset()
			curTokens = 0
		}
		if cur.Len() > 0 {
			cur.WriteString(" ")
		}
		cur.WriteString(word)
		curTokens += wt
	}
	if curTokens > 0 {
		out = append(out, cur.String())
	}
	return out
}

// splitSentences cuts at terminal punctuation followed by a newline or by
// whitespace and a capital letter.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			sentences = append(sentences, s)
		}
		cur.Reset()
	}

	for i, r := range text {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if sentenceBoundary(text[i+utf8.RuneLen(r):]) {
				flush()
			}
		}
	}
	flush()
	return sentences
}

func sentenceBoundary(rest string) bool {
	if rest == "" {
		return true
	}
	if rest[0] == '\n' {
		return true
	}
	trimmed := strings.TrimLeft(rest, " \t")
	if len(trimmed) == len(rest) {
		// No whitespace after the punctuation: "3.14", "e.g.x".
		return false
	}
	if trimmed == "" || trimmed[0] == '\n' {
		return true
	}
	r, _ := utf8.DecodeRuneInString(trimmed)
	return unicode.IsUpper(r)
}

// splitElement splits an oversized atomic element by line, never mid-line.
// Code blocks keep their opening fence (with language tag) and a closing
// fence on every sub-chunk.
func (s *Segmenter) splitElement(el *structure.Element) []string {
	if el.Kind == structure.KindCodeBlock {
		return s.splitCodeBlock(el)
	}
	return s.splitLines(el.Lines, "", "")
}

func (s *Segmenter) splitCodeBlock(el *structure.Element) []string {
	open := "```"
	if el.Language != "" {
		open += el.Language
	}
	const closing = "```"

	body := el.Lines
	if len(body) > 0 && strings.HasPrefix(strings.TrimSpace(body[0]), "```") {
		body = body[1:]
	}
	if len(body) > 0 && strings.TrimSpace(body[len(body)-1]) == closing {
		body = body[:len(body)-1]
	}
	return s.splitLines(body, open, closing)
}

// splitLines greedily packs whole lines under the budget, wrapping each
// sub-chunk with the given prefix and suffix lines when non-empty.
func (s *Segmenter) splitLines(lines []string, prefix, suffix string) []string {
	max := s.cfg.MaxTokensPerChunk
	frame := s.tok.Count(prefix) + s.tok.Count(suffix)

	var out []string
	var cur []string
	curTokens := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		parts := make([]string, 0, len(cur)+2)
		if prefix != "" {
			parts = append(parts, prefix)
		}
		parts = append(parts, cur...)
		if suffix != "" {
			parts = append(parts, suffix)
		}
		out = append(out, strings.Join(parts, "\n"))
		cur = nil
		curTokens = 0
	}

	for _, line := range lines {
		lt := s.tok.Count(line)
		if len(cur) > 0 && frame+curTokens+lt > max {
			flush()
		}
		cur = append(cur, line)
		curTokens += lt
	}
	flush()
	return out
}
