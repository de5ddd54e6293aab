package enrich

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tgrayson/vaultvec/internal/note"
)

var (
	fencedCodeRe = regexp.MustCompile("(?m)^\\s*```")
	inlineCodeRe = regexp.MustCompile("`[^`\n]+`")
	wikiLinkRe   = regexp.MustCompile(`\[\[[^\]]+\]\]`)
	mdLinkRe     = regexp.MustCompile(`\[[^\]]*\]\([^)\s]+\)`)
	hashtagRe    = regexp.MustCompile(`(?:^|\s)#[\p{L}][\p{L}\p{N}_/-]*`)
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
)

// DetectFeatures computes content flags and counts for a chunk body.
func DetectFeatures(text string) note.ContentFeatures {
	words := strings.Fields(text)

	var runeTotal int
	for _, w := range words {
		runeTotal += utf8.RuneCountInString(strings.TrimFunc(w, unicode.IsPunct))
	}
	avg := 0.0
	if len(words) > 0 {
		avg = float64(runeTotal) / float64(len(words))
	}

	return note.ContentFeatures{
		HasCode:          fencedCodeRe.MatchString(text) || inlineCodeRe.MatchString(text),
		HasLinks:         wikiLinkRe.MatchString(text) || mdLinkRe.MatchString(text),
		HasTags:          hashtagRe.MatchString(text),
		HasHeadings:      headingRe.MatchString(text),
		QuestionCount:    strings.Count(text, "?"),
		ExclamationCount: strings.Count(text, "!"),
		WordCount:        len(words),
		SentenceCount:    countSentences(text),
		AvgWordLength:    avg,
	}
}

// countSentences treats each run of terminal punctuation as one boundary, so
// an ellipsis or "?!" counts once.
func countSentences(text string) int {
	n := 0
	prev := false
	for _, r := range text {
		term := r == '.' || r == '!' || r == '?'
		if term && !prev {
			n++
		}
		prev = term
	}
	return n
}
