// Package structure classifies raw markdown into an ordered sequence of typed
// elements. Classification is line based and never fails: malformed constructs
// (an unterminated code fence, ragged list indentation) degrade to consuming
// the remaining input as the current element.
package structure

import (
	"regexp"
	"strings"
)

// Kind identifies the structural type of an element.
type Kind int

const (
	KindText Kind = iota
	KindHeader
	KindCodeBlock
	KindTable
	KindList
	KindBlockQuote
	KindRule
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindCodeBlock:
		return "code_block"
	case KindTable:
		return "table"
	case KindList:
		return "list"
	case KindBlockQuote:
		return "block_quote"
	case KindRule:
		return "rule"
	default:
		return "text"
	}
}

// Element is a classified span of source lines. Lines hold the raw source
// (fences and header markers included) so joining elements reconstructs the
// document's meaningful content. StartLine and EndLine are 1-based and
// inclusive.
type Element struct {
	Kind      Kind
	Level     int    // header level, 1-6; zero otherwise
	Language  string // code block language tag, may be empty
	Lines     []string
	StartLine int
	EndLine   int
}

// Text returns the element's source lines joined back into text.
func (e Element) Text() string {
	return strings.Join(e.Lines, "\n")
}

var (
	headerRe   = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	listItemRe = regexp.MustCompile(`^(\s*)([-*+]|\d+\.)\s+`)
)

// classifier pairs a line predicate with a consumer that builds the element
// starting at that line and reports the index of the first unconsumed line.
// Classifiers are evaluated top to bottom, which makes the priority order
// explicit: code fences first, then headers, tables, lists, block quotes,
// horizontal rules, and finally plain text.
type classifier struct {
	kind    Kind
	match   func(lines []string, i int) bool
	consume func(lines []string, i int) (Element, int)
}

var classifiers = []classifier{
	{KindCodeBlock, matchCodeFence, consumeCodeBlock},
	{KindHeader, matchHeader, consumeHeader},
	{KindTable, matchTable, consumeTable},
	{KindList, matchList, consumeList},
	{KindBlockQuote, matchBlockQuote, consumeBlockQuote},
	{KindRule, matchRule, consumeRule},
	{KindText, matchAny, consumeTextLine},
}

// Parse classifies text into an ordered sequence of elements. Blank lines
// separate elements and are not emitted themselves; the gap is still visible
// through each element's line range.
func Parse(text string) []Element {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lines := strings.Split(text, "\n")

	var elems []Element
	i := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}
		for _, c := range classifiers {
			if !c.match(lines, i) {
				continue
			}
			el, next := c.consume(lines, i)
			elems = append(elems, el)
			i = next
			break
		}
	}
	return elems
}

func matchAny(lines []string, i int) bool { return true }

func matchCodeFence(lines []string, i int) bool {
	return strings.HasPrefix(strings.TrimSpace(lines[i]), "```")
}

// consumeCodeBlock swallows lines verbatim until a closing fence, or end of
// input when the fence is never terminated.
func consumeCodeBlock(lines []string, i int) (Element, int) {
	start := i
	lang := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[i]), "```"))
	j := i + 1
	for j < len(lines) {
		if strings.HasPrefix(strings.TrimSpace(lines[j]), "```") {
			j++
			break
		}
		j++
	}
	return Element{
		Kind:      KindCodeBlock,
		Language:  lang,
		Lines:     append([]string(nil), lines[start:j]...),
		StartLine: start + 1,
		EndLine:   j,
	}, j
}

func matchHeader(lines []string, i int) bool {
	return headerRe.MatchString(lines[i])
}

func consumeHeader(lines []string, i int) (Element, int) {
	m := headerRe.FindStringSubmatch(lines[i])
	return Element{
		Kind:      KindHeader,
		Level:     len(m[1]),
		Lines:     []string{lines[i]},
		StartLine: i + 1,
		EndLine:   i + 1,
	}, i + 1
}

// matchTable requires a pipe-bearing line adjacent to another pipe-bearing
// line; a lone pipe inside prose stays a text line.
func matchTable(lines []string, i int) bool {
	if !strings.Contains(lines[i], "|") {
		return false
	}
	if i+1 < len(lines) && strings.Contains(lines[i+1], "|") {
		return true
	}
	return i > 0 && strings.Contains(lines[i-1], "|")
}

func consumeTable(lines []string, i int) (Element, int) {
	start := i
	j := i
	for j < len(lines) && strings.Contains(lines[j], "|") {
		j++
	}
	return Element{
		Kind:      KindTable,
		Lines:     append([]string(nil), lines[start:j]...),
		StartLine: start + 1,
		EndLine:   j,
	}, j
}

func matchList(lines []string, i int) bool {
	return listItemRe.MatchString(lines[i])
}

// consumeList continues while lines are further list items, blank, or
// indented deeper than the first item.
func consumeList(lines []string, i int) (Element, int) {
	start := i
	firstIndent := indentOf(lines[i])
	j := i + 1
	for j < len(lines) {
		line := lines[j]
		switch {
		case listItemRe.MatchString(line):
			j++
		case strings.TrimSpace(line) == "":
			// A blank continues the list only when list content follows.
			if j+1 < len(lines) && (listItemRe.MatchString(lines[j+1]) || indentOf(lines[j+1]) > firstIndent && strings.TrimSpace(lines[j+1]) != "") {
				j++
				continue
			}
			return listElement(lines, start, j), j
		case indentOf(line) > firstIndent:
			j++
		default:
			return listElement(lines, start, j), j
		}
	}
	return listElement(lines, start, j), j
}

func listElement(lines []string, start, end int) Element {
	return Element{
		Kind:      KindList,
		Lines:     append([]string(nil), lines[start:end]...),
		StartLine: start + 1,
		EndLine:   end,
	}
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

func matchBlockQuote(lines []string, i int) bool {
	return strings.HasPrefix(strings.TrimLeft(lines[i], " \t"), ">")
}

// consumeBlockQuote continues while lines stay quoted or blank.
func consumeBlockQuote(lines []string, i int) (Element, int) {
	start := i
	j := i + 1
	for j < len(lines) {
		trimmed := strings.TrimLeft(lines[j], " \t")
		if strings.HasPrefix(trimmed, ">") {
			j++
			continue
		}
		if strings.TrimSpace(lines[j]) == "" {
			if j+1 < len(lines) && strings.HasPrefix(strings.TrimLeft(lines[j+1], " \t"), ">") {
				j++
				continue
			}
		}
		break
	}
	return Element{
		Kind:      KindBlockQuote,
		Lines:     append([]string(nil), lines[start:j]...),
		StartLine: start + 1,
		EndLine:   j,
	}, j
}

// matchRule recognizes horizontal rules: three or more of the same marker
// character, nothing else on the line.
func matchRule(lines []string, i int) bool {
	s := strings.ReplaceAll(strings.TrimSpace(lines[i]), " ", "")
	if len(s) < 3 {
		return false
	}
	marker := s[0]
	if marker != '*' && marker != '-' && marker != '_' {
		return false
	}
	for k := 1; k < len(s); k++ {
		if s[k] != marker {
			return false
		}
	}
	return true
}

func consumeRule(lines []string, i int) (Element, int) {
	return Element{
		Kind:      KindRule,
		Lines:     []string{lines[i]},
		StartLine: i + 1,
		EndLine:   i + 1,
	}, i + 1
}

func consumeTextLine(lines []string, i int) (Element, int) {
	return Element{
		Kind:      KindText,
		Lines:     []string{lines[i]},
		StartLine: i + 1,
		EndLine:   i + 1,
	}, i + 1
}
