package structure

import (
	"strings"
	"testing"
)

func kinds(elems []Element) []Kind {
	out := make([]Kind, len(elems))
	for i, e := range elems {
		out[i] = e.Kind
	}
	return out
}

func TestParse_EmptyInput(t *testing.T) {
	if elems := Parse(""); elems != nil {
		t.Errorf("expected nil for empty input, got %v", elems)
	}
	if elems := Parse("  \n \t \n"); elems != nil {
		t.Errorf("expected nil for whitespace-only input, got %v", elems)
	}
}

func TestParse_HeaderLevels(t *testing.T) {
	elems := Parse("# Top\n\n### Deep\n\nplain")
	if len(elems) != 3 {
		t.Fatalf("expected 3 elements, got %d: %v", len(elems), kinds(elems))
	}
	if elems[0].Kind != KindHeader || elems[0].Level != 1 {
		t.Errorf("element 0: expected level-1 header, got %v level %d", elems[0].Kind, elems[0].Level)
	}
	if elems[1].Kind != KindHeader || elems[1].Level != 3 {
		t.Errorf("element 1: expected level-3 header, got %v level %d", elems[1].Kind, elems[1].Level)
	}
	if elems[2].Kind != KindText {
		t.Errorf("element 2: expected text, got %v", elems[2].Kind)
	}
}

func TestParse_CodeBlockWithLanguage(t *testing.T) {
	elems := Parse("```go\nfunc main() {}\n```\nafter")
	if len(elems) != 2 {
		t.Fatalf("expected 2 elements, got %d: %v", len(elems), kinds(elems))
	}
	code := elems[0]
	if code.Kind != KindCodeBlock {
		t.Fatalf("expected code block, got %v", code.Kind)
	}
	if code.Language != "go" {
		t.Errorf("expected language %q, got %q", "go", code.Language)
	}
	if len(code.Lines) != 3 {
		t.Errorf("expected 3 lines including fences, got %d", len(code.Lines))
	}
	if code.StartLine != 1 || code.EndLine != 3 {
		t.Errorf("expected line range 1-3, got %d-%d", code.StartLine, code.EndLine)
	}
}

func TestParse_UnterminatedFenceConsumesToEnd(t *testing.T) {
	elems := Parse("```python\nprint('hi')\nmore code")
	if len(elems) != 1 {
		t.Fatalf("expected 1 element, got %d: %v", len(elems), kinds(elems))
	}
	if elems[0].Kind != KindCodeBlock {
		t.Fatalf("expected code block, got %v", elems[0].Kind)
	}
	if len(elems[0].Lines) != 3 {
		t.Errorf("expected fence to consume all 3 lines, got %d", len(elems[0].Lines))
	}
}

func TestParse_Table(t *testing.T) {
	elems := Parse("| a | b |\n|---|---|\n| 1 | 2 |\n\ntext after")
	if len(elems) != 2 {
		t.Fatalf("expected 2 elements, got %d: %v", len(elems), kinds(elems))
	}
	if elems[0].Kind != KindTable {
		t.Fatalf("expected table, got %v", elems[0].Kind)
	}
	if len(elems[0].Lines) != 3 {
		t.Errorf("expected 3 table rows, got %d", len(elems[0].Lines))
	}
}

func TestParse_LonePipeIsText(t *testing.T) {
	elems := Parse("either | or\n\nsecond paragraph")
	if elems[0].Kind != KindText {
		t.Errorf("a single pipe-bearing line should stay text, got %v", elems[0].Kind)
	}
}

func TestParse_ListWithContinuation(t *testing.T) {
	input := strings.Join([]string{
		"- first",
		"  wrapped continuation",
		"- second",
		"1. numbered",
		"",
		"unrelated paragraph",
	}, "\n")
	elems := Parse(input)
	if len(elems) != 2 {
		t.Fatalf("expected 2 elements, got %d: %v", len(elems), kinds(elems))
	}
	if elems[0].Kind != KindList {
		t.Fatalf("expected list, got %v", elems[0].Kind)
	}
	if len(elems[0].Lines) != 4 {
		t.Errorf("expected 4 list lines, got %d: %q", len(elems[0].Lines), elems[0].Lines)
	}
	if elems[1].Kind != KindText {
		t.Errorf("expected trailing text element, got %v", elems[1].Kind)
	}
}

func TestParse_BlockQuote(t *testing.T) {
	elems := Parse("> quoted\n> more\n\nplain")
	if len(elems) != 2 {
		t.Fatalf("expected 2 elements, got %d: %v", len(elems), kinds(elems))
	}
	if elems[0].Kind != KindBlockQuote {
		t.Fatalf("expected block quote, got %v", elems[0].Kind)
	}
	if len(elems[0].Lines) != 2 {
		t.Errorf("expected 2 quote lines, got %d", len(elems[0].Lines))
	}
}

func TestParse_HorizontalRule(t *testing.T) {
	for _, rule := range []string{"---", "***", "___", "-----"} {
		elems := Parse("before\n\n" + rule + "\n\nafter")
		if len(elems) != 3 {
			t.Fatalf("rule %q: expected 3 elements, got %d: %v", rule, len(elems), kinds(elems))
		}
		if elems[1].Kind != KindRule {
			t.Errorf("rule %q: expected rule element, got %v", rule, elems[1].Kind)
		}
	}
}

func TestParse_DashListItemIsNotRule(t *testing.T) {
	elems := Parse("- item one\n- item two")
	if len(elems) != 1 || elems[0].Kind != KindList {
		t.Fatalf("expected a single list, got %v", kinds(elems))
	}
}

func TestParse_OrderPreserved(t *testing.T) {
	input := "# H\n\npara\n\n```\ncode\n```\n\n> quote"
	elems := Parse(input)
	want := []Kind{KindHeader, KindText, KindCodeBlock, KindBlockQuote}
	got := kinds(elems)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestGroup_DeeperHeaderStaysInSection(t *testing.T) {
	elems := Parse("# A\n\nalpha\n\n## A1\n\nnested\n\n# B\n\nbeta")
	secs := Group(elems)
	if len(secs) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(secs))
	}
	if secs[0].Level != 1 || secs[1].Level != 1 {
		t.Errorf("expected both sections at level 1, got %d and %d", secs[0].Level, secs[1].Level)
	}
	// Section A holds its own header, text, the nested header, and the
	// nested text.
	if len(secs[0].Elements) != 4 {
		t.Errorf("expected 4 elements in first section, got %d", len(secs[0].Elements))
	}
	if len(secs[1].Elements) != 2 {
		t.Errorf("expected 2 elements in second section, got %d", len(secs[1].Elements))
	}
}

func TestGroup_PreambleBeforeFirstHeader(t *testing.T) {
	elems := Parse("intro text\n\n# First\n\nbody")
	secs := Group(elems)
	if len(secs) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(secs))
	}
	if secs[0].Level != 0 {
		t.Errorf("expected headerless preamble section, got level %d", secs[0].Level)
	}
	if secs[1].Level != 1 {
		t.Errorf("expected level-1 section, got %d", secs[1].Level)
	}
}

func TestGroup_SiblingSameLevelSplits(t *testing.T) {
	elems := Parse("## One\n\na\n\n## Two\n\nb")
	secs := Group(elems)
	if len(secs) != 2 {
		t.Fatalf("expected 2 sections for sibling headers, got %d", len(secs))
	}
}
