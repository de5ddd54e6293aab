package note

// FileIdentity describes where a note lives inside its vault.
type FileIdentity struct {
	Name           string   `json:"name"`            // base filename, e.g. "weekly-review.md"
	FolderPath     string   `json:"folder_path"`     // vault-relative folder, e.g. "areas/research"
	FolderSegments []string `json:"folder_segments"` // split folder path, e.g. ["areas", "research"]
}

// Document is the immutable input to segmentation: raw markdown text plus
// already-parsed front matter. Nothing in a Document is mutated after creation.
type Document struct {
	RawText     string         `json:"-"`
	Title       string         `json:"title"`
	File        FileIdentity   `json:"file"`
	FrontMatter map[string]any `json:"front_matter,omitempty"`
}

// Chunk is a bounded contiguous span of a document's text. Index and
// RelativePosition are derived from the final chunk count, so they are only
// assigned once the full sequence is materialized.
type Chunk struct {
	Index            int     `json:"index"`
	Text             string  `json:"text"`
	TokenCount       int     `json:"token_count"`
	RelativePosition float64 `json:"relative_position"`
}

// ContentFeatures are pattern-derived flags and counts for a chunk's text.
type ContentFeatures struct {
	HasCode          bool    `json:"has_code"`
	HasLinks         bool    `json:"has_links"`
	HasTags          bool    `json:"has_tags"`
	HasHeadings      bool    `json:"has_headings"`
	QuestionCount    int     `json:"question_count"`
	ExclamationCount int     `json:"exclamation_count"`
	WordCount        int     `json:"word_count"`
	SentenceCount    int     `json:"sentence_count"`
	AvgWordLength    float64 `json:"avg_word_length"`
}

// EnrichedChunk is the final pipeline output. EnrichedText (context preamble
// plus the chunk's pre-overlap body) is what gets embedded; Text may carry an
// overlap prefix copied from the previous chunk.
type EnrichedChunk struct {
	Chunk
	EnrichedText string          `json:"enriched_text"`
	Features     ContentFeatures `json:"features"`
}
