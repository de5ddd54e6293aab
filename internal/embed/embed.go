// Package embed turns enriched chunk text into dense vectors through a
// pluggable backend (OpenAI or a local Ollama server).
package embed

import "context"

// Task-specific prefixes. Asymmetric embedding models (nomic-embed-text and
// friends) are trained with distinct document and query prefixes; we apply
// them uniformly so one configured model serves both sides.
const (
	DocPrefix   = "search_document: "
	QueryPrefix = "search_query: "
)

// Embedder produces vectors for batches of text.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension is the width of the vectors this embedder produces.
	Dimension() int
	Close()
}

// ForDocuments applies the document prefix to each text.
func ForDocuments(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = DocPrefix + t
	}
	return out
}

// ForQuery applies the query prefix.
func ForQuery(text string) string {
	return QueryPrefix + text
}
