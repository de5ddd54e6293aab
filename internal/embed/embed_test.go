package embed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestForDocuments_PrefixesEach(t *testing.T) {
	got := ForDocuments([]string{"alpha", "beta"})
	if len(got) != 2 {
		t.Fatalf("expected 2 texts, got %d", len(got))
	}
	for i, text := range got {
		if !strings.HasPrefix(text, DocPrefix) {
			t.Errorf("text[%d] missing document prefix: %q", i, text)
		}
	}
	if got[0] != DocPrefix+"alpha" {
		t.Errorf("unexpected prefixed text: %q", got[0])
	}
}

func TestForQuery_Prefix(t *testing.T) {
	if got := ForQuery("find this"); got != QueryPrefix+"find this" {
		t.Errorf("unexpected query text: %q", got)
	}
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := 0; attempt < 10; attempt++ {
		d := Backoff(attempt)
		if d < time.Second {
			t.Errorf("attempt %d: backoff %v below 1s floor", attempt, d)
		}
		if d > 45*time.Second {
			t.Errorf("attempt %d: backoff %v above 30s cap plus jitter", attempt, d)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&RetryableError{StatusCode: 503}) {
		t.Error("retryable error not recognized")
	}
	if IsRetryable(errors.New("permanent")) {
		t.Error("plain error should not be retryable")
	}
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("unexpected model %q", req.Model)
		}
		vectors := make([][]float32, len(req.Input))
		for i := range vectors {
			vectors[i] = []float32{float32(i), 1, 2}
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: vectors})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "nomic-embed-text")
	defer e.Close()

	vectors, err := e.Embed(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[1][0] != 1 {
		t.Errorf("vectors out of order: %v", vectors[1])
	}
}

func TestOllamaEmbedder_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "")
	defer e.Close()

	_, err := e.Embed(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsRetryable(err) {
		t.Errorf("503 should be retryable, got %v", err)
	}
}

func TestOllamaEmbedder_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{1}}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "")
	defer e.Close()

	if _, err := e.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected count mismatch error")
	}
}

func TestOllamaEmbedder_EmptyInput(t *testing.T) {
	e := NewOllamaEmbedder("http://localhost:1", "")
	defer e.Close()
	vectors, err := e.Embed(context.Background(), nil)
	if err != nil || vectors != nil {
		t.Errorf("empty input should short-circuit, got %v %v", vectors, err)
	}
}

func TestOllamaEmbedder_Dimensions(t *testing.T) {
	if d := NewOllamaEmbedder("", "nomic-embed-text").Dimension(); d != 768 {
		t.Errorf("expected 768, got %d", d)
	}
	if d := NewOllamaEmbedder("", "mystery-model").Dimension(); d != defaultOllamaDimension {
		t.Errorf("expected default dimension, got %d", d)
	}
}

func TestNewOpenAIEmbedder_Validation(t *testing.T) {
	if _, err := NewOpenAIEmbedder("", "text-embedding-3-small"); err == nil {
		t.Error("expected error for missing api key")
	}
	if _, err := NewOpenAIEmbedder("key", "bogus-model"); err == nil {
		t.Error("expected error for unknown model")
	}
	e, err := NewOpenAIEmbedder("key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Dimension() != 1536 {
		t.Errorf("expected default model dimension 1536, got %d", e.Dimension())
	}
}
