package store

import (
	"math"
	"reflect"
	"testing"
)

func TestVectorSerializeRoundTrip(t *testing.T) {
	original := []float32{0.5, -1.25, 3.75, 0, math.MaxFloat32}
	blob := serializeVector(original)
	if len(blob) != len(original)*4 {
		t.Fatalf("expected %d bytes, got %d", len(original)*4, len(blob))
	}
	got := deserializeVector(blob)
	if !reflect.DeepEqual(got, original) {
		t.Errorf("round trip mismatch: %v != %v", got, original)
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}

	if sim := cosineSimilarity(a, []float32{1, 0, 0}); math.Abs(sim-1) > 1e-9 {
		t.Errorf("identical vectors: expected 1, got %f", sim)
	}
	if sim := cosineSimilarity(a, []float32{0, 1, 0}); math.Abs(sim) > 1e-9 {
		t.Errorf("orthogonal vectors: expected 0, got %f", sim)
	}
	if sim := cosineSimilarity(a, []float32{-1, 0, 0}); math.Abs(sim+1) > 1e-9 {
		t.Errorf("opposite vectors: expected -1, got %f", sim)
	}
	if sim := cosineSimilarity(a, []float32{1, 0}); sim != 0 {
		t.Errorf("dimension mismatch: expected 0, got %f", sim)
	}
	if sim := cosineSimilarity(a, []float32{0, 0, 0}); sim != 0 {
		t.Errorf("zero vector: expected 0, got %f", sim)
	}
}

func TestCosineSimilarity_ScaleInvariant(t *testing.T) {
	a := []float32{0.3, 0.7, 0.1}
	b := []float32{0.6, 1.4, 0.2}
	if sim := cosineSimilarity(a, b); math.Abs(sim-1) > 1e-6 {
		t.Errorf("scaled vector: expected ~1, got %f", sim)
	}
}

func TestDeterministicIDs(t *testing.T) {
	docA := DocumentID("areas/research/papers.md")
	docB := DocumentID("areas/research/papers.md")
	if docA != docB {
		t.Errorf("document IDs not stable: %s != %s", docA, docB)
	}
	if DocumentID("other.md") == docA {
		t.Error("different paths should yield different IDs")
	}
	if ChunkID(docA, 0) == ChunkID(docA, 1) {
		t.Error("different indexes should yield different chunk IDs")
	}
	if ChunkID(docA, 0) != ChunkID(docB, 0) {
		t.Error("chunk IDs not stable")
	}
}
