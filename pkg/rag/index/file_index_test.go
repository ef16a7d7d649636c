package index

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aroma-assistant-be/pkg/embedding"
)

// vectorEmbedder assigns fixed unit vectors by keyword so distances are
// predictable without a live embedding backend.
type vectorEmbedder struct {
	calls int
}

func (e *vectorEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	e.calls++
	vec := []float32{0, 0, 1}
	switch {
	case strings.Contains(strings.ToLower(text), "lavender"):
		vec = []float32{1, 0, 0}
	case strings.Contains(strings.ToLower(text), "bergamot"):
		vec = []float32{0, 1, 0}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

const testCorpus = `# Lavender
Lavender is calming and floral.

# Bergamot
Bergamot is bright and citrusy.
`

func buildTestIndex(t *testing.T) (*FileIndex, string, *vectorEmbedder) {
	t.Helper()
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.txt")
	indexPath := filepath.Join(dir, "index.json")
	if err := os.WriteFile(corpusPath, []byte(testCorpus), 0644); err != nil {
		t.Fatal(err)
	}

	embedder := &vectorEmbedder{}
	idx, err := LoadOrBuildFileIndex(indexPath, corpusPath, embedder)
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	return idx, indexPath, embedder
}

func TestBuildIndexFromCorpus(t *testing.T) {
	idx, indexPath, _ := buildTestIndex(t)

	if idx.Len() != 2 {
		t.Fatalf("Len = %d, want 2 sections", idx.Len())
	}
	if _, err := os.Stat(indexPath); err != nil {
		t.Errorf("index artifact not persisted: %v", err)
	}
}

func TestLoadPersistedIndexSkipsEmbedding(t *testing.T) {
	_, indexPath, _ := buildTestIndex(t)

	// Reload from the artifact: the corpus must not be re-embedded
	freshEmbedder := &vectorEmbedder{}
	idx, err := LoadOrBuildFileIndex(indexPath, "does-not-exist.txt", freshEmbedder)
	if err != nil {
		t.Fatalf("load index: %v", err)
	}
	if idx.Len() != 2 {
		t.Errorf("Len = %d, want 2", idx.Len())
	}
	if freshEmbedder.calls != 0 {
		t.Errorf("embedder called %d times during load, want 0", freshEmbedder.calls)
	}
}

func TestSearchRanksByDistance(t *testing.T) {
	idx, _, _ := buildTestIndex(t)

	scored, err := idx.SearchTopWithScore(context.Background(), "lavender", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(scored) != 2 {
		t.Fatalf("results = %d, want 2", len(scored))
	}
	if !strings.Contains(scored[0].Document.Content, "Lavender") {
		t.Errorf("top result = %q, want the lavender section", scored[0].Document.Content)
	}
	if scored[0].Distance >= scored[1].Distance {
		t.Errorf("results not sorted by distance: %v >= %v", scored[0].Distance, scored[1].Distance)
	}
	// Identical unit vectors sit at distance 0
	if scored[0].Distance > 1e-6 {
		t.Errorf("exact match distance = %v, want ~0", scored[0].Distance)
	}
}

func TestSearchHonorsK(t *testing.T) {
	idx, _, _ := buildTestIndex(t)

	docs, err := idx.SearchTop(context.Background(), "bergamot", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("results = %d, want 1", len(docs))
	}
	if !strings.Contains(docs[0].Content, "Bergamot") {
		t.Errorf("top result = %q, want the bergamot section", docs[0].Content)
	}
}

func TestMissingCorpusFails(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadOrBuildFileIndex(filepath.Join(dir, "index.json"), filepath.Join(dir, "nope.txt"), &vectorEmbedder{})
	if err == nil {
		t.Fatal("expected error for missing corpus")
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"length mismatch", []float32{1, 0}, []float32{1}, 1},
		{"empty", nil, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosineDistance(tt.a, tt.b); got != tt.want {
				t.Errorf("cosineDistance = %v, want %v", got, tt.want)
			}
		})
	}
}
