package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"aroma-assistant-be/internal/config"
	"aroma-assistant-be/pkg/embedding"
)

type unitEmbedder struct{}

func (unitEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0, 0}},
	}, nil
}

func TestBuildKnowledgeIndexMissingCorpusIsFatal(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Dialogue: config.DialogueConfig{
			CorpusFile:   filepath.Join(dir, "missing.txt"),
			IndexFile:    filepath.Join(dir, "index.json"),
			IndexBackend: "file",
		},
	}

	if _, err := buildKnowledgeIndex(cfg, nil, unitEmbedder{}); err == nil {
		t.Fatal("expected error when the corpus must be built but is missing")
	}
}

func TestBuildKnowledgeIndexDisabledWithoutCorpus(t *testing.T) {
	cfg := &config.Config{
		Dialogue: config.DialogueConfig{CorpusFile: ""},
	}

	idx, err := buildKnowledgeIndex(cfg, nil, unitEmbedder{})
	if err != nil {
		t.Fatalf("explicitly disabled search must not fail startup: %v", err)
	}
	if idx != nil {
		t.Errorf("idx = %v, want nil when no corpus is configured", idx)
	}
}

func TestBuildKnowledgeIndexFromCorpus(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.txt")
	if err := os.WriteFile(corpusPath, []byte("# Lavender\nCalming.\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		Dialogue: config.DialogueConfig{
			CorpusFile:   corpusPath,
			IndexFile:    filepath.Join(dir, "index.json"),
			IndexBackend: "file",
		},
	}

	idx, err := buildKnowledgeIndex(cfg, nil, unitEmbedder{})
	if err != nil {
		t.Fatalf("buildKnowledgeIndex: %v", err)
	}
	if idx == nil {
		t.Fatal("idx = nil for a readable corpus")
	}
}
