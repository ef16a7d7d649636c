package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"aroma-assistant-be/pkg/embedding"
	"aroma-assistant-be/pkg/store"
	"aroma-assistant-be/pkg/utils"
)

// indexedChunk is the persisted form of one corpus section
type indexedChunk struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

type indexFile struct {
	Version int            `json:"version"`
	Model   string         `json:"model,omitempty"`
	Chunks  []indexedChunk `json:"chunks"`
}

// FileIndex is an in-process vector index over the knowledge corpus,
// persisted as a JSON artifact on disk. It embeds corpus sections once at
// build time and answers nearest-neighbor queries by cosine distance.
type FileIndex struct {
	embedder embedding.EmbeddingProvider
	chunks   []indexedChunk
}

var _ KnowledgeIndex = &FileIndex{}

// LoadOrBuildFileIndex loads a previously persisted index from indexPath, or
// builds one from the corpus at corpusPath and persists it. A missing corpus
// when a build is required is a hard error; the caller treats it as fatal.
func LoadOrBuildFileIndex(indexPath, corpusPath string, embedder embedding.EmbeddingProvider) (*FileIndex, error) {
	if data, err := os.ReadFile(indexPath); err == nil {
		var f indexFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse index file %s: %w", indexPath, err)
		}
		return &FileIndex{embedder: embedder, chunks: f.Chunks}, nil
	}

	corpus, err := os.ReadFile(corpusPath)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", corpusPath, err)
	}

	sections := utils.SplitByHeaders(string(corpus))
	if len(sections) == 0 {
		return nil, fmt.Errorf("corpus %s produced no sections", corpusPath)
	}

	chunks := make([]indexedChunk, 0, len(sections))
	for i, section := range sections {
		res, err := embedder.Generate(section, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return nil, fmt.Errorf("embed section %d: %w", i, err)
		}
		chunks = append(chunks, indexedChunk{
			ID:        fmt.Sprintf("chunk-%04d", i),
			Content:   section,
			Embedding: res.Embedding.Values,
		})
	}

	idx := &FileIndex{embedder: embedder, chunks: chunks}
	if err := idx.save(indexPath); err != nil {
		return nil, err
	}
	return idx, nil
}

func (f *FileIndex) save(path string) error {
	data, err := json.Marshal(indexFile{Version: 1, Chunks: f.chunks})
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("persist index %s: %w", path, err)
	}
	return nil
}

// Len returns the number of indexed sections
func (f *FileIndex) Len() int {
	return len(f.chunks)
}

func (f *FileIndex) SearchTop(ctx context.Context, query string, k int) ([]store.Document, error) {
	scored, err := f.SearchTopWithScore(ctx, query, k)
	if err != nil {
		return nil, err
	}
	docs := make([]store.Document, len(scored))
	for i, s := range scored {
		docs[i] = s.Document
	}
	return docs, nil
}

func (f *FileIndex) SearchTopWithScore(ctx context.Context, query string, k int) ([]ScoredDocument, error) {
	if k <= 0 {
		k = 5
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := f.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVec := res.Embedding.Values

	scored := make([]ScoredDocument, 0, len(f.chunks))
	for _, c := range f.chunks {
		scored = append(scored, ScoredDocument{
			Document: store.Document{ID: c.ID, Content: c.Content},
			Distance: cosineDistance(queryVec, c.Embedding),
		})
	}

	// Stable sort keeps repeated queries deterministic on distance ties
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Distance < scored[j].Distance
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// cosineDistance assumes both vectors are unit-normalized, so the distance
// reduces to 1 - dot(a, b). Mismatched lengths score as maximally distant.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return 1 - dot
}
