package index

import (
	"context"

	"aroma-assistant-be/pkg/store"
)

// ScoredDocument pairs a document with its cosine distance to the query.
// Lower distance means more similar.
type ScoredDocument struct {
	Document store.Document
	Distance float64
}

// KnowledgeIndex is the nearest-neighbor contract the dialogue engine
// depends on. Implementations are read-only after construction and safe for
// concurrent use.
type KnowledgeIndex interface {
	// SearchTop returns the k most similar documents, most similar first.
	SearchTop(ctx context.Context, query string, k int) ([]store.Document, error)

	// SearchTopWithScore returns the k most similar documents with their
	// distances, most similar first.
	SearchTopWithScore(ctx context.Context, query string, k int) ([]ScoredDocument, error)
}
