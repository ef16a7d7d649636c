package index

import (
	"context"
	"fmt"
	"os"
	"time"

	"aroma-assistant-be/pkg/embedding"
	"aroma-assistant-be/pkg/store"
	"aroma-assistant-be/pkg/utils"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// DocumentChunk is the pgvector-backed storage row for one corpus section
type DocumentChunk struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Content    string          `gorm:"type:text"`
	Embedding  pgvector.Vector `gorm:"type:vector(1536)"`
	ChunkIndex int             `gorm:"index"`
	CreatedAt  time.Time
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}

// PgvectorIndex answers nearest-neighbor queries with pgvector's cosine
// distance operator, mirroring the file index contract over a database.
type PgvectorIndex struct {
	db       *gorm.DB
	embedder embedding.EmbeddingProvider
}

var _ KnowledgeIndex = &PgvectorIndex{}

// NewPgvectorIndex migrates the chunk table and ingests the corpus at
// corpusPath when the table is empty.
func NewPgvectorIndex(db *gorm.DB, embedder embedding.EmbeddingProvider, corpusPath string) (*PgvectorIndex, error) {
	if err := db.AutoMigrate(&DocumentChunk{}); err != nil {
		return nil, fmt.Errorf("migrate document_chunks: %w", err)
	}

	var count int64
	if err := db.Model(&DocumentChunk{}).Count(&count).Error; err != nil {
		return nil, err
	}

	idx := &PgvectorIndex{db: db, embedder: embedder}
	if count > 0 {
		return idx, nil
	}

	corpus, err := os.ReadFile(corpusPath)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", corpusPath, err)
	}
	if err := idx.ingest(string(corpus)); err != nil {
		return nil, err
	}
	return idx, nil
}

func (p *PgvectorIndex) ingest(corpus string) error {
	sections := utils.SplitByHeaders(corpus)
	if len(sections) == 0 {
		return fmt.Errorf("corpus produced no sections")
	}

	rows := make([]*DocumentChunk, 0, len(sections))
	for i, section := range sections {
		res, err := p.embedder.Generate(section, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return fmt.Errorf("embed section %d: %w", i, err)
		}
		rows = append(rows, &DocumentChunk{
			Id:         uuid.New(),
			Content:    section,
			Embedding:  pgvector.NewVector(res.Embedding.Values),
			ChunkIndex: i,
			CreatedAt:  time.Now(),
		})
	}

	return p.db.Create(rows).Error
}

func (p *PgvectorIndex) SearchTop(ctx context.Context, query string, k int) ([]store.Document, error) {
	scored, err := p.SearchTopWithScore(ctx, query, k)
	if err != nil {
		return nil, err
	}
	docs := make([]store.Document, len(scored))
	for i, s := range scored {
		docs[i] = s.Document
	}
	return docs, nil
}

func (p *PgvectorIndex) SearchTopWithScore(ctx context.Context, query string, k int) ([]ScoredDocument, error) {
	if k <= 0 {
		k = 5
	}

	res, err := p.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVector := pgvector.NewVector(res.Embedding.Values)

	// Cosine distance in pgvector: embedding <=> query, lower is closer
	type result struct {
		DocumentChunk
		Distance float64
	}
	var results []result

	err = p.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, embedding <=> ? as distance", queryVector).
		Order("distance ASC").
		Limit(k).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredDocument, len(results))
	for i, r := range results {
		scored[i] = ScoredDocument{
			Document: store.Document{ID: r.Id.String(), Content: r.Content},
			Distance: r.Distance,
		}
	}
	return scored, nil
}
