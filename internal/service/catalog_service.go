package service

import (
	"context"
	"time"

	"aroma-assistant-be/internal/entity"
	"aroma-assistant-be/internal/repository/contract"
	"aroma-assistant-be/pkg/catalog"

	"github.com/google/uuid"
)

type ICatalogService interface {
	Sync(ctx context.Context, entries []catalog.Entry) error
	LoadEntries(ctx context.Context) ([]catalog.Entry, error)
}

// catalogService mirrors the priced item list into the relational store and
// reads it back for deployments that treat the database as the source of
// truth instead of a CSV export.
type catalogService struct {
	repo contract.CatalogRepository
}

func NewCatalogService(repo contract.CatalogRepository) ICatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) Sync(ctx context.Context, entries []catalog.Entry) error {
	now := time.Now()
	for _, e := range entries {
		item := &entity.CatalogItem{
			Id:        uuid.New(),
			Name:      e.Name,
			Volume:    e.Volume,
			Price:     e.Price,
			CreatedAt: now,
			UpdatedAt: &now,
		}
		if err := s.repo.Upsert(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *catalogService) LoadEntries(ctx context.Context) ([]catalog.Entry, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]catalog.Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, catalog.Entry{
			Name:   item.Name,
			Volume: item.Volume,
			Price:  item.Price,
		})
	}
	return entries, nil
}
