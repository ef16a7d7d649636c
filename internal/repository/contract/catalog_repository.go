package contract

import (
	"context"

	"aroma-assistant-be/internal/entity"
)

// CatalogRepository persists catalog items in the relational store
type CatalogRepository interface {
	Create(ctx context.Context, item *entity.CatalogItem) error
	Upsert(ctx context.Context, item *entity.CatalogItem) error
	FindByName(ctx context.Context, name string) (*entity.CatalogItem, error)
	FindAll(ctx context.Context) ([]*entity.CatalogItem, error)
}
