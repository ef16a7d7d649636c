package implementation

import (
	"context"
	"errors"

	"aroma-assistant-be/internal/entity"
	"aroma-assistant-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepositoryImpl struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) contract.CatalogRepository {
	return &CatalogRepositoryImpl{db: db}
}

func (r *CatalogRepositoryImpl) Create(ctx context.Context, item *entity.CatalogItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *CatalogRepositoryImpl) Upsert(ctx context.Context, item *entity.CatalogItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"volume", "price", "updated_at"}),
		}).
		Create(item).Error
}

func (r *CatalogRepositoryImpl) FindByName(ctx context.Context, name string) (*entity.CatalogItem, error) {
	var item entity.CatalogItem
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *CatalogRepositoryImpl) FindAll(ctx context.Context) ([]*entity.CatalogItem, error) {
	var items []*entity.CatalogItem
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
