package entity

import (
	"time"

	"github.com/google/uuid"
)

// CatalogItem is the relational definition of one priced line item
type CatalogItem struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"uniqueIndex"`
	Volume    float64
	Price     float64
	CreatedAt time.Time
	UpdatedAt *time.Time
}
