package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Product is a storefront listing. Stock is nullable: a NULL value means the
// product is untracked and always has zero availability.
type Product struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Slug         string         `gorm:"column:slug;not null;uniqueIndex"`
	Description  *string        `gorm:"column:description"`
	PriceCents   int            `gorm:"column:price_cents;not null"`
	Currency     string         `gorm:"column:currency;type:text;not null;default:'MXN'"`
	Stock        *int           `gorm:"column:stock"`
	Colors       pq.StringArray `gorm:"column:colors;type:text[]"`
	Sizes        pq.StringArray `gorm:"column:sizes;type:text[]"`
	Materials    pq.StringArray `gorm:"column:materials;type:text[]"`
	ImageURL     *string        `gorm:"column:image_url"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	CollectionID *uuid.UUID     `gorm:"column:collection_id;type:uuid"`
	Collection   *Collection    `gorm:"foreignKey:CollectionID"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
