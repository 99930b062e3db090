package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Collection groups products for the public catalog.
type Collection struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex"`
	Description *string   `gorm:"column:description"`
	Position    int       `gorm:"column:position;not null;default:0"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	Products    []Product `gorm:"foreignKey:CollectionID"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Collection) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
