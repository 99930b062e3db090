package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is a saved line for an authenticated shopper. Carts never hold
// stock; availability is only checked at checkout.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	Color     *string   `gorm:"column:color"`
	Size      *string   `gorm:"column:size"`
	Material  *string   `gorm:"column:material"`
	Qty       int       `gorm:"column:qty;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CartItem) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
