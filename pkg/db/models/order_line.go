package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderLine snapshots a purchased product at checkout time.
type OrderLine struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string     `gorm:"column:product_name;not null"`
	Color          *string    `gorm:"column:color"`
	Size           *string    `gorm:"column:size"`
	Material       *string    `gorm:"column:material"`
	Qty            int        `gorm:"column:qty;not null"`
	UnitPriceCents int        `gorm:"column:unit_price_cents;not null"`
	LineTotalCents int        `gorm:"column:line_total_cents;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (l *OrderLine) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
