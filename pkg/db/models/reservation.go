package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luciagrant/mercadito-backend/pkg/enums"
)

// Reservation is a ledger entry holding stock for an order. Active rows
// subtract from availability without touching the product's stock column;
// consuming a reservation is the only path that deducts stock.
type Reservation struct {
	ID         uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID               `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID  uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index"`
	Color      *string                 `gorm:"column:color"`
	Size       *string                 `gorm:"column:size"`
	Material   *string                 `gorm:"column:material"`
	Qty        int                     `gorm:"column:qty;not null"`
	Status     enums.ReservationStatus `gorm:"column:status;type:text;not null;default:'active'"`
	ConsumedAt *time.Time              `gorm:"column:consumed_at"`
	ReleasedAt *time.Time              `gorm:"column:released_at"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Reservation) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
