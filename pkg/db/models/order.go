package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luciagrant/mercadito-backend/pkg/enums"
)

// Order is the settlement record produced by checkout. Customer contact
// details are snapshotted on the order so later profile edits do not rewrite
// history.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber   int64               `gorm:"column:order_number;not null;uniqueIndex"`
	UserID        *uuid.UUID          `gorm:"column:user_id;type:uuid"`
	CustomerName  string              `gorm:"column:customer_name;not null"`
	CustomerPhone string              `gorm:"column:customer_phone;not null"`
	CustomerEmail *string             `gorm:"column:customer_email"`
	ShippingAddr  *string             `gorm:"column:shipping_address"`
	Notes         *string             `gorm:"column:notes"`
	Currency      enums.Currency      `gorm:"column:currency;type:text;not null;default:'MXN'"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending_confirmation'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	PaymentMethod *enums.PaymentMethod `gorm:"column:payment_method;type:text"`
	SubtotalCents int                 `gorm:"column:subtotal_cents;not null"`
	ShippingCents *int                `gorm:"column:shipping_cents"`
	TotalCents    int                 `gorm:"column:total_cents;not null"`
	PaidAt        *time.Time          `gorm:"column:paid_at"`
	CanceledAt    *time.Time          `gorm:"column:canceled_at"`
	Lines         []OrderLine         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Reservations  []Reservation       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
