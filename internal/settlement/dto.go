package settlement

import (
	"github.com/google/uuid"

	"github.com/luciagrant/mercadito-backend/pkg/enums"
)

// CheckoutLine is one requested product variant at checkout.
type CheckoutLine struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Color     *string   `json:"color,omitempty"`
	Size      *string   `json:"size,omitempty"`
	Material  *string   `json:"material,omitempty"`
	Qty       int       `json:"qty" validate:"required,gt=0"`
}

// CheckoutInput carries everything needed to settle a new order.
type CheckoutInput struct {
	UserID          *uuid.UUID     `json:"-"`
	CustomerName    string         `json:"customer_name" validate:"required"`
	CustomerPhone   string         `json:"customer_phone" validate:"required"`
	CustomerEmail   *string        `json:"customer_email,omitempty" validate:"omitempty,email"`
	ShippingAddress *string        `json:"shipping_address,omitempty"`
	Notes           *string        `json:"notes,omitempty"`
	Currency        enums.Currency `json:"currency,omitempty"`
	ShippingCents   *int           `json:"shipping_cents,omitempty" validate:"omitempty,gte=0"`
	Lines           []CheckoutLine `json:"lines" validate:"required,min=1,dive"`
}

// StatusChangeInput is the generic admin transition request.
type StatusChangeInput struct {
	Status string `json:"status" validate:"required"`
}

// MarkPaidInput optionally records how the customer paid.
type MarkPaidInput struct {
	PaymentMethod *string `json:"payment_method,omitempty"`
}

// ShippingCostInput sets the quoted shipping for an order.
type ShippingCostInput struct {
	ShippingCents int `json:"shipping_cents" validate:"gte=0"`
}
