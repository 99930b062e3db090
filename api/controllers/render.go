package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/luciagrant/mercadito-backend/pkg/db/models"
)

type userResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Phone *string   `json:"phone,omitempty"`
	Role  string    `json:"role"`
}

func newUserResponse(user *models.User) userResponse {
	if user == nil {
		return userResponse{}
	}
	return userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Phone: user.Phone,
		Role:  string(user.Role),
	}
}

type productResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Description    *string    `json:"description,omitempty"`
	PriceCents     int        `json:"price_cents"`
	Currency       string     `json:"currency"`
	AvailableStock int        `json:"available_stock"`
	Colors         []string   `json:"colors,omitempty"`
	Sizes          []string   `json:"sizes,omitempty"`
	Materials      []string   `json:"materials,omitempty"`
	ImageURL       *string    `json:"image_url,omitempty"`
	IsActive       bool       `json:"is_active"`
	CollectionID   *uuid.UUID `json:"collection_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func newProductResponse(product *models.Product, available int) productResponse {
	if product == nil {
		return productResponse{}
	}
	return productResponse{
		ID:             product.ID,
		Name:           product.Name,
		Slug:           product.Slug,
		Description:    product.Description,
		PriceCents:     product.PriceCents,
		Currency:       product.Currency,
		AvailableStock: available,
		Colors:         product.Colors,
		Sizes:          product.Sizes,
		Materials:      product.Materials,
		ImageURL:       product.ImageURL,
		IsActive:       product.IsActive,
		CollectionID:   product.CollectionID,
		CreatedAt:      product.CreatedAt,
	}
}

type collectionResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	Position    int       `json:"position"`
	IsActive    bool      `json:"is_active"`
}

func newCollectionResponse(collection *models.Collection) collectionResponse {
	if collection == nil {
		return collectionResponse{}
	}
	return collectionResponse{
		ID:          collection.ID,
		Name:        collection.Name,
		Slug:        collection.Slug,
		Description: collection.Description,
		Position:    collection.Position,
		IsActive:    collection.IsActive,
	}
}

type cartItemResponse struct {
	ID        uuid.UUID        `json:"id"`
	ProductID uuid.UUID        `json:"product_id"`
	Product   *productResponse `json:"product,omitempty"`
	Color     *string          `json:"color,omitempty"`
	Size      *string          `json:"size,omitempty"`
	Material  *string          `json:"material,omitempty"`
	Qty       int              `json:"qty"`
}

func newCartItemResponse(item models.CartItem) cartItemResponse {
	resp := cartItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		Color:     item.Color,
		Size:      item.Size,
		Material:  item.Material,
		Qty:       item.Qty,
	}
	if item.Product != nil {
		product := newProductResponse(item.Product, 0)
		resp.Product = &product
	}
	return resp
}

type orderLineResponse struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Color          *string   `json:"color,omitempty"`
	Size           *string   `json:"size,omitempty"`
	Material       *string   `json:"material,omitempty"`
	Qty            int       `json:"qty"`
	UnitPriceCents int       `json:"unit_price_cents"`
	LineTotalCents int       `json:"line_total_cents"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   int64               `json:"order_number"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	CustomerEmail *string             `json:"customer_email,omitempty"`
	ShippingAddr  *string             `json:"shipping_address,omitempty"`
	Notes         *string             `json:"notes,omitempty"`
	Currency      string              `json:"currency"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	PaymentMethod *string             `json:"payment_method,omitempty"`
	SubtotalCents int                 `json:"subtotal_cents"`
	ShippingCents *int                `json:"shipping_cents,omitempty"`
	TotalCents    int                 `json:"total_cents"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	CanceledAt    *time.Time          `json:"canceled_at,omitempty"`
	Lines         []orderLineResponse `json:"lines"`
	CreatedAt     time.Time           `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	if order == nil {
		return orderResponse{}
	}
	lines := make([]orderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLineResponse{
			ID:             line.ID,
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			Color:          line.Color,
			Size:           line.Size,
			Material:       line.Material,
			Qty:            line.Qty,
			UnitPriceCents: line.UnitPriceCents,
			LineTotalCents: line.LineTotalCents,
		})
	}
	var method *string
	if order.PaymentMethod != nil {
		value := string(*order.PaymentMethod)
		method = &value
	}
	return orderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		CustomerEmail: order.CustomerEmail,
		ShippingAddr:  order.ShippingAddr,
		Notes:         order.Notes,
		Currency:      string(order.Currency),
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		PaymentMethod: method,
		SubtotalCents: order.SubtotalCents,
		ShippingCents: order.ShippingCents,
		TotalCents:    order.TotalCents,
		PaidAt:        order.PaidAt,
		CanceledAt:    order.CanceledAt,
		Lines:         lines,
		CreatedAt:     order.CreatedAt,
	}
}
