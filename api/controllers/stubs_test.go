package controllers

import (
	"context"
	"time"

	"github.com/google/uuid"

	cartsvc "github.com/luciagrant/mercadito-backend/internal/cart"
	"github.com/luciagrant/mercadito-backend/internal/catalog"
	"github.com/luciagrant/mercadito-backend/internal/orders"
	"github.com/luciagrant/mercadito-backend/internal/reservations"
	"github.com/luciagrant/mercadito-backend/internal/settlement"
	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	"github.com/luciagrant/mercadito-backend/pkg/enums"
	"github.com/luciagrant/mercadito-backend/pkg/pagination"
)

type stubCatalog struct {
	products    []models.Product
	product     *models.Product
	available   map[uuid.UUID]int
	listFilter  catalog.ListFilter
	listParams  pagination.Params
	created     *models.Product
	updated     *models.Product
	deletedID   uuid.UUID
	err         error
	availErr    error
	singleAvail int
}

func (s *stubCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.product, s.err
}

func (s *stubCatalog) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.product, s.err
}

func (s *stubCatalog) ListProducts(ctx context.Context, filter catalog.ListFilter, params pagination.Params) ([]models.Product, error) {
	s.listFilter = filter
	s.listParams = params
	return s.products, s.err
}

func (s *stubCatalog) AvailableStock(ctx context.Context, key reservations.VariantKey) (int, error) {
	return s.singleAvail, s.availErr
}

func (s *stubCatalog) AvailableStockBatch(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	if s.availErr != nil {
		return nil, s.availErr
	}
	if s.available == nil {
		return map[uuid.UUID]int{}, nil
	}
	return s.available, nil
}

func (s *stubCatalog) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = product
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return product, nil
}

func (s *stubCatalog) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.updated = product
	return product, nil
}

func (s *stubCatalog) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	s.deletedID = id
	return s.err
}

type stubCart struct {
	items   []models.CartItem
	item    *models.CartItem
	userID  uuid.UUID
	itemID  uuid.UUID
	add     cartsvc.AddItemInput
	update  cartsvc.UpdateItemInput
	cleared bool
	err     error
}

func (s *stubCart) List(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	s.userID = userID
	return s.items, s.err
}

func (s *stubCart) Add(ctx context.Context, userID uuid.UUID, input cartsvc.AddItemInput) (*models.CartItem, error) {
	s.userID = userID
	s.add = input
	return s.item, s.err
}

func (s *stubCart) UpdateQty(ctx context.Context, userID, itemID uuid.UUID, input cartsvc.UpdateItemInput) (*models.CartItem, error) {
	s.userID = userID
	s.itemID = itemID
	s.update = input
	return s.item, s.err
}

func (s *stubCart) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	s.userID = userID
	s.itemID = itemID
	return s.err
}

func (s *stubCart) Clear(ctx context.Context, userID uuid.UUID) error {
	s.userID = userID
	s.cleared = true
	return s.err
}

type stubOrderAdmin struct {
	orders     []models.Order
	order      *models.Order
	listFilter orders.ListFilter
	orderID    uuid.UUID
	number     int64
	markPaid   settlement.MarkPaidInput
	status     settlement.StatusChangeInput
	shipping   settlement.ShippingCostInput
	deleted    bool
	err        error
}

func (s *stubOrderAdmin) ListOrders(ctx context.Context, filter orders.ListFilter, params pagination.Params) ([]models.Order, error) {
	s.listFilter = filter
	return s.orders, s.err
}

func (s *stubOrderAdmin) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	s.orderID = orderID
	return s.order, s.err
}

func (s *stubOrderAdmin) GetOrderByNumber(ctx context.Context, number int64) (*models.Order, error) {
	s.number = number
	return s.order, s.err
}

func (s *stubOrderAdmin) MarkOrderPaid(ctx context.Context, orderID uuid.UUID, input settlement.MarkPaidInput) (*models.Order, error) {
	s.orderID = orderID
	s.markPaid = input
	return s.order, s.err
}

func (s *stubOrderAdmin) CancelOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	s.orderID = orderID
	return s.order, s.err
}

func (s *stubOrderAdmin) ChangeOrderStatus(ctx context.Context, orderID uuid.UUID, input settlement.StatusChangeInput) (*models.Order, error) {
	s.orderID = orderID
	s.status = input
	return s.order, s.err
}

func (s *stubOrderAdmin) UpdateShippingCost(ctx context.Context, orderID uuid.UUID, input settlement.ShippingCostInput) (*models.Order, error) {
	s.orderID = orderID
	s.shipping = input
	return s.order, s.err
}

func (s *stubOrderAdmin) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	s.orderID = orderID
	s.deleted = true
	return s.err
}

type stubPlacer struct {
	input settlement.CheckoutInput
	order *models.Order
	err   error
}

func (s *stubPlacer) CreateOrderWithReservations(ctx context.Context, input settlement.CheckoutInput) (*models.Order, error) {
	s.input = input
	return s.order, s.err
}

func testOrder() *models.Order {
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   1042,
		CustomerName:  "Ana Torres",
		CustomerPhone: "+52 55 1111 2222",
		Currency:      enums.CurrencyMXN,
		Status:        enums.OrderStatusPendingConfirmation,
		PaymentStatus: enums.PaymentStatusUnpaid,
		SubtotalCents: 45000,
		TotalCents:    45000,
		CreatedAt:     time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Lines: []models.OrderLine{
			{
				ID:             uuid.New(),
				ProductID:      uuid.New(),
				ProductName:    "Huipil bordado",
				Qty:            2,
				UnitPriceCents: 22500,
				LineTotalCents: 45000,
			},
		},
	}
	return order
}
