package settlement

import (
	"context"
	stdErrors "errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luciagrant/mercadito-backend/internal/catalog"
	"github.com/luciagrant/mercadito-backend/internal/orders"
	"github.com/luciagrant/mercadito-backend/internal/reservations"
	"github.com/luciagrant/mercadito-backend/pkg/db"
	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	"github.com/luciagrant/mercadito-backend/pkg/enums"
	"github.com/luciagrant/mercadito-backend/pkg/errors"
	"github.com/luciagrant/mercadito-backend/pkg/logger"
	"github.com/luciagrant/mercadito-backend/pkg/metrics"
	"github.com/luciagrant/mercadito-backend/pkg/pagination"
)

// Service owns every order mutation. Each operation runs in a single
// transaction that locks the touched product rows first, so availability
// checks and ledger writes cannot interleave across requests.
type Service struct {
	client   *db.Client
	orders   orders.Repository
	catalog  catalog.Repository
	reserved reservations.Repository
	ledger   *reservations.Ledger
	logg     *logger.Logger
	metrics  *metrics.SettlementMetrics
}

// NewService wires the settlement service. Metrics may be nil.
func NewService(
	client *db.Client,
	ordersRepo orders.Repository,
	catalogRepo catalog.Repository,
	reservedRepo reservations.Repository,
	ledger *reservations.Ledger,
	logg *logger.Logger,
	settlementMetrics *metrics.SettlementMetrics,
) (*Service, error) {
	if client == nil {
		return nil, errors.New(errors.CodeInternal, "db client is required")
	}
	if ordersRepo == nil {
		return nil, errors.New(errors.CodeInternal, "orders repository is required")
	}
	if catalogRepo == nil {
		return nil, errors.New(errors.CodeInternal, "catalog repository is required")
	}
	if reservedRepo == nil {
		return nil, errors.New(errors.CodeInternal, "reservations repository is required")
	}
	if ledger == nil {
		return nil, errors.New(errors.CodeInternal, "reservation ledger is required")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "logger is required")
	}
	return &Service{
		client:   client,
		orders:   ordersRepo,
		catalog:  catalogRepo,
		reserved: reservedRepo,
		ledger:   ledger,
		logg:     logg,
		metrics:  settlementMetrics,
	}, nil
}

// CreateOrderWithReservations validates availability under row locks, then
// writes the order, its lines, and one active reservation per line in a
// single transaction. Nothing is deducted from stock yet.
func (s *Service) CreateOrderWithReservations(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	if err := validateCheckout(&input); err != nil {
		return nil, err
	}

	var created *models.Order
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		catalogRepo := s.catalog.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)
		reservedRepo := s.reserved.WithTx(tx)
		ledger := s.ledger.WithTx(tx, catalogRepo)

		productIDs := distinctProductIDs(input.Lines)
		locked, err := catalogRepo.LockByIDs(ctx, productIDs)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "locking products")
		}
		byID := make(map[uuid.UUID]*models.Product, len(locked))
		for i := range locked {
			byID[locked[i].ID] = &locked[i]
		}

		requested := make(map[reservations.VariantKey]int, len(input.Lines))
		for _, line := range input.Lines {
			product, ok := byID[line.ProductID]
			if !ok {
				return errors.New(errors.CodeNotFound, "product not found").
					WithDetails(map[string]any{"product_id": line.ProductID})
			}
			if !product.IsActive {
				return errors.New(errors.CodeValidation, "product is not available for sale").
					WithDetails(map[string]any{"product_id": line.ProductID})
			}
			if err := validateVariant(product, line); err != nil {
				return err
			}
			requested[variantKey(line)] += line.Qty
		}

		// Availability is scoped to the exact (product, variant) key: a hold
		// on one color never counts against a request for another.
		reserved, err := reservedRepo.SumActiveByVariant(ctx, productIDs)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "summing reservations")
		}
		checked := make(map[reservations.VariantKey]bool, len(requested))
		for _, line := range input.Lines {
			key := variantKey(line)
			if checked[key] {
				continue
			}
			checked[key] = true
			product := byID[line.ProductID]
			available := catalog.Availability(product, reserved[key])
			if requested[key] > available {
				s.metrics.IncOversellRejected()
				return errors.New(errors.CodeInsufficientStock, "insufficient stock").
					WithDetails(map[string]any{
						"product_id": product.ID,
						"product":    product.Name,
						"requested":  requested[key],
						"available":  available,
					})
			}
		}

		orderNumber, err := ordersRepo.NextOrderNumber(ctx)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "allocating order number")
		}

		currency := input.Currency
		if currency == "" {
			currency = enums.CurrencyMXN
		}

		subtotal := 0
		lines := make([]models.OrderLine, 0, len(input.Lines))
		holds := make([]reservations.Hold, 0, len(input.Lines))
		for _, line := range input.Lines {
			product := byID[line.ProductID]
			lineTotal := product.PriceCents * line.Qty
			subtotal += lineTotal
			lines = append(lines, models.OrderLine{
				ProductID:      product.ID,
				ProductName:    product.Name,
				Color:          line.Color,
				Size:           line.Size,
				Material:       line.Material,
				Qty:            line.Qty,
				UnitPriceCents: product.PriceCents,
				LineTotalCents: lineTotal,
			})
			holds = append(holds, reservations.Hold{
				ProductID: product.ID,
				Color:     line.Color,
				Size:      line.Size,
				Material:  line.Material,
				Qty:       line.Qty,
			})
		}

		total := subtotal
		if input.ShippingCents != nil {
			total += *input.ShippingCents
		}
		order := &models.Order{
			OrderNumber:   orderNumber,
			UserID:        input.UserID,
			CustomerName:  strings.TrimSpace(input.CustomerName),
			CustomerPhone: strings.TrimSpace(input.CustomerPhone),
			CustomerEmail: input.CustomerEmail,
			ShippingAddr:  input.ShippingAddress,
			Notes:         input.Notes,
			Currency:      currency,
			Status:        enums.OrderStatusPendingConfirmation,
			PaymentStatus: enums.PaymentStatusUnpaid,
			SubtotalCents: subtotal,
			ShippingCents: input.ShippingCents,
			TotalCents:    total,
		}
		if _, err := ordersRepo.Create(ctx, order); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "creating order")
		}

		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := ordersRepo.CreateLines(ctx, lines); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "creating order lines")
		}

		if _, err := ledger.Create(ctx, order.ID, holds); err != nil {
			return err
		}

		order.Lines = lines
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrdersCreated()
	ctx = s.logg.WithOrderID(ctx, created.ID.String())
	s.logg.Info(ctx, "order created with reservations")
	return created, nil
}

// MarkOrderPaid settles the order: payment status flips to paid, the status
// moves to paid, and every active hold is consumed into a stock deduction.
func (s *Service) MarkOrderPaid(ctx context.Context, orderID uuid.UUID, input MarkPaidInput) (*models.Order, error) {
	var method *enums.PaymentMethod
	if input.PaymentMethod != nil {
		parsed, err := enums.ParsePaymentMethod(*input.PaymentMethod)
		if err != nil {
			return nil, errors.New(errors.CodeValidation, err.Error())
		}
		method = &parsed
	}

	var updated *models.Order
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)
		ledger := s.ledger.WithTx(tx, catalogRepo)

		order, err := s.loadOrderLocked(ctx, ordersRepo, catalogRepo, orderID)
		if err != nil {
			return err
		}

		// Payment can settle from any live state; only an already-paid or
		// canceled order refuses it.
		if order.PaymentStatus == enums.PaymentStatusPaid {
			return errors.New(errors.CodeAlreadyInState, "order is already paid").
				WithDetails(map[string]any{"order_id": order.ID, "status": order.Status})
		}
		if order.Status == enums.OrderStatusCanceled {
			return errors.New(errors.CodeStateConflict, "canceled orders cannot be marked paid").
				WithDetails(transitionDetails(order, enums.OrderStatusPaid))
		}

		if _, err := ledger.ConsumeAndDeductStock(ctx, order.ID); err != nil {
			return err
		}

		now := time.Now().UTC()
		order.Status = enums.OrderStatusPaid
		order.PaymentStatus = enums.PaymentStatusPaid
		order.PaymentMethod = method
		order.PaidAt = &now
		if _, err := ordersRepo.Save(ctx, order); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "saving order")
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrdersPaid()
	s.logg.Info(s.logg.WithOrderID(ctx, updated.ID.String()), "order marked paid")
	return updated, nil
}

// CancelOrder releases every active hold and parks the order in canceled.
// Stock is never touched: the holds were only ever availability, so letting
// them go restores it.
func (s *Service) CancelOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var updated *models.Order
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)
		ledger := s.ledger.WithTx(tx, catalogRepo)

		order, err := s.loadOrderLocked(ctx, ordersRepo, catalogRepo, orderID)
		if err != nil {
			return err
		}

		if order.Status == enums.OrderStatusCanceled {
			return errors.New(errors.CodeAlreadyInState, "order is already canceled").
				WithDetails(map[string]any{"order_id": order.ID})
		}
		if !orders.IsCancelable(order.Status) {
			return errors.New(errors.CodeStateConflict, "order can no longer be canceled").
				WithDetails(transitionDetails(order, enums.OrderStatusCanceled))
		}

		if _, err := ledger.Release(ctx, order.ID); err != nil {
			return err
		}

		now := time.Now().UTC()
		order.Status = enums.OrderStatusCanceled
		order.CanceledAt = &now
		if _, err := ordersRepo.Save(ctx, order); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "saving order")
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrdersCanceled()
	s.logg.Info(s.logg.WithOrderID(ctx, updated.ID.String()), "order canceled")
	return updated, nil
}

// ChangeOrderStatus performs a whitelisted transition. Paid and canceled are
// rejected here; they have dedicated operations with ledger side effects.
func (s *Service) ChangeOrderStatus(ctx context.Context, orderID uuid.UUID, input StatusChangeInput) (*models.Order, error) {
	target, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, errors.New(errors.CodeValidation, err.Error())
	}
	if target == enums.OrderStatusPaid || target == enums.OrderStatusCanceled {
		return nil, errors.New(errors.CodeValidation, "status requires its dedicated operation").
			WithDetails(map[string]any{"status": target})
	}

	var updated *models.Order
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)

		order, err := s.loadOrderForUpdate(ctx, ordersRepo, orderID)
		if err != nil {
			return err
		}

		if order.Status == target {
			return errors.New(errors.CodeAlreadyInState, "order is already in that status").
				WithDetails(map[string]any{"order_id": order.ID, "status": target})
		}
		if !orders.CanTransition(order.Status, target) {
			return errors.New(errors.CodeStateConflict, "status transition not allowed").
				WithDetails(transitionDetails(order, target))
		}
		if orders.RequiresPayment(target) && order.PaymentStatus != enums.PaymentStatusPaid {
			return errors.New(errors.CodeStateConflict, "order must be paid first").
				WithDetails(transitionDetails(order, target))
		}

		order.Status = target
		if _, err := ordersRepo.Save(ctx, order); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "saving order")
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, updated.ID.String()), "order status changed")
	return updated, nil
}

// UpdateShippingCost sets the shipping quote and recomputes the total. Only
// unpaid orders can be re-quoted.
func (s *Service) UpdateShippingCost(ctx context.Context, orderID uuid.UUID, input ShippingCostInput) (*models.Order, error) {
	if input.ShippingCents < 0 {
		return nil, errors.New(errors.CodeValidation, "shipping cost cannot be negative")
	}

	var updated *models.Order
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)

		order, err := s.loadOrderForUpdate(ctx, ordersRepo, orderID)
		if err != nil {
			return err
		}
		if order.PaymentStatus == enums.PaymentStatusPaid {
			return errors.New(errors.CodeStateConflict, "paid orders cannot be re-quoted").
				WithDetails(map[string]any{"order_id": order.ID})
		}

		shipping := input.ShippingCents
		order.ShippingCents = &shipping
		order.TotalCents = order.SubtotalCents + shipping
		if _, err := ordersRepo.Save(ctx, order); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "saving order")
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteOrder releases any active holds and removes the order with its lines
// and ledger rows. Availability returns to the pool; stock already deducted
// by a past payment stays deducted.
func (s *Service) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)
		ledger := s.ledger.WithTx(tx, catalogRepo)

		order, err := s.loadOrderLocked(ctx, ordersRepo, catalogRepo, orderID)
		if err != nil {
			return err
		}

		if _, err := ledger.Release(ctx, order.ID); err != nil {
			return err
		}
		if err := ordersRepo.Delete(ctx, order.ID); err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "order not found").
					WithDetails(map[string]any{"order_id": order.ID})
			}
			return errors.Wrap(errors.CodeInternal, err, "deleting order")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "order deleted")
	return nil
}

// GetOrder loads an order with its lines and ledger entries.
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.loadOrder(ctx, s.orders, orderID)
}

// GetOrderByNumber resolves the customer-facing order number.
func (s *Service) GetOrderByNumber(ctx context.Context, number int64) (*models.Order, error) {
	order, err := s.orders.FindByOrderNumber(ctx, number)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "order not found").
				WithDetails(map[string]any{"order_number": number})
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading order")
	}
	return order, nil
}

// ListOrders pages through orders for the admin surface.
func (s *Service) ListOrders(ctx context.Context, filter orders.ListFilter, params pagination.Params) ([]models.Order, error) {
	results, err := s.orders.List(ctx, filter, params)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing orders")
	}
	return results, nil
}

// StaleActiveReservations counts holds older than the threshold, for the
// reporting job. Nothing is auto-released; stale holds need a human call.
func (s *Service) StaleActiveReservations(ctx context.Context, olderThan time.Time) (int64, error) {
	count, err := s.reserved.CountStaleActive(ctx, olderThan)
	if err != nil {
		return 0, errors.Wrap(errors.CodeInternal, err, "counting stale reservations")
	}
	return count, nil
}

func (s *Service) loadOrder(ctx context.Context, repo orders.Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "order not found").
				WithDetails(map[string]any{"order_id": orderID})
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading order")
	}
	return order, nil
}

// loadOrderForUpdate is the in-transaction variant: the order row comes back
// write-locked, so concurrent mutations of the same order read its state
// serially instead of racing on a stale pre-lock snapshot.
func (s *Service) loadOrderForUpdate(ctx context.Context, repo orders.Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByIDForUpdate(ctx, orderID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "order not found").
				WithDetails(map[string]any{"order_id": orderID})
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading order")
	}
	return order, nil
}

// loadOrderLocked write-locks the order row first, then the product rows its
// ledger entries point at, so consume/release serializes against concurrent
// order mutations and checkouts alike.
func (s *Service) loadOrderLocked(ctx context.Context, ordersRepo orders.Repository, catalogRepo catalog.Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrderForUpdate(ctx, ordersRepo, orderID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(order.Reservations))
	seen := make(map[uuid.UUID]bool, len(order.Reservations))
	for _, row := range order.Reservations {
		if !seen[row.ProductID] {
			seen[row.ProductID] = true
			productIDs = append(productIDs, row.ProductID)
		}
	}
	if len(productIDs) > 0 {
		if _, err := catalogRepo.LockByIDs(ctx, productIDs); err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "locking products")
		}
	}
	return order, nil
}

func validateCheckout(input *CheckoutInput) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return errors.New(errors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(input.CustomerPhone) == "" {
		return errors.New(errors.CodeValidation, "customer phone is required")
	}
	if len(input.Lines) == 0 {
		return errors.New(errors.CodeValidation, "at least one line is required")
	}
	for _, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return errors.New(errors.CodeValidation, "line product id is required")
		}
		if line.Qty <= 0 {
			return errors.New(errors.CodeValidation, "line quantity must be positive")
		}
	}
	if input.Currency != "" && !input.Currency.IsValid() {
		return errors.New(errors.CodeValidation, "invalid currency")
	}
	return nil
}

// validateVariant requires chosen options to exist on the product. A nil
// option is always acceptable; products without declared options accept
// anything only when nothing was chosen.
func validateVariant(product *models.Product, line CheckoutLine) error {
	checks := []struct {
		name    string
		value   *string
		allowed []string
	}{
		{"color", line.Color, product.Colors},
		{"size", line.Size, product.Sizes},
		{"material", line.Material, product.Materials},
	}
	for _, check := range checks {
		if check.value == nil {
			continue
		}
		if !containsFold(check.allowed, *check.value) {
			return errors.New(errors.CodeValidation, "unknown product option").
				WithDetails(map[string]any{
					"product_id": product.ID,
					"option":     check.name,
					"value":      *check.value,
				})
		}
	}
	return nil
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

func variantKey(line CheckoutLine) reservations.VariantKey {
	return reservations.NewVariantKey(line.ProductID, line.Color, line.Size, line.Material)
}

func distinctProductIDs(lines []CheckoutLine) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func transitionDetails(order *models.Order, target enums.OrderStatus) map[string]any {
	return map[string]any{
		"order_id": order.ID,
		"from":     order.Status,
		"to":       target,
	}
}
