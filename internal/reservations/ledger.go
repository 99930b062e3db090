package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	"github.com/luciagrant/mercadito-backend/pkg/errors"
)

// StockDeductor is the slice of the catalog repository the ledger needs when
// consuming holds.
type StockDeductor interface {
	DeductStock(ctx context.Context, productID uuid.UUID, qty int) error
}

// Hold describes one stock reservation request.
type Hold struct {
	ProductID uuid.UUID
	Color     *string
	Size      *string
	Material  *string
	Qty       int
}

// Ledger owns reservation lifecycle writes. All methods expect to run inside
// the caller's transaction; bind with WithTx first.
type Ledger struct {
	repo  Repository
	stock StockDeductor
}

// NewLedger builds a reservation ledger over the provided repositories.
func NewLedger(repo Repository, stock StockDeductor) (*Ledger, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "reservation repository is required")
	}
	if stock == nil {
		return nil, errors.New(errors.CodeInternal, "stock deductor is required")
	}
	return &Ledger{repo: repo, stock: stock}, nil
}

// WithTx rebinds the ledger to the supplied transaction.
func (l *Ledger) WithTx(tx *gorm.DB, stock StockDeductor) *Ledger {
	if tx == nil {
		return l
	}
	bound := &Ledger{repo: l.repo.WithTx(tx), stock: l.stock}
	if stock != nil {
		bound.stock = stock
	}
	return bound
}

// Create inserts one active reservation row per hold.
func (l *Ledger) Create(ctx context.Context, orderID uuid.UUID, holds []Hold) ([]models.Reservation, error) {
	if orderID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "order id is required")
	}
	if len(holds) == 0 {
		return nil, errors.New(errors.CodeValidation, "at least one hold is required")
	}

	rows := make([]models.Reservation, 0, len(holds))
	for _, hold := range holds {
		if hold.Qty <= 0 {
			return nil, errors.New(errors.CodeValidation, "hold quantity must be positive")
		}
		rows = append(rows, models.Reservation{
			OrderID:   orderID,
			ProductID: hold.ProductID,
			Color:     hold.Color,
			Size:      hold.Size,
			Material:  hold.Material,
			Qty:       hold.Qty,
		})
	}

	if err := l.repo.CreateBatch(ctx, rows); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "creating reservations")
	}
	return rows, nil
}

// Release frees every active hold for the order. Product stock is untouched:
// active holds only ever subtracted from availability, so releasing them
// restores availability by itself. Already-released orders are a no-op.
func (l *Ledger) Release(ctx context.Context, orderID uuid.UUID) (int, error) {
	active, err := l.repo.FindActiveByOrder(ctx, orderID)
	if err != nil {
		return 0, errors.Wrap(errors.CodeInternal, err, "loading active reservations")
	}
	if len(active) == 0 {
		return 0, nil
	}

	ids := reservationIDs(active)
	if err := l.repo.MarkReleased(ctx, ids, time.Now().UTC()); err != nil {
		return 0, errors.Wrap(errors.CodeInternal, err, "releasing reservations")
	}
	return len(ids), nil
}

// ConsumeAndDeductStock converts every active hold for the order into a
// permanent stock deduction. Calling it again after success finds no active
// rows and does nothing, which is what makes paid-marking idempotent.
func (l *Ledger) ConsumeAndDeductStock(ctx context.Context, orderID uuid.UUID) (int, error) {
	active, err := l.repo.FindActiveByOrder(ctx, orderID)
	if err != nil {
		return 0, errors.Wrap(errors.CodeInternal, err, "loading active reservations")
	}
	if len(active) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	if err := l.repo.MarkConsumed(ctx, reservationIDs(active), now); err != nil {
		return 0, errors.Wrap(errors.CodeInternal, err, "consuming reservations")
	}

	for _, row := range active {
		if err := l.stock.DeductStock(ctx, row.ProductID, row.Qty); err != nil {
			return 0, errors.Wrap(errors.CodeInternal, err, "deducting stock")
		}
	}
	return len(active), nil
}

func reservationIDs(rows []models.Reservation) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids
}
