package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	"github.com/luciagrant/mercadito-backend/pkg/enums"
	"github.com/luciagrant/mercadito-backend/pkg/pagination"
)

// Repository exposes order persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateLines(ctx context.Context, lines []models.OrderLine) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, number int64) (*models.Order, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Order, error)
	Save(ctx context.Context, order *models.Order) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	NextOrderNumber(ctx context.Context) (int64, error)
}

// ListFilter narrows admin order listings.
type ListFilter struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	UserID        *uuid.UUID
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Omit("Lines", "Reservations").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Reservations").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate loads the order under a row-level write lock so the
// status checks and the save that follow serialize against concurrent
// mutations of the same order. The embedded test database has no FOR UPDATE
// support; its single-writer model covers it.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "orders"}})
	}

	var order models.Order
	err := query.
		Preload("Lines").
		Preload("Reservations").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByOrderNumber(ctx context.Context, number int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Reservations").
		Where("order_number = ?", number).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Lines")

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var orders []models.Order
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) Save(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Omit("Lines", "Reservations").Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// Delete removes the order's lines first (their FK restricts the order
// delete), then its ledger rows, then the order itself. A zero-row final
// delete reports gorm.ErrRecordNotFound.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Delete(&models.OrderLine{}).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Delete(&models.Reservation{}).Error; err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Order{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NextOrderNumber allocates the next customer-facing order number from the
// database sequence, so concurrent checkouts for disjoint products (which
// share no row locks) still get distinct numbers. The embedded test database
// has no sequences; MAX+1 is safe under its single-writer model.
func (r *repository) NextOrderNumber(ctx context.Context) (int64, error) {
	if r.db.Dialector.Name() != "sqlite" {
		var next int64
		err := r.db.WithContext(ctx).
			Raw("SELECT nextval('order_number_seq')").
			Scan(&next).Error
		if err != nil {
			return 0, err
		}
		return next, nil
	}

	var current *int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("MAX(order_number)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	if current == nil || *current < 1000 {
		return 1001, nil
	}
	return *current + 1, nil
}
