package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	"github.com/luciagrant/mercadito-backend/pkg/enums"
)

// Repository is the reservation ledger's persistence surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, rows []models.Reservation) error
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Reservation, error)
	FindActiveByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Reservation, error)
	SumActiveByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error)
	SumActiveByVariant(ctx context.Context, productIDs []uuid.UUID) (map[VariantKey]int, error)
	MarkConsumed(ctx context.Context, ids []uuid.UUID, at time.Time) error
	MarkReleased(ctx context.Context, ids []uuid.UUID, at time.Time) error
	CountStaleActive(ctx context.Context, olderThan time.Time) (int64, error)
}

// VariantDim is one nullable selector dimension of a variant key. Set
// distinguishes an explicitly chosen empty string from no selection.
type VariantDim struct {
	Value string
	Set   bool
}

// NewVariantDim wraps an optional selector value.
func NewVariantDim(value *string) VariantDim {
	if value == nil {
		return VariantDim{}
	}
	return VariantDim{Value: *value, Set: true}
}

// VariantKey identifies one reservable (product, variant) combination.
// Dimensions match strictly: a null selector only matches holds whose same
// dimension is null, never acting as a wildcard over chosen values.
type VariantKey struct {
	ProductID uuid.UUID
	Color     VariantDim
	Size      VariantDim
	Material  VariantDim
}

// NewVariantKey builds the key for a product and its optional selectors.
func NewVariantKey(productID uuid.UUID, color, size, material *string) VariantKey {
	return VariantKey{
		ProductID: productID,
		Color:     NewVariantDim(color),
		Size:      NewVariantDim(size),
		Material:  NewVariantDim(material),
	}
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reservation repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBatch(ctx context.Context, rows []models.Reservation) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, enums.ReservationStatusActive).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SumActiveByProducts returns the total actively-held quantity per product.
// Products with no active holds are absent from the result.
func (r *repository) SumActiveByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	sums := make(map[uuid.UUID]int, len(productIDs))
	if len(productIDs) == 0 {
		return sums, nil
	}

	type row struct {
		ProductID uuid.UUID
		Total     int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Select("product_id, COALESCE(SUM(qty), 0) AS total").
		Where("product_id IN ? AND status = ?", productIDs, enums.ReservationStatusActive).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, entry := range rows {
		sums[entry.ProductID] = entry.Total
	}
	return sums, nil
}

// SumActiveByVariant returns the actively-held quantity per (product,
// variant) key. Keys with no active holds are absent from the result.
func (r *repository) SumActiveByVariant(ctx context.Context, productIDs []uuid.UUID) (map[VariantKey]int, error) {
	sums := make(map[VariantKey]int, len(productIDs))
	if len(productIDs) == 0 {
		return sums, nil
	}

	type row struct {
		ProductID uuid.UUID
		Color     *string
		Size      *string
		Material  *string
		Total     int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Select("product_id, color, size, material, COALESCE(SUM(qty), 0) AS total").
		Where("product_id IN ? AND status = ?", productIDs, enums.ReservationStatusActive).
		Group("product_id, color, size, material").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, entry := range rows {
		sums[NewVariantKey(entry.ProductID, entry.Color, entry.Size, entry.Material)] = entry.Total
	}
	return sums, nil
}

func (r *repository) MarkConsumed(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id IN ? AND status = ?", ids, enums.ReservationStatusActive).
		UpdateColumns(map[string]any{
			"status":      enums.ReservationStatusConsumed,
			"consumed_at": at,
			"updated_at":  at,
		}).Error
}

func (r *repository) MarkReleased(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id IN ? AND status = ?", ids, enums.ReservationStatusActive).
		UpdateColumns(map[string]any{
			"status":      enums.ReservationStatusReleased,
			"released_at": at,
			"updated_at":  at,
		}).Error
}

func (r *repository) CountStaleActive(ctx context.Context, olderThan time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("status = ? AND created_at < ?", enums.ReservationStatusActive, olderThan).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
