package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luciagrant/mercadito-backend/pkg/db/models"
)

// Repository exposes saved-cart persistence for authenticated shoppers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error)
	FindMatching(ctx context.Context, userID, productID uuid.UUID, color, size, material *string) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	Save(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindMatching locates an identical variant line so quantity merges instead
// of duplicating rows. Variant columns match NULL-to-NULL.
func (r *repository) FindMatching(ctx context.Context, userID, productID uuid.UUID, color, size, material *string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Where("(color = ? OR (color IS NULL AND ? IS NULL))", color, color).
		Where("(size = ? OR (size IS NULL AND ? IS NULL))", size, size).
		Where("(material = ? OR (material IS NULL AND ? IS NULL))", material, material).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if err := r.db.WithContext(ctx).Omit("Product").Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) Save(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if err := r.db.WithContext(ctx).Omit("Product").Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.CartItem{}).Error
}

func (r *repository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}

// DeleteOlderThan removes cart lines not updated since the cutoff. Used by the
// cleanup job, which supplies its own transaction.
func (r *repository) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	result := conn.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}
