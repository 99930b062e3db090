package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	"github.com/luciagrant/mercadito-backend/pkg/pagination"
)

// Repository exposes product catalog queries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Product, error)
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	DeductStock(ctx context.Context, productID uuid.UUID, qty int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListFilter narrows catalog listings.
type ListFilter struct {
	CollectionID *uuid.UUID
	ActiveOnly   bool
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.CollectionID != nil {
		query = query.Where("collection_id = ?", *filter.CollectionID)
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

	var products []models.Product
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// LockByIDs loads products under a row-level write lock, ordered by id so
// concurrent checkouts acquire locks in the same sequence. The embedded test
// database has no FOR UPDATE support; its single-writer model covers it.
func (r *repository) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var products []models.Product
	err := query.
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeductStock subtracts qty from a tracked product's stock column, clamped
// at zero: an operator may have lowered stock between reserve and consume,
// and the engine never drives the counter negative. Untracked (NULL stock)
// products are left untouched.
func (r *repository) DeductStock(ctx context.Context, productID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock IS NOT NULL", productID).
		UpdateColumns(map[string]any{
			"stock":      gorm.Expr("CASE WHEN stock - ? < 0 THEN 0 ELSE stock - ? END", qty, qty),
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Product{}).Error
}
