package collections

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luciagrant/mercadito-backend/pkg/db/models"
)

// Repository exposes collection queries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Collection, error)
	FindBySlug(ctx context.Context, slug string) (*models.Collection, error)
	List(ctx context.Context, activeOnly bool) ([]models.Collection, error)
	Create(ctx context.Context, collection *models.Collection) (*models.Collection, error)
	Update(ctx context.Context, collection *models.Collection) (*models.Collection, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a collections repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	var collection models.Collection
	err := r.db.WithContext(ctx).
		Preload("Products").
		Where("id = ?", id).
		First(&collection).Error
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Collection, error) {
	var collection models.Collection
	err := r.db.WithContext(ctx).
		Preload("Products", "is_active = ?", true).
		Where("slug = ?", slug).
		First(&collection).Error
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.Collection, error) {
	query := r.db.WithContext(ctx).Model(&models.Collection{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var collections []models.Collection
	err := query.
		Order("position ASC, created_at ASC").
		Find(&collections).Error
	if err != nil {
		return nil, err
	}
	return collections, nil
}

func (r *repository) Create(ctx context.Context, collection *models.Collection) (*models.Collection, error) {
	if err := r.db.WithContext(ctx).Create(collection).Error; err != nil {
		return nil, err
	}
	return collection, nil
}

func (r *repository) Update(ctx context.Context, collection *models.Collection) (*models.Collection, error) {
	if err := r.db.WithContext(ctx).Omit("Products").Save(collection).Error; err != nil {
		return nil, err
	}
	return collection, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Collection{}).Error
}
