package collections

import (
	"context"
	stdErrors "errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luciagrant/mercadito-backend/internal/catalog"
	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	"github.com/luciagrant/mercadito-backend/pkg/errors"
)

// Service exposes collection reads plus admin management.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Collection, error)
	GetBySlug(ctx context.Context, slug string) (*models.Collection, error)
	List(ctx context.Context, activeOnly bool) ([]models.Collection, error)
	Create(ctx context.Context, collection *models.Collection) (*models.Collection, error)
	Update(ctx context.Context, collection *models.Collection) (*models.Collection, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService wires the collections service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "collections repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	collection, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "collection not found").
				WithDetails(map[string]any{"collection_id": id})
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading collection")
	}
	return collection, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Collection, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.New(errors.CodeValidation, "slug is required")
	}
	collection, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "collection not found").
				WithDetails(map[string]any{"slug": slug})
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading collection")
	}
	return collection, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Collection, error) {
	collections, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing collections")
	}
	return collections, nil
}

func (s *service) Create(ctx context.Context, collection *models.Collection) (*models.Collection, error) {
	if collection == nil || strings.TrimSpace(collection.Name) == "" {
		return nil, errors.New(errors.CodeValidation, "collection name is required")
	}
	if strings.TrimSpace(collection.Slug) == "" {
		collection.Slug = catalog.Slugify(collection.Name)
	}
	created, err := s.repo.Create(ctx, collection)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "creating collection")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, collection *models.Collection) (*models.Collection, error) {
	if collection == nil || collection.ID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "collection id is required")
	}
	if _, err := s.Get(ctx, collection.ID); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, collection)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "updating collection")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deleting collection")
	}
	return nil
}
