package cart

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luciagrant/mercadito-backend/internal/catalog"
	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	"github.com/luciagrant/mercadito-backend/pkg/errors"
)

// AddItemInput is a request to put a product variant in the cart.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Color     *string   `json:"color,omitempty"`
	Size      *string   `json:"size,omitempty"`
	Material  *string   `json:"material,omitempty"`
	Qty       int       `json:"qty" validate:"required,gt=0"`
}

// UpdateItemInput changes a line's quantity.
type UpdateItemInput struct {
	Qty int `json:"qty" validate:"required,gt=0"`
}

// Service manages saved carts. Carts never hold stock; they are a shopping
// list until checkout converts them into reservations.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	Add(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.CartItem, error)
	UpdateQty(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*models.CartItem, error)
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo    Repository
	catalog catalog.Service
}

// NewService wires the cart service.
func NewService(repo Repository, catalogService catalog.Service) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "cart repository is required")
	}
	if catalogService == nil {
		return nil, errors.New(errors.CodeInternal, "catalog service is required")
	}
	return &service{repo: repo, catalog: catalogService}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing cart items")
	}
	return items, nil
}

func (s *service) Add(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.CartItem, error) {
	if input.Qty <= 0 {
		return nil, errors.New(errors.CodeValidation, "quantity must be positive")
	}
	if _, err := s.catalog.GetProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindMatching(ctx, userID, input.ProductID, input.Color, input.Size, input.Material)
	if err != nil && !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading cart item")
	}
	if existing != nil {
		existing.Qty += input.Qty
		saved, err := s.repo.Save(ctx, existing)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "updating cart item")
		}
		return saved, nil
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: input.ProductID,
		Color:     input.Color,
		Size:      input.Size,
		Material:  input.Material,
		Qty:       input.Qty,
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "creating cart item")
	}
	return created, nil
}

func (s *service) UpdateQty(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*models.CartItem, error) {
	if input.Qty <= 0 {
		return nil, errors.New(errors.CodeValidation, "quantity must be positive")
	}

	item, err := s.loadOwned(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	item.Qty = input.Qty
	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "updating cart item")
	}
	return saved, nil
}

func (s *service) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, userID, itemID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deleting cart item")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "clearing cart")
	}
	return nil
}

func (s *service) loadOwned(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "cart item not found").
				WithDetails(map[string]any{"cart_item_id": itemID})
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading cart item")
	}
	if item.UserID != userID {
		return nil, errors.New(errors.CodeForbidden, "cart item belongs to another user")
	}
	return item, nil
}
