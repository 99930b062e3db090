package catalog

import (
	"context"
	stdErrors "errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luciagrant/mercadito-backend/internal/reservations"
	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	"github.com/luciagrant/mercadito-backend/pkg/errors"
	"github.com/luciagrant/mercadito-backend/pkg/logger"
	"github.com/luciagrant/mercadito-backend/pkg/pagination"
)

// ReservedQuantities is the slice of the reservation ledger the catalog needs
// to compute availability.
type ReservedQuantities interface {
	SumActiveByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error)
	SumActiveByVariant(ctx context.Context, productIDs []uuid.UUID) (map[reservations.VariantKey]int, error)
}

// Service exposes catalog reads plus admin product management.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListProducts(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Product, error)
	AvailableStock(ctx context.Context, key reservations.VariantKey) (int, error)
	AvailableStockBatch(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     Repository
	reserved ReservedQuantities
	logg     *logger.Logger
}

// NewService wires the catalog service.
func NewService(repo Repository, reserved ReservedQuantities, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "catalog repository is required")
	}
	if reserved == nil {
		return nil, errors.New(errors.CodeInternal, "reserved quantities source is required")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "logger is required")
	}
	return &service{repo: repo, reserved: reserved, logg: logg}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": id})
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading product")
	}
	return product, nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.New(errors.CodeValidation, "slug is required")
	}
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"slug": slug})
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Product, error) {
	products, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing products")
	}
	return products, nil
}

// AvailableStock returns stock minus the active holds matching the requested
// variant exactly, floored at zero. A hold on one color never blocks another;
// null selector fields only match holds whose same field is null. Untracked
// products (NULL stock) always report zero.
func (s *service) AvailableStock(ctx context.Context, key reservations.VariantKey) (int, error) {
	product, err := s.repo.FindByID(ctx, key.ProductID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errors.New(errors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": key.ProductID})
		}
		return 0, errors.Wrap(errors.CodeInternal, err, "loading product")
	}

	reserved, err := s.reserved.SumActiveByVariant(ctx, []uuid.UUID{key.ProductID})
	if err != nil {
		return 0, errors.Wrap(errors.CodeInternal, err, "summing reservations")
	}
	return Availability(product, reserved[key]), nil
}

// AvailableStockBatch reports display availability per product: stock minus
// every active hold regardless of variant.
func (s *service) AvailableStockBatch(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	result := make(map[uuid.UUID]int, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	reserved, err := s.reserved.SumActiveByProducts(ctx, productIDs)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "summing reservations")
	}

	for _, id := range productIDs {
		product, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New(errors.CodeNotFound, "product not found").
					WithDetails(map[string]any{"product_id": id})
			}
			return nil, errors.Wrap(errors.CodeInternal, err, "loading product")
		}
		result[id] = Availability(product, reserved[id])
	}
	return result, nil
}

func (s *service) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product == nil {
		return nil, errors.New(errors.CodeValidation, "product is required")
	}
	if strings.TrimSpace(product.Name) == "" {
		return nil, errors.New(errors.CodeValidation, "product name is required")
	}
	if strings.TrimSpace(product.Slug) == "" {
		product.Slug = Slugify(product.Name)
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "creating product")
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", created.ID.String()), "product created")
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product == nil || product.ID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "product id is required")
	}
	if _, err := s.GetProduct(ctx, product.ID); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "updating product")
	}
	return updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deleting product")
	}
	return nil
}

// Availability computes sellable quantity for a product given its active
// holds. Negative stock (possible after manual corrections) reports zero.
func Availability(product *models.Product, reservedQty int) int {
	if product == nil || product.Stock == nil {
		return 0
	}
	available := *product.Stock - reservedQty
	if available < 0 {
		return 0
	}
	return available
}

// Slugify lowercases and dashes a product name for URL use.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := true
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
