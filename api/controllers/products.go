package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/luciagrant/mercadito-backend/api/responses"
	"github.com/luciagrant/mercadito-backend/api/validators"
	"github.com/luciagrant/mercadito-backend/internal/catalog"
	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	pkgerrors "github.com/luciagrant/mercadito-backend/pkg/errors"
	"github.com/luciagrant/mercadito-backend/pkg/logger"
	"github.com/luciagrant/mercadito-backend/pkg/pagination"
)

// ListProducts serves the public catalog. Only active products show, and every
// row carries its computed availability.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := catalog.ListFilter{ActiveOnly: true}
		if raw := strings.TrimSpace(r.URL.Query().Get("collection_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid collection id"))
				return
			}
			filter.CollectionID = &id
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		products, err := svc.ListProducts(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := renderProductPage(r, svc, products, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GetProductBySlug serves a single public product page.
func GetProductBySlug(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		product, err := svc.GetProductBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		available, err := svc.AvailableStockBatch(r.Context(), []uuid.UUID{product.ID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product, available[product.ID]))
	}
}

type productPage struct {
	Products   []productResponse `json:"products"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func renderProductPage(r *http.Request, svc catalog.Service, products []models.Product, limit int) (productPage, error) {
	hasMore := len(products) > limit
	if hasMore {
		products = products[:limit]
	}

	ids := make([]uuid.UUID, 0, len(products))
	for _, product := range products {
		ids = append(ids, product.ID)
	}
	available, err := svc.AvailableStockBatch(r.Context(), ids)
	if err != nil {
		return productPage{}, err
	}

	page := productPage{Products: make([]productResponse, 0, len(products))}
	for i := range products {
		page.Products = append(page.Products, newProductResponse(&products[i], available[products[i].ID]))
	}
	if hasMore {
		last := products[len(products)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}
