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

type productRequest struct {
	Name         string     `json:"name" validate:"required"`
	Slug         *string    `json:"slug,omitempty"`
	Description  *string    `json:"description,omitempty"`
	PriceCents   int        `json:"price_cents" validate:"gte=0"`
	Currency     *string    `json:"currency,omitempty"`
	Stock        *int       `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Colors       []string   `json:"colors,omitempty"`
	Sizes        []string   `json:"sizes,omitempty"`
	Materials    []string   `json:"materials,omitempty"`
	ImageURL     *string    `json:"image_url,omitempty"`
	IsActive     *bool      `json:"is_active,omitempty"`
	CollectionID *uuid.UUID `json:"collection_id,omitempty"`
}

func (p productRequest) apply(product *models.Product) {
	product.Name = strings.TrimSpace(p.Name)
	if p.Slug != nil {
		product.Slug = strings.TrimSpace(*p.Slug)
	}
	product.Description = p.Description
	product.PriceCents = p.PriceCents
	if p.Currency != nil {
		product.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	product.Stock = p.Stock
	product.Colors = p.Colors
	product.Sizes = p.Sizes
	product.Materials = p.Materials
	product.ImageURL = p.ImageURL
	if p.IsActive != nil {
		product.IsActive = *p.IsActive
	} else {
		product.IsActive = true
	}
	product.CollectionID = p.CollectionID
}

// AdminCreateProduct handles catalog additions.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product := &models.Product{}
		payload.apply(product)

		created, err := svc.CreateProduct(r.Context(), product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		available, err := svc.AvailableStockBatch(r.Context(), []uuid.UUID{created.ID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newProductResponse(created, available[created.ID]))
	}
}

// AdminUpdateProduct replaces a product's editable fields.
func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.apply(product)

		updated, err := svc.UpdateProduct(r.Context(), product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		available, err := svc.AvailableStockBatch(r.Context(), []uuid.UUID{updated.ID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponse(updated, available[updated.ID]))
	}
}

// AdminDeleteProduct removes a listing.
func AdminDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminListProducts pages through the catalog including inactive listings.
func AdminListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		products, err := svc.ListProducts(r.Context(), catalog.ListFilter{}, params)
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
