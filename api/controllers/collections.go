package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/luciagrant/mercadito-backend/api/responses"
	"github.com/luciagrant/mercadito-backend/api/validators"
	collectionsvc "github.com/luciagrant/mercadito-backend/internal/collections"
	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	pkgerrors "github.com/luciagrant/mercadito-backend/pkg/errors"
	"github.com/luciagrant/mercadito-backend/pkg/logger"
)

// ListCollections serves the public collection index in display order.
func ListCollections(svc collectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "collections service unavailable"))
			return
		}

		collections, err := svc.List(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]collectionResponse, 0, len(collections))
		for i := range collections {
			out = append(out, newCollectionResponse(&collections[i]))
		}
		responses.WriteSuccess(w, map[string]any{"collections": out})
	}
}

// GetCollectionBySlug serves one collection with its active products.
func GetCollectionBySlug(svc collectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "collections service unavailable"))
			return
		}

		collection, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products := make([]productResponse, 0, len(collection.Products))
		for i := range collection.Products {
			products = append(products, newProductResponse(&collection.Products[i], 0))
		}
		responses.WriteSuccess(w, map[string]any{
			"collection": newCollectionResponse(collection),
			"products":   products,
		})
	}
}

type collectionRequest struct {
	Name        string  `json:"name" validate:"required"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	Position    int     `json:"position" validate:"gte=0"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (c collectionRequest) apply(collection *models.Collection) {
	collection.Name = strings.TrimSpace(c.Name)
	if c.Slug != nil {
		collection.Slug = strings.TrimSpace(*c.Slug)
	}
	collection.Description = c.Description
	collection.Position = c.Position
	if c.IsActive != nil {
		collection.IsActive = *c.IsActive
	} else {
		collection.IsActive = true
	}
}

// AdminCreateCollection adds a merchandising group.
func AdminCreateCollection(svc collectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "collections service unavailable"))
			return
		}

		var payload collectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		collection := &models.Collection{}
		payload.apply(collection)

		created, err := svc.Create(r.Context(), collection)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCollectionResponse(created))
	}
}

// AdminUpdateCollection updates an existing merchandising group.
func AdminUpdateCollection(svc collectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "collections service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "collectionID"), "collectionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload collectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		collection, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.apply(collection)

		updated, err := svc.Update(r.Context(), collection)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCollectionResponse(updated))
	}
}

// AdminDeleteCollection removes a merchandising group.
func AdminDeleteCollection(svc collectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "collections service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "collectionID"), "collectionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
