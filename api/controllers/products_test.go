package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	"github.com/luciagrant/mercadito-backend/pkg/types"
)

func makeProducts(n int) []models.Product {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Product, 0, n)
	for i := 0; i < n; i++ {
		stock := 10
		out = append(out, models.Product{
			ID:         uuid.New(),
			Name:       "Producto",
			Slug:       "producto",
			PriceCents: 1000,
			Currency:   "MXN",
			Stock:      &stock,
			IsActive:   true,
			CreatedAt:  base.Add(-time.Duration(i) * time.Hour),
		})
	}
	return out
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope types.SuccessEnvelope
	raw := json.RawMessage{}
	envelope.Data = &raw
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
}

func TestListProductsFiltersActiveAndPages(t *testing.T) {
	svc := &stubCatalog{products: makeProducts(4)}
	handler := ListProducts(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=3", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !svc.listFilter.ActiveOnly {
		t.Fatal("expected active-only filter")
	}
	if svc.listParams.Limit != 3 {
		t.Fatalf("expected limit 3 got %d", svc.listParams.Limit)
	}

	var page productPage
	decodeData(t, resp, &page)
	if len(page.Products) != 3 {
		t.Fatalf("expected 3 products got %d", len(page.Products))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor when more rows exist")
	}
}

func TestListProductsNoCursorOnLastPage(t *testing.T) {
	svc := &stubCatalog{products: makeProducts(2)}
	handler := ListProducts(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=5", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	var page productPage
	decodeData(t, resp, &page)
	if page.NextCursor != "" {
		t.Fatalf("expected empty cursor got %q", page.NextCursor)
	}
}

func TestListProductsRejectsBadCollectionID(t *testing.T) {
	svc := &stubCatalog{}
	handler := ListProducts(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?collection_id=nope", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetProductBySlugReportsAvailability(t *testing.T) {
	stock := 8
	svc := &stubCatalog{
		product:     &models.Product{ID: uuid.New(), Name: "Rebozo", Slug: "rebozo", Stock: &stock, IsActive: true},
		singleAvail: 5,
	}

	router := chi.NewRouter()
	router.Get("/products/{slug}", GetProductBySlug(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/products/rebozo", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var product productResponse
	decodeData(t, resp, &product)
	if product.AvailableStock != 5 {
		t.Fatalf("expected available 5 got %d", product.AvailableStock)
	}
}
