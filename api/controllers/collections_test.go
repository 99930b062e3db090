package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	pkgerrors "github.com/luciagrant/mercadito-backend/pkg/errors"
)

type stubCollections struct {
	collections []models.Collection
	collection  *models.Collection
	activeOnly  bool
	created     *models.Collection
	deletedID   uuid.UUID
	err         error
}

func (s *stubCollections) Get(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	return s.collection, s.err
}

func (s *stubCollections) GetBySlug(ctx context.Context, slug string) (*models.Collection, error) {
	return s.collection, s.err
}

func (s *stubCollections) List(ctx context.Context, activeOnly bool) ([]models.Collection, error) {
	s.activeOnly = activeOnly
	return s.collections, s.err
}

func (s *stubCollections) Create(ctx context.Context, collection *models.Collection) (*models.Collection, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = collection
	collection.ID = uuid.New()
	return collection, nil
}

func (s *stubCollections) Update(ctx context.Context, collection *models.Collection) (*models.Collection, error) {
	return collection, s.err
}

func (s *stubCollections) Delete(ctx context.Context, id uuid.UUID) error {
	s.deletedID = id
	return s.err
}

func TestListCollectionsActiveOnly(t *testing.T) {
	svc := &stubCollections{collections: []models.Collection{
		{ID: uuid.New(), Name: "Rebozos", Slug: "rebozos", Position: 1, IsActive: true},
		{ID: uuid.New(), Name: "Huipiles", Slug: "huipiles", Position: 2, IsActive: true},
	}}
	handler := ListCollections(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collections", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !svc.activeOnly {
		t.Fatal("public listing must be active-only")
	}

	var out struct {
		Collections []collectionResponse `json:"collections"`
	}
	decodeData(t, resp, &out)
	if len(out.Collections) != 2 {
		t.Fatalf("expected 2 collections got %d", len(out.Collections))
	}
}

func TestGetCollectionBySlugNotFound(t *testing.T) {
	svc := &stubCollections{err: pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")}

	router := chi.NewRouter()
	router.Get("/collections/{slug}", GetCollectionBySlug(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/collections/missing", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestAdminCreateCollectionDefaultsActive(t *testing.T) {
	svc := &stubCollections{}
	handler := AdminCreateCollection(svc, nil)

	body := `{"name": "Temporada", "position": 3}`
	req := httptest.NewRequest(http.MethodPost, "/collections", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.created == nil || !svc.created.IsActive {
		t.Fatalf("expected new collection active, got %+v", svc.created)
	}
}
