package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	cartsvc "github.com/luciagrant/mercadito-backend/internal/cart"
	"github.com/luciagrant/mercadito-backend/internal/catalog"
	"github.com/luciagrant/mercadito-backend/internal/reservations"
	"github.com/luciagrant/mercadito-backend/pkg/auth"
	"github.com/luciagrant/mercadito-backend/pkg/config"
	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	"github.com/luciagrant/mercadito-backend/pkg/enums"
	"github.com/luciagrant/mercadito-backend/pkg/logger"
	"github.com/luciagrant/mercadito-backend/pkg/pagination"
	"github.com/luciagrant/mercadito-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	panic("unimplemented")
}

func (stubCatalogService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	panic("unimplemented")
}

func (stubCatalogService) ListProducts(ctx context.Context, filter catalog.ListFilter, params pagination.Params) ([]models.Product, error) {
	return nil, nil
}

func (stubCatalogService) AvailableStock(ctx context.Context, key reservations.VariantKey) (int, error) {
	return 0, nil
}

func (stubCatalogService) AvailableStockBatch(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	return map[uuid.UUID]int{}, nil
}

func (stubCatalogService) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	panic("unimplemented")
}

func (stubCatalogService) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	panic("unimplemented")
}

func (stubCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

type stubCollectionsService struct{}

func (stubCollectionsService) Get(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	panic("unimplemented")
}

func (stubCollectionsService) GetBySlug(ctx context.Context, slug string) (*models.Collection, error) {
	panic("unimplemented")
}

func (stubCollectionsService) List(ctx context.Context, activeOnly bool) ([]models.Collection, error) {
	return nil, nil
}

func (stubCollectionsService) Create(ctx context.Context, collection *models.Collection) (*models.Collection, error) {
	panic("unimplemented")
}

func (stubCollectionsService) Update(ctx context.Context, collection *models.Collection) (*models.Collection, error) {
	panic("unimplemented")
}

func (stubCollectionsService) Delete(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) List(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return nil, nil
}

func (stubCartService) Add(ctx context.Context, userID uuid.UUID, input cartsvc.AddItemInput) (*models.CartItem, error) {
	panic("unimplemented")
}

func (stubCartService) UpdateQty(ctx context.Context, userID, itemID uuid.UUID, input cartsvc.UpdateItemInput) (*models.CartItem, error) {
	panic("unimplemented")
}

func (stubCartService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	panic("unimplemented")
}

func (stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		&redis.Client{},
		stubCatalogService{},
		stubCollectionsService{},
		stubCartService{},
		nil, // users service: register/login not exercised here
		nil, // settlement service: admin handlers not exercised here
		nil, // whatsapp builder
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg.JWT, time.Now(), auth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCartRequiresToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestCartAcceptsCustomerToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with customer token got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	missing := httptest.NewRequest(http.MethodGet, "/api/admin/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, missing)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	customer := httptest.NewRequest(http.MethodGet, "/api/admin/v1/products", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/products", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCheckoutDemandsIdempotencyKey(t *testing.T) {
	router := newTestRouter(testConfig())
	body := `{"customer_name":"Ana","customer_phone":"+52","lines":[{"product_id":"` + uuid.NewString() + `","qty":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "Idempotency-Key") {
		t.Fatalf("expected idempotency message got %s", resp.Body.String())
	}
}

func TestCheckoutRejectsMalformedBearer(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer garbage")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed token got %d", resp.Code)
	}
}
