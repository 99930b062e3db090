package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/luciagrant/mercadito-backend/api/middleware"
	"github.com/luciagrant/mercadito-backend/internal/whatsapp"
	"github.com/luciagrant/mercadito-backend/pkg/config"
	pkgerrors "github.com/luciagrant/mercadito-backend/pkg/errors"
)

func testBuilder(t *testing.T) *whatsapp.Builder {
	t.Helper()
	builder, err := whatsapp.NewBuilder(config.CheckoutConfig{WhatsAppNumber: "5215512345678", StoreName: "Mercadito"})
	if err != nil {
		t.Fatalf("building whatsapp builder: %v", err)
	}
	return builder
}

const checkoutBody = `{
	"customer_name": "Ana Torres",
	"customer_phone": "+52 55 1111 2222",
	"lines": [{"product_id": "6b1e3b9a-9071-4bb7-9df2-6b2e9a4cb6a1", "qty": 2}]
}`

func TestCheckoutGuestOrder(t *testing.T) {
	svc := &stubPlacer{order: testOrder()}
	handler := Checkout(svc, nil, testBuilder(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.input.UserID != nil {
		t.Fatal("guest checkout must not carry a user id")
	}

	var out checkoutResponse
	decodeData(t, resp, &out)
	if out.Order.OrderNumber != 1042 {
		t.Fatalf("expected order number 1042 got %d", out.Order.OrderNumber)
	}
	if !strings.HasPrefix(out.WhatsappLink, "https://wa.me/5215512345678?text=") {
		t.Fatalf("unexpected whatsapp link %q", out.WhatsappLink)
	}
}

func TestCheckoutAttachesAuthenticatedUser(t *testing.T) {
	svc := &stubPlacer{order: testOrder()}
	handler := Checkout(svc, nil, testBuilder(t), nil)

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.input.UserID == nil || *svc.input.UserID != userID {
		t.Fatalf("expected user id %s attached, got %v", userID, svc.input.UserID)
	}
}

func TestCheckoutRejectsEmptyLines(t *testing.T) {
	svc := &stubPlacer{order: testOrder()}
	handler := Checkout(svc, nil, testBuilder(t), nil)

	body := `{"customer_name": "Ana", "customer_phone": "+52", "lines": []}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutClearsCartBestEffort(t *testing.T) {
	svc := &stubPlacer{order: testOrder()}
	carts := &stubCart{err: pkgerrors.New(pkgerrors.CodeInternal, "cart backend down")}
	handler := Checkout(svc, carts, testBuilder(t), nil)

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	// Order committed; a failed cart sweep must not fail the response.
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !carts.cleared {
		t.Fatal("expected cart clear attempt")
	}
	if carts.userID != userID {
		t.Fatalf("expected clear for %s got %s", userID, carts.userID)
	}
}

func TestCheckoutSkipsCartForGuests(t *testing.T) {
	svc := &stubPlacer{order: testOrder()}
	carts := &stubCart{}
	handler := Checkout(svc, carts, testBuilder(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if carts.cleared {
		t.Fatal("guest checkout must not touch carts")
	}
}

func TestCheckoutSurfacesInsufficientStock(t *testing.T) {
	svc := &stubPlacer{
		err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").WithDetails(map[string]any{
			"product_id": "6b1e3b9a-9071-4bb7-9df2-6b2e9a4cb6a1",
			"requested":  2,
			"available":  1,
		}),
	}
	handler := Checkout(svc, nil, testBuilder(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "INSUFFICIENT_STOCK") {
		t.Fatalf("expected stock error code in body: %s", resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "available") {
		t.Fatalf("expected availability details in body: %s", resp.Body.String())
	}
}
