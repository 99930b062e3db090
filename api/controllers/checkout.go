package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/luciagrant/mercadito-backend/api/middleware"
	"github.com/luciagrant/mercadito-backend/api/responses"
	"github.com/luciagrant/mercadito-backend/api/validators"
	"github.com/luciagrant/mercadito-backend/internal/settlement"
	"github.com/luciagrant/mercadito-backend/internal/whatsapp"
	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	pkgerrors "github.com/luciagrant/mercadito-backend/pkg/errors"
	"github.com/luciagrant/mercadito-backend/pkg/logger"
)

// OrderPlacer is the slice of the settlement service checkout uses.
// *settlement.Service satisfies it.
type OrderPlacer interface {
	CreateOrderWithReservations(ctx context.Context, input settlement.CheckoutInput) (*models.Order, error)
}

// CartClearer empties a customer's saved cart once their order is committed.
type CartClearer interface {
	Clear(ctx context.Context, userID uuid.UUID) error
}

type checkoutResponse struct {
	Order        orderResponse `json:"order"`
	WhatsappLink string        `json:"whatsapp_link,omitempty"`
}

// Checkout places an order, reserving stock for every line. A logged-in
// customer gets the order attached to their account; guests check out with
// just contact details.
func Checkout(svc OrderPlacer, carts CartClearer, wa *whatsapp.Builder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		var payload settlement.CheckoutInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid user id in token"))
				return
			}
			payload.UserID = &userID
		}

		order, err := svc.CreateOrderWithReservations(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Best effort: the order is already committed, a stale cart is not
		// worth failing the checkout over.
		if carts != nil && payload.UserID != nil {
			if clearErr := carts.Clear(r.Context(), *payload.UserID); clearErr != nil && logg != nil {
				logg.Warn(r.Context(), "failed to clear cart after checkout")
			}
		}

		out := checkoutResponse{Order: newOrderResponse(order)}
		if wa != nil {
			out.WhatsappLink = wa.Link(order)
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}
