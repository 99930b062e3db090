package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/luciagrant/mercadito-backend/api/responses"
	"github.com/luciagrant/mercadito-backend/api/validators"
	"github.com/luciagrant/mercadito-backend/internal/orders"
	"github.com/luciagrant/mercadito-backend/internal/settlement"
	"github.com/luciagrant/mercadito-backend/internal/whatsapp"
	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	"github.com/luciagrant/mercadito-backend/pkg/enums"
	pkgerrors "github.com/luciagrant/mercadito-backend/pkg/errors"
	"github.com/luciagrant/mercadito-backend/pkg/logger"
	"github.com/luciagrant/mercadito-backend/pkg/pagination"
)

// OrderAdmin is the slice of the settlement service the admin order
// endpoints use. *settlement.Service satisfies it.
type OrderAdmin interface {
	ListOrders(ctx context.Context, filter orders.ListFilter, params pagination.Params) ([]models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, number int64) (*models.Order, error)
	MarkOrderPaid(ctx context.Context, orderID uuid.UUID, input settlement.MarkPaidInput) (*models.Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ChangeOrderStatus(ctx context.Context, orderID uuid.UUID, input settlement.StatusChangeInput) (*models.Order, error)
	UpdateShippingCost(ctx context.Context, orderID uuid.UUID, input settlement.ShippingCostInput) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

type orderPage struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// AdminCreateOrder places an order on behalf of a customer. The acting
// operator is never attached as the order's owner.
func AdminCreateOrder(svc OrderPlacer, wa *whatsapp.Builder, logg *logger.Logger) http.HandlerFunc {
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
		payload.UserID = nil

		order, err := svc.CreateOrderWithReservations(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := checkoutResponse{Order: newOrderResponse(order)}
		if wa != nil {
			out.WhatsappLink = wa.Link(order)
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}

// AdminListOrders pages the order book, newest first, with optional
// status, payment status, and customer filters.
func AdminListOrders(svc OrderAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter orders.ListFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filter.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
			status, err := enums.ParsePaymentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status filter"))
				return
			}
			filter.PaymentStatus = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("user_id")); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid user id filter"))
				return
			}
			filter.UserID = &userID
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		results, err := svc.ListOrders(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		hasMore := len(results) > limit
		if hasMore {
			results = results[:limit]
		}
		page := orderPage{Orders: make([]orderResponse, 0, len(results))}
		for i := range results {
			page.Orders = append(page.Orders, newOrderResponse(&results[i]))
		}
		if hasMore {
			last := results[len(results)-1]
			page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		}
		responses.WriteSuccess(w, page)
	}
}

// AdminGetOrder fetches one order with its lines.
func AdminGetOrder(svc OrderAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminGetOrderByNumber looks an order up by its human-facing number.
func AdminGetOrderByNumber(svc OrderAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		number, err := strconv.ParseInt(chi.URLParam(r, "orderNumber"), 10, 64)
		if err != nil || number <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order number"))
			return
		}

		order, err := svc.GetOrderByNumber(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminMarkOrderPaid settles payment: holds become stock deductions.
func AdminMarkOrderPaid(svc OrderAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload settlement.MarkPaidInput
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		order, err := svc.MarkOrderPaid(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminCancelOrder cancels an order and releases its reservations.
func AdminCancelOrder(svc OrderAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CancelOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminChangeOrderStatus applies a lifecycle transition.
func AdminChangeOrderStatus(svc OrderAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload settlement.StatusChangeInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ChangeOrderStatus(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminUpdateShippingCost sets the quoted shipping on an open order.
func AdminUpdateShippingCost(svc OrderAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload settlement.ShippingCostInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateShippingCost(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminDeleteOrder removes an order outright, releasing any active holds.
func AdminDeleteOrder(svc OrderAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteOrder(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
