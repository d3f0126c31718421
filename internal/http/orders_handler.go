package http

import (
	"context"
	"net/http"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrderReader interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID int64) ([]*domain.Order, error)
	CountUserOrders(ctx context.Context, userID int64) (int, error)
}

type OrdersHandler struct {
	orders OrderReader
}

func NewOrdersHandler(orders OrderReader) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

type OrderHistoryDTO struct {
	Orders []*domain.Order `json:"orders"`
	Count  int             `json:"count"`
}

func (h *OrdersHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orders.ListUserOrders(r.Context(), user.TelegramID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	count, err := h.orders.CountUserOrders(r.Context(), user.TelegramID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, OrderHistoryDTO{Orders: orders, Count: count})
}

func (h *OrdersHandler) GetMyOrder(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// Users only ever see their own orders.
	if order.UserID != user.TelegramID {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}

	respondJSON(w, http.StatusOK, order)
}
