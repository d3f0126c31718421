package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/cart"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/order"
)

// OrderPlacer is the checkout seam; the handler never builds orders itself.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, ledger *cart.Ledger, req order.CheckoutRequest) (*domain.Order, error)
}

type CheckoutHandler struct {
	orders OrderPlacer
	store  cart.Store
}

func NewCheckoutHandler(orders OrderPlacer, store cart.Store) *CheckoutHandler {
	return &CheckoutHandler{
		orders: orders,
		store:  store,
	}
}

type CheckoutRequestDTO struct {
	DeliveryType    string `json:"delivery_type"`
	DeliveryAddress string `json:"delivery_address,omitempty"`
	PhoneNumber     string `json:"phone_number"`
	PaymentMethod   string `json:"payment_method"`
	CashChangeFrom  string `json:"cash_change_from,omitempty"`
	UtensilsCount   int    `json:"utensils_count"`
	Comment         string `json:"comment,omitempty"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	deliveryType := domain.DeliveryType(req.DeliveryType)
	if deliveryType != domain.DeliveryTypeDelivery && deliveryType != domain.DeliveryTypePickup {
		respondError(w, http.StatusBadRequest, "invalid_delivery_type", "delivery_type must be delivery or pickup")
		return
	}
	if deliveryType == domain.DeliveryTypeDelivery && req.DeliveryAddress == "" {
		respondError(w, http.StatusBadRequest, "missing_address", "delivery_address is required for delivery")
		return
	}

	paymentMethod := domain.PaymentMethod(req.PaymentMethod)
	if paymentMethod != domain.PaymentMethodCash && paymentMethod != domain.PaymentMethodTransfer {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "payment_method must be cash or transfer")
		return
	}

	ledger := cart.Restore(r.Context(), h.store, fmt.Sprint(user.TelegramID))

	placed, err := h.orders.PlaceOrder(r.Context(), ledger, order.CheckoutRequest{
		UserID:          user.TelegramID,
		DeliveryType:    deliveryType,
		DeliveryAddress: req.DeliveryAddress,
		PhoneNumber:     req.PhoneNumber,
		PaymentMethod:   paymentMethod,
		CashChangeFrom:  req.CashChangeFrom,
		UtensilsCount:   req.UtensilsCount,
		Comment:         req.Comment,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, placed)
}
