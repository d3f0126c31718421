package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/cart"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/order"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	store   cart.Store
	catalog order.CatalogReader
}

func NewCartHandler(store cart.Store, catalog order.CatalogReader) *CartHandler {
	return &CartHandler{
		store:   store,
		catalog: catalog,
	}
}

type AddItemRequestDTO struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// CartViewDTO is the cart as the Mini-App renders it, with the derived
// figures recomputed server-side on every response.
type CartViewDTO struct {
	Lines       []cart.Line `json:"lines"`
	ItemCount   int         `json:"item_count"`
	TotalAmount int64       `json:"total_amount"`
	IsEmpty     bool        `json:"is_empty"`
}

func cartView(ledger *cart.Ledger) CartViewDTO {
	return CartViewDTO{
		Lines:       ledger.Lines(),
		ItemCount:   ledger.ItemCount(),
		TotalAmount: ledger.TotalAmount(),
		IsEmpty:     ledger.IsEmpty(),
	}
}

func (h *CartHandler) slotKey(r *http.Request) (string, bool) {
	user := userFromContext(r.Context())
	if user == nil {
		return "", false
	}
	return fmt.Sprint(user.TelegramID), true
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	key, ok := h.slotKey(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	ledger := cart.Restore(r.Context(), h.store, key)
	respondJSON(w, http.StatusOK, cartView(ledger))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	key, ok := h.slotKey(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.MenuItemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_menu_item_id", "menu_item_id is required")
		return
	}

	item, err := h.catalog.GetItem(r.Context(), req.MenuItemID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	ledger := cart.Restore(r.Context(), h.store, key)
	ledger.AddItem(r.Context(), cart.Line{Item: *item, Quantity: req.Quantity})

	respondJSON(w, http.StatusCreated, cartView(ledger))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	key, ok := h.slotKey(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	itemID := chi.URLParam(r, "item_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	ledger := cart.Restore(r.Context(), h.store, key)
	ledger.UpdateQuantity(r.Context(), itemID, req.Quantity)

	respondJSON(w, http.StatusOK, cartView(ledger))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	key, ok := h.slotKey(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	itemID := chi.URLParam(r, "item_id")

	ledger := cart.Restore(r.Context(), h.store, key)
	ledger.RemoveItem(r.Context(), itemID)

	respondJSON(w, http.StatusOK, cartView(ledger))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	key, ok := h.slotKey(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	ledger := cart.Restore(r.Context(), h.store, key)
	ledger.Clear(r.Context())

	respondJSON(w, http.StatusOK, cartView(ledger))
}
