package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/admin"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CatalogAdmin is the write side of the catalog, admin panel only.
type CatalogAdmin interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListAllItems(ctx context.Context) ([]*domain.MenuItem, error)
	CreateItem(ctx context.Context, item *domain.MenuItem) error
	UpdateItem(ctx context.Context, item *domain.MenuItem) error
	DeleteItem(ctx context.Context, id string) error
}

type OrderAdmin interface {
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
	AdvanceStatus(ctx context.Context, id uuid.UUID, to domain.OrderStatus) error
}

type UserLister interface {
	List(ctx context.Context) ([]*domain.User, error)
}

type AdminHandler struct {
	auth    *admin.Auth
	catalog CatalogAdmin
	orders  OrderAdmin
	users   UserLister
	images  storage.ImageStore
}

func NewAdminHandler(auth *admin.Auth, catalog CatalogAdmin, orders OrderAdmin, users UserLister, images storage.ImageStore) *AdminHandler {
	return &AdminHandler{
		auth:    auth,
		catalog: catalog,
		orders:  orders,
		users:   users,
		images:  images,
	}
}

type AdminLoginRequestDTO struct {
	PIN string `json:"pin"`
}

type AdminLoginResponseDTO struct {
	Token string `json:"token"`
}

// Login opens an admin session, either by PIN or automatically when the
// authenticated Telegram username is on the admin list.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.PIN == "" {
		user := userFromContext(r.Context())
		if user != nil && user.Username != "" {
			token, ok, err := h.auth.LoginByUsername(r.Context(), user.Username)
			if err != nil {
				handleServiceError(w, err)
				return
			}
			if ok {
				respondJSON(w, http.StatusOK, AdminLoginResponseDTO{Token: token})
				return
			}
		}
		respondError(w, http.StatusUnauthorized, "bad_pin", "wrong pin")
		return
	}

	token, err := h.auth.LoginWithPIN(r.Context(), req.PIN)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, AdminLoginResponseDTO{Token: token})
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if err := h.auth.Logout(r.Context(), token); err != nil {
		log.Printf("admin logout failed: %v", err)
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.OrderStatusNew
	}

	orders, err := h.orders.ListByStatus(r.Context(), status)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.orders.AdvanceStatus(r.Context(), id, domain.OrderStatus(req.Status)); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var c domain.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if c.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_category", "name is required")
		return
	}

	if err := h.catalog.CreateCategory(r.Context(), &c); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var c domain.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	c.ID = chi.URLParam(r, "category_id")

	if err := h.catalog.UpdateCategory(r.Context(), &c); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCategory(r.Context(), chi.URLParam(r, "category_id")); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *AdminHandler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListAllItems(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *AdminHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	item, ok := decodeMenuItem(w, r)
	if !ok {
		return
	}

	if err := h.catalog.CreateItem(r.Context(), item); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *AdminHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	item, ok := decodeMenuItem(w, r)
	if !ok {
		return
	}
	item.ID = chi.URLParam(r, "item_id")

	if err := h.catalog.UpdateItem(r.Context(), item); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *AdminHandler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteItem(r.Context(), chi.URLParam(r, "item_id")); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

const maxImageSize = 5 << 20 // 5MB

func (h *AdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "expected multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "image field is required")
		return
	}
	defer file.Close()

	name, err := h.images.Upload(r.Context(), header.Filename, file)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"image_loc": name})
}

// DeleteImage removes a stored image, used when an item's picture is replaced.
func (h *AdminHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.images.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func decodeMenuItem(w http.ResponseWriter, r *http.Request) (*domain.MenuItem, bool) {
	var item domain.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return nil, false
	}
	if item.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_item", "name is required")
		return nil, false
	}
	if item.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_item", "price must not be negative")
		return nil, false
	}
	return &item, true
}
