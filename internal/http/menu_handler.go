package http

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/catalog"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/storage"
	"github.com/go-chi/chi/v5"
)

// MenuProvider is the read side of the catalog the storefront needs.
type MenuProvider interface {
	GetMenu(ctx context.Context) (*catalog.Menu, error)
	GetItem(ctx context.Context, id string) (*domain.MenuItem, error)
}

type MenuHandler struct {
	menu   MenuProvider
	images storage.ImageStore
}

func NewMenuHandler(menu MenuProvider, images storage.ImageStore) *MenuHandler {
	return &MenuHandler{
		menu:   menu,
		images: images,
	}
}

func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.menu.GetMenu(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, menu)
}

func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.menu.GetItem(r.Context(), chi.URLParam(r, "item_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	reader, err := h.images.Open(name)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, reader); err != nil {
		log.Printf("failed to stream image %s: %v", name, err)
	}
}
