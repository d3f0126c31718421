package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/admin"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/catalog"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/order"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/storage"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps domain sentinel errors to HTTP status codes.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrItemNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, storage.ErrImageNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrMissingPhoneNumber),
		errors.Is(err, order.ErrInactiveMenuItem):
		respondError(w, http.StatusUnprocessableEntity, "invalid_order", err.Error())
	case errors.Is(err, order.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, admin.ErrBadPIN):
		respondError(w, http.StatusUnauthorized, "bad_pin", "wrong pin")
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
