package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/admin"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
)

type ctxKey string

const (
	userCtxKey      ctxKey = "telegram_user"
	requestIDCtxKey ctxKey = "request_id"
)

// InitDataValidator verifies Telegram WebApp initData and extracts the user.
type InitDataValidator interface {
	Validate(initData string) (*domain.User, error)
}

// UserUpserter refreshes the user profile on every authenticated request.
type UserUpserter interface {
	Upsert(ctx context.Context, u *domain.User) error
}

// TelegramAuthMiddleware authenticates requests by the X-Telegram-Init-Data
// header. The client's copy of the user object is never trusted.
func TelegramAuthMiddleware(validator InitDataValidator, users UserUpserter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initData := r.Header.Get("X-Telegram-Init-Data")
			if initData == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing init data")
				return
			}

			user, err := validator.Validate(initData)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid init data")
				return
			}

			if err := users.Upsert(r.Context(), user); err != nil {
				// Profile refresh is best-effort; the request proceeds.
				log.Printf("user upsert failed for %d: %v", user.TelegramID, err)
			}

			ctx := context.WithValue(r.Context(), userCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminAuthMiddleware requires a live admin session token.
func AdminAuthMiddleware(auth *admin.Auth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)

			ok, err := auth.CheckSession(r.Context(), token)
			if err != nil {
				log.Printf("admin session check failed: %v", err)
				respondError(w, http.StatusServiceUnavailable, "service_unavailable", "session store unavailable")
				return
			}
			if !ok {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing or expired admin session")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), requestIDCtxKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func userFromContext(ctx context.Context) *domain.User {
	if user, ok := ctx.Value(userCtxKey).(*domain.User); ok {
		return user
	}
	return nil
}
