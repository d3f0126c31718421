package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/admin"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type validatorMock struct {
	user *domain.User
	err  error
}

func (m *validatorMock) Validate(_ string) (*domain.User, error) {
	return m.user, m.err
}

type upserterMock struct {
	upserted []*domain.User
	err      error
}

func (m *upserterMock) Upsert(_ context.Context, u *domain.User) error {
	if m.err != nil {
		return m.err
	}
	m.upserted = append(m.upserted, u)
	return nil
}

func TestTelegramAuthMiddleware_Success(t *testing.T) {
	validator := &validatorMock{user: &domain.User{TelegramID: 42, Username: "tester"}}
	upserter := &upserterMock{}

	var seen *domain.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = userFromContext(r.Context())
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("X-Telegram-Init-Data", "signed-payload")

	TelegramAuthMiddleware(validator, upserter)(next).ServeHTTP(recorder, request)

	if seen == nil || seen.TelegramID != 42 {
		t.Fatalf("Expected user 42 in context, got %+v", seen)
	}
	if len(upserter.upserted) != 1 {
		t.Errorf("Expected 1 upsert, got %d", len(upserter.upserted))
	}
}

func TestTelegramAuthMiddleware_MissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be reached")
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)

	TelegramAuthMiddleware(&validatorMock{}, &upserterMock{})(next).ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestTelegramAuthMiddleware_InvalidInitData(t *testing.T) {
	validator := &validatorMock{err: errors.New("hash mismatch")}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be reached")
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("X-Telegram-Init-Data", "tampered")

	TelegramAuthMiddleware(validator, &upserterMock{})(next).ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestTelegramAuthMiddleware_UpsertFailureIsNotFatal(t *testing.T) {
	validator := &validatorMock{user: &domain.User{TelegramID: 42}}
	upserter := &upserterMock{err: errors.New("db down")}

	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("X-Telegram-Init-Data", "signed-payload")

	TelegramAuthMiddleware(validator, upserter)(next).ServeHTTP(recorder, request)

	if !reached {
		t.Error("Expected request to proceed despite upsert failure")
	}
}

func TestAdminAuthMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	auth := admin.NewAuth(client, &adminLookupMock{}, "1234")
	token, err := auth.LoginWithPIN(context.Background(), "1234")
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	protected := AdminAuthMiddleware(auth)(next)

	// Live session passes
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/admin/orders", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	protected.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusNoContent {
		t.Errorf("Expected status code %d, got %d", http.StatusNoContent, recorder.Code)
	}

	// Missing token is rejected
	recorder = httptest.NewRecorder()
	request = httptest.NewRequest("GET", "/admin/orders", nil)
	protected.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}

	// Garbage token is rejected
	recorder = httptest.NewRecorder()
	request = httptest.NewRequest("GET", "/admin/orders", nil)
	request.Header.Set("Authorization", "Bearer not-a-session")
	protected.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	RequestIDMiddleware(next).ServeHTTP(recorder, request)

	if recorder.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated X-Request-ID header")
	}

	recorder = httptest.NewRecorder()
	request = httptest.NewRequest("GET", "/", nil)
	request.Header.Set("X-Request-ID", "req-abc")
	RequestIDMiddleware(next).ServeHTTP(recorder, request)

	if got := recorder.Header().Get("X-Request-ID"); got != "req-abc" {
		t.Errorf("Expected X-Request-ID 'req-abc', got '%s'", got)
	}
}
