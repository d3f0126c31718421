package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/admin"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/order"
	"github.com/Shomirsaidov/chifir-food-ordering/internal/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type catalogAdminMock struct {
	categories []*domain.Category
	items      []*domain.MenuItem
	err        error
}

func (m *catalogAdminMock) ListCategories(_ context.Context) ([]*domain.Category, error) {
	return m.categories, m.err
}

func (m *catalogAdminMock) CreateCategory(_ context.Context, c *domain.Category) error {
	if m.err != nil {
		return m.err
	}
	m.categories = append(m.categories, c)
	return nil
}

func (m *catalogAdminMock) UpdateCategory(_ context.Context, _ *domain.Category) error {
	return m.err
}

func (m *catalogAdminMock) DeleteCategory(_ context.Context, _ string) error {
	return m.err
}

func (m *catalogAdminMock) ListAllItems(_ context.Context) ([]*domain.MenuItem, error) {
	return m.items, m.err
}

func (m *catalogAdminMock) CreateItem(_ context.Context, item *domain.MenuItem) error {
	if m.err != nil {
		return m.err
	}
	m.items = append(m.items, item)
	return nil
}

func (m *catalogAdminMock) UpdateItem(_ context.Context, _ *domain.MenuItem) error {
	return m.err
}

func (m *catalogAdminMock) DeleteItem(_ context.Context, _ string) error {
	return m.err
}

type orderAdminMock struct {
	orders   []*domain.Order
	err      error
	advanced []domain.OrderStatus
}

func (m *orderAdminMock) ListByStatus(_ context.Context, _ domain.OrderStatus) ([]*domain.Order, error) {
	return m.orders, m.err
}

func (m *orderAdminMock) AdvanceStatus(_ context.Context, _ uuid.UUID, to domain.OrderStatus) error {
	if m.err != nil {
		return m.err
	}
	m.advanced = append(m.advanced, to)
	return nil
}

type userListerMock struct {
	users []*domain.User
	err   error
}

func (m *userListerMock) List(_ context.Context) ([]*domain.User, error) {
	return m.users, m.err
}

type imageStoreMock struct {
	uploaded map[string][]byte
	err      error
}

func (m *imageStoreMock) Upload(_ context.Context, originalName string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data, _ := io.ReadAll(r)
	name := "stored-" + originalName
	if m.uploaded == nil {
		m.uploaded = make(map[string][]byte)
	}
	m.uploaded[name] = data
	return name, nil
}

func (m *imageStoreMock) Open(_ string) (io.ReadCloser, error) {
	return nil, m.err
}

func (m *imageStoreMock) Delete(_ context.Context, _ string) error {
	return m.err
}

type adminLookupMock struct {
	admins map[string]bool
}

func (m *adminLookupMock) IsAdminUsername(_ context.Context, username string) (bool, error) {
	return m.admins[username], nil
}

func setupAdminHandler(t *testing.T, pin string) (*AdminHandler, *catalogAdminMock, *orderAdminMock) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	auth := admin.NewAuth(client, &adminLookupMock{admins: map[string]bool{"boss": true}}, pin)
	catalogM := &catalogAdminMock{}
	ordersM := &orderAdminMock{}
	handler := NewAdminHandler(auth, catalogM, ordersM, &userListerMock{}, &imageStoreMock{})
	return handler, catalogM, ordersM
}

func TestAdminLogin_WithPIN(t *testing.T) {
	handler, _, _ := setupAdminHandler(t, "1234")

	body, _ := json.Marshal(AdminLoginRequestDTO{PIN: "1234"})
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("POST", "/admin/login", bytes.NewReader(body)), 1)

	handler.Login(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response AdminLoginResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Token == "" {
		t.Error("Expected a session token")
	}
}

func TestAdminLogin_WrongPIN(t *testing.T) {
	handler, _, _ := setupAdminHandler(t, "1234")

	body, _ := json.Marshal(AdminLoginRequestDTO{PIN: "0000"})
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("POST", "/admin/login", bytes.NewReader(body)), 1)

	handler.Login(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "bad_pin" {
		t.Errorf("Expected error code 'bad_pin', got '%s'", response.Code)
	}
}

func TestAdminLogin_ByUsername(t *testing.T) {
	handler, _, _ := setupAdminHandler(t, "1234")

	// Empty PIN plus a username on the admin list opens a session.
	body, _ := json.Marshal(AdminLoginRequestDTO{})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/admin/login", bytes.NewReader(body))
	ctx := context.WithValue(request.Context(), userCtxKey, &domain.User{TelegramID: 1, Username: "boss"})
	request = request.WithContext(ctx)

	handler.Login(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response AdminLoginResponseDTO
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Token == "" {
		t.Error("Expected a session token")
	}
}

func TestAdminLogin_UsernameNotOnList(t *testing.T) {
	handler, _, _ := setupAdminHandler(t, "1234")

	body, _ := json.Marshal(AdminLoginRequestDTO{})
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("POST", "/admin/login", bytes.NewReader(body)), 1)

	handler.Login(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestAdminUpdateOrderStatus_Success(t *testing.T) {
	handler, _, ordersM := setupAdminHandler(t, "1234")

	id := uuid.New()
	body, _ := json.Marshal(UpdateStatusRequestDTO{Status: "in_progress"})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("PATCH", "/admin/orders/"+id.String()+"/status", bytes.NewReader(body))
	request = withURLParam(request, "order_id", id.String())

	handler.UpdateOrderStatus(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if len(ordersM.advanced) != 1 || ordersM.advanced[0] != domain.OrderStatusInProgress {
		t.Errorf("Expected one advance to in_progress, got %v", ordersM.advanced)
	}
}

func TestAdminUpdateOrderStatus_IllegalTransition(t *testing.T) {
	handler, _, ordersM := setupAdminHandler(t, "1234")
	ordersM.err = order.ErrIllegalTransition

	id := uuid.New()
	body, _ := json.Marshal(UpdateStatusRequestDTO{Status: "new"})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("PATCH", "/admin/orders/"+id.String()+"/status", bytes.NewReader(body))
	request = withURLParam(request, "order_id", id.String())

	handler.UpdateOrderStatus(recorder, request)

	if recorder.Code != http.StatusConflict {
		t.Errorf("Expected status code %d, got %d", http.StatusConflict, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "illegal_transition" {
		t.Errorf("Expected error code 'illegal_transition', got '%s'", response.Code)
	}
}

func TestAdminUpdateOrderStatus_InvalidID(t *testing.T) {
	handler, _, _ := setupAdminHandler(t, "1234")

	body, _ := json.Marshal(UpdateStatusRequestDTO{Status: "in_progress"})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("PATCH", "/admin/orders/abc/status", bytes.NewReader(body))
	request = withURLParam(request, "order_id", "abc")

	handler.UpdateOrderStatus(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestAdminCreateCategory_Success(t *testing.T) {
	handler, catalogM, _ := setupAdminHandler(t, "1234")

	body, _ := json.Marshal(domain.Category{Name: "Drinks", SortOrder: 2})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/admin/categories", bytes.NewReader(body))

	handler.CreateCategory(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}
	if len(catalogM.categories) != 1 {
		t.Errorf("Expected 1 category created, got %d", len(catalogM.categories))
	}
}

func TestAdminCreateCategory_MissingName(t *testing.T) {
	handler, _, _ := setupAdminHandler(t, "1234")

	body, _ := json.Marshal(domain.Category{SortOrder: 2})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/admin/categories", bytes.NewReader(body))

	handler.CreateCategory(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestAdminCreateMenuItem_NegativePrice(t *testing.T) {
	handler, _, _ := setupAdminHandler(t, "1234")

	body, _ := json.Marshal(domain.MenuItem{Name: "Burger", Price: -1})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/admin/items", bytes.NewReader(body))

	handler.CreateMenuItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "invalid_item" {
		t.Errorf("Expected error code 'invalid_item', got '%s'", response.Code)
	}
}

func TestAdminUploadImage(t *testing.T) {
	images := &imageStoreMock{}
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	auth := admin.NewAuth(client, &adminLookupMock{}, "1234")
	handler := NewAdminHandler(auth, &catalogAdminMock{}, &orderAdminMock{}, &userListerMock{}, images)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("image", "burger.jpg")
	part.Write([]byte("jpeg bytes"))
	writer.Close()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/admin/images", &buf)
	request.Header.Set("Content-Type", writer.FormDataContentType())

	handler.UploadImage(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}

	var response map[string]string
	json.NewDecoder(recorder.Body).Decode(&response)
	if response["image_loc"] != "stored-burger.jpg" {
		t.Errorf("Expected image_loc 'stored-burger.jpg', got '%s'", response["image_loc"])
	}
	if string(images.uploaded["stored-burger.jpg"]) != "jpeg bytes" {
		t.Error("Expected uploaded bytes to reach the store")
	}
}

func TestAdminUploadImage_MissingFile(t *testing.T) {
	handler, _, _ := setupAdminHandler(t, "1234")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("note", "no file here")
	writer.Close()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/admin/images", &buf)
	request.Header.Set("Content-Type", writer.FormDataContentType())

	handler.UploadImage(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestAdminDeleteImage_NotFound(t *testing.T) {
	images := &imageStoreMock{err: storage.ErrImageNotFound}
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	auth := admin.NewAuth(client, &adminLookupMock{}, "1234")
	handler := NewAdminHandler(auth, &catalogAdminMock{}, &orderAdminMock{}, &userListerMock{}, images)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("DELETE", "/admin/images/gone.jpg", nil)
	request = withURLParam(request, "name", "gone.jpg")

	handler.DeleteImage(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestAdminListOrders_DefaultsToNew(t *testing.T) {
	handler, _, ordersM := setupAdminHandler(t, "1234")
	ordersM.orders = []*domain.Order{{ID: uuid.New(), Status: domain.OrderStatusNew}}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/admin/orders", nil)

	handler.ListOrders(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response []*domain.Order
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response) != 1 {
		t.Errorf("Expected 1 order, got %d", len(response))
	}
}
