package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"shop-service/internal/auth"
	"shop-service/internal/broker"
	"shop-service/internal/models"
	"shop-service/internal/service"
	"shop-service/internal/store/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memorySessions struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemorySessions() *memorySessions {
	return &memorySessions{data: map[string]string{}}
}

func (m *memorySessions) SetSession(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[fmt.Sprint("session:", userID)] = tokenID
	return nil
}

func (m *memorySessions) GetSession(ctx context.Context, userID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[fmt.Sprint("session:", userID)], nil
}

func (m *memorySessions) DeleteSession(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, fmt.Sprint("session:", userID))
	return nil
}

type discardWriter struct{}

func (discardWriter) PublishEvent(ctx context.Context, key string, event interface{}) error {
	return nil
}

type testServer struct {
	router *gin.Engine
	db     *memory.Store
	hasher *auth.PasswordHasher
}

func newTestServer(t *testing.T, checks map[string]func(context.Context) error) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	db := memory.New()
	sessions := newMemorySessions()
	publisher := broker.NewEventPublisher(discardWriter{})
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	services := Services{
		Accounts: service.NewAccountService(db, sessions, publisher, service.AccountOptions{
			Tokens:     auth.NewTokenManager("test-secret", "shop-service", time.Hour),
			Hasher:     hasher,
			Activation: auth.NewActivationCodec("activation-secret"),
		}),
		Catalog: service.NewCatalogService(db),
		Carts:   service.NewCartService(db),
		Orders:  service.NewOrderService(db, publisher, nil, 0),
		Users:   service.NewUserService(db, sessions, hasher),
	}

	router := gin.New()
	NewHandler(services, Options{DefaultPageLimit: 5, MaxPageLimit: 10, ReadinessChecks: checks}).SetupRoutes(router)
	return &testServer{router: router, db: db, hasher: hasher}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// createUser stores a verified account and logs it in
func (s *testServer) createUser(t *testing.T, email, role string) string {
	t.Helper()
	hash, err := s.hasher.Hash("secret123")
	require.NoError(t, err)
	require.NoError(t, s.db.CreateUser(context.Background(), &models.User{
		Name:         "Test",
		Email:        email,
		Phone:        "0123456789",
		Address:      "Somewhere",
		PasswordHash: hash,
		Role:         role,
		Verify:       true,
	}))

	w := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data loginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, map[string]func(context.Context) error{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "not_ready", body["status"])
	assert.Equal(t, map[string]interface{}{"postgres": "ok", "redis": "unavailable"}, body["checks"])
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"name":                  "Jane",
		"email":                 "not-an-email",
		"phone":                 "12345",
		"address":               "Road 1",
		"gender":                true,
		"password":              "secret123",
		"password_confirmation": "different",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(422), body["status"])
	assert.Equal(t, "validation_error", body["error"])
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "phone")
	assert.Contains(t, errs, "password_confirmation")
	assert.NotContains(t, errs, "name")
}

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"name":                  "Jane",
		"email":                 "jane@example.com",
		"phone":                 "0123456789",
		"address":               "Road 1",
		"gender":                false,
		"password":              "secret123",
		"password_confirmation": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "secret123")

	w = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "jane@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "jane@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["data"].(map[string]interface{})["access_token"].(string)

	w = s.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane@example.com", decode(t, w)["data"].(map[string]interface{})["email"])

	w = s.do(t, http.MethodGet, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthGuards(t *testing.T) {
	s := newTestServer(t, nil)
	userToken := s.createUser(t, "user@example.com", models.RoleUser)

	w := s.do(t, http.MethodGet, "/carts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/carts", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/categories", userToken, gin.H{
		"category_name": "Drinks", "category_desc": "Cold", "category_status": true,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode(t, w)["error"])

	w = s.do(t, http.MethodGet, "/orders", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.createUser(t, "admin@example.com", models.RoleAdmin)

	w := s.do(t, http.MethodPost, "/categories", admin, gin.H{
		"category_name": "Drinks", "category_desc": "Cold", "category_status": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	categoryID := int64(decode(t, w)["data"].(map[string]interface{})["id"].(float64))

	for i, name := range []string{"Cola", "Juice", "Water"} {
		w = s.do(t, http.MethodPost, "/products", admin, gin.H{
			"product_name": name, "product_price": 50 * (i + 1), "product_status": true, "category_id": categoryID,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/products?page=2&limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, map[string]interface{}{
		"current_page": float64(2), "total_pages": float64(2), "total_items": float64(3), "per_page": float64(2),
	}, body["pagination"])

	w = s.do(t, http.MethodGet, "/products?search=%20jui%20", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/categories/%d/products", categoryID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	products := decode(t, w)["data"].([]interface{})
	require.Len(t, products, 3)
	assert.NotContains(t, products[0], "category_id")

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/categories/%d", categoryID), admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "constraint_violation", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/products/1/detail", admin, gin.H{
		"product_detail_intro": "Fizzy", "product_detail_desc": "Classic", "product_detail_weight": "0.33",
		"product_detail_mfg": "2024-13-01", "product_detail_exp": "2025-01-01",
		"product_detail_origin": "USA", "product_detail_manual": "Serve cold",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w)["errors"], "product_detail_mfg")

	w = s.do(t, http.MethodPost, "/products/1/detail", admin, gin.H{
		"product_detail_intro": "Fizzy", "product_detail_desc": "Classic", "product_detail_weight": "0.33",
		"product_detail_mfg": "2024-01-01", "product_detail_exp": "2025-01-01",
		"product_detail_origin": "USA", "product_detail_manual": "Serve cold",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/products/1/detail", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "0.33", detail["product_detail_weight"])
	assert.Equal(t, "2024-01-01", detail["product_detail_mfg"])

	w = s.do(t, http.MethodGet, "/products/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/products/99", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartCheckoutAndStatusFlow(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.createUser(t, "admin@example.com", models.RoleAdmin)
	buyer := s.createUser(t, "buyer@example.com", models.RoleUser)

	ctx := context.Background()
	category := &models.Category{Name: "Drinks", Desc: "Cold", Status: true}
	require.NoError(t, s.db.CreateCategory(ctx, category))
	a := &models.Product{Name: "A", Price: 100, Status: true, CategoryID: category.ID}
	require.NoError(t, s.db.CreateProduct(ctx, a))
	b := &models.Product{Name: "B", Price: 50, Status: true, CategoryID: category.ID}
	require.NoError(t, s.db.CreateProduct(ctx, b))

	w := s.do(t, http.MethodGet, "/orders", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No orders found", decode(t, w)["message"])

	cartTotals := func(w *httptest.ResponseRecorder) (float64, float64) {
		data := decode(t, w)["data"].(map[string]interface{})
		return data["total_price"].(float64), data["total_quantity"].(float64)
	}

	w = s.do(t, http.MethodPost, "/carts/products", buyer, gin.H{"product_id": a.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	price, qty := cartTotals(w)
	assert.Equal(t, []float64{200, 2}, []float64{price, qty})

	w = s.do(t, http.MethodPost, "/carts/products", buyer, gin.H{"product_id": b.ID, "quantity": 1})
	price, qty = cartTotals(w)
	assert.Equal(t, []float64{250, 3}, []float64{price, qty})

	w = s.do(t, http.MethodPatch, "/carts/products", buyer, gin.H{
		"products": []gin.H{{"product_id": a.ID, "quantity": 5}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	price, qty = cartTotals(w)
	assert.Equal(t, []float64{550, 6}, []float64{price, qty})

	w = s.do(t, http.MethodPatch, "/carts/products", buyer, gin.H{
		"products": []gin.H{{"product_id": a.ID, "quantity": 0}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w)["errors"], "products[0].quantity")

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/carts/products/%d", b.ID), buyer, nil)
	price, qty = cartTotals(w)
	assert.Equal(t, []float64{500, 5}, []float64{price, qty})

	checkout := gin.H{"receiver": "Jane", "phone": "0987654321", "address": "Road 1", "method_payment": "COD"}
	w = s.do(t, http.MethodPost, "/users/orders", buyer, checkout)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(500), order["total_money"])
	assert.Equal(t, float64(5), order["total_quantity"])
	assert.Equal(t, float64(models.OrderStatusPending), order["order_status"])
	orderID := int64(order["id"].(float64))

	w = s.do(t, http.MethodGet, "/carts", buyer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/users/orders/%d", orderID), buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["data"].(map[string]interface{})["products"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, map[string]interface{}{
		"product_id": float64(a.ID), "product_name": "A", "product_price": float64(100), "quantity": float64(5),
	}, items[0])

	orderPath := fmt.Sprintf("/orders/%d", orderID)
	w = s.do(t, http.MethodPatch, orderPath, admin, gin.H{"order_status": int(models.OrderStatusProcessing)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodPatch, orderPath, admin, gin.H{"order_status": int(models.OrderStatusCompleted)})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPatch, orderPath, admin, gin.H{"order_status": int(models.OrderStatusPending)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", decode(t, w)["error"])
	assert.Equal(t, "cannot update a completed order", decode(t, w)["message"])

	w = s.do(t, http.MethodPatch, orderPath, admin, gin.H{"order_status": 9})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodGet, "/orders", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)
}

func TestAdminUserRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.createUser(t, "admin@example.com", models.RoleAdmin)

	w := s.do(t, http.MethodPost, "/users", admin, gin.H{
		"name": "Staff", "email": "staff@example.com", "phone": "0123456789", "address": "HQ",
		"gender": true, "password": "secret123", "password_confirmation": "secret123", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "admin", created["role"])
	id := int64(created["id"].(float64))

	w = s.do(t, http.MethodPost, "/users", admin, gin.H{
		"name": "Staff", "email": "staff@example.com", "phone": "0123456789", "address": "HQ",
		"gender": true, "password": "secret123", "password_confirmation": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/users?limit=500", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(10), decode(t, w)["pagination"].(map[string]interface{})["per_page"])

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", id), admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/users/%d", id), admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	s := newTestServer(t, nil)
	buyer := s.createUser(t, "buyer@example.com", models.RoleUser)
	s.db.FailOn("GetCartByUserID", errors.New("pq: relation \"carts\" does not exist"))

	w := s.do(t, http.MethodGet, "/carts", buyer, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "internal_error", body["error"])
	assert.NotEmpty(t, body["reference"])
	assert.NotContains(t, w.Body.String(), "relation")
}
