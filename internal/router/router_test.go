package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-pos-inventory/internal/config"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/router"
	"go-pos-inventory/internal/testutil"
	"go-pos-inventory/internal/ws"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type server struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
}

func newServer(t *testing.T, mutate ...func(*config.Config)) *server {
	t.Helper()
	cfg := config.Default()
	cfg.RequestLog = false
	cfg.JWTSecret = "router-test-secret"
	for _, m := range mutate {
		m(cfg)
	}
	db := testutil.NewDB(t)
	return &server{t: t, app: router.New(cfg, db, nil, ws.NewHub()), db: db}
}

func (s *server) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	s.t.Helper()
	status, raw := s.raw(method, path, token, body)
	var out map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(s.t, json.Unmarshal(raw, &out), string(raw))
	}
	return status, out
}

func (s *server) list(path, token string) (int, []map[string]interface{}) {
	s.t.Helper()
	status, raw := s.raw(http.MethodGet, path, token, nil)
	var out []map[string]interface{}
	if status == fiber.StatusOK {
		require.NoError(s.t, json.Unmarshal(raw, &out), string(raw))
	}
	return status, out
}

func (s *server) raw(method, path, token string, body interface{}) (int, []byte) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		if str, ok := body.(string); ok {
			reader = bytes.NewBufferString(str)
		} else {
			b, err := json.Marshal(body)
			require.NoError(s.t, err)
			reader = bytes.NewReader(b)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, raw
}

func (s *server) login(username, password string) string {
	s.t.Helper()
	status, body := s.do(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"username": username, "password": password})
	require.Equal(s.t, fiber.StatusOK, status, body)
	return body["token"].(string)
}

func (s *server) seedStaff() (admin, cashier string) {
	s.t.Helper()
	testutil.SeedUser(s.t, s.db, "admin", "admin123", model.RoleAdmin, model.StatusApproved)
	testutil.SeedUser(s.t, s.db, "cashier1", "secret1", model.RoleCashier, model.StatusApproved)
	return s.login("admin", "admin123"), s.login("cashier1", "secret1")
}

func TestLogin(t *testing.T) {
	s := newServer(t)
	testutil.SeedUser(t, s.db, "pending", "secret1", model.RoleCashier, model.StatusPending)
	testutil.SeedUser(t, s.db, "cashier1", "secret1", model.RoleCashier, model.StatusApproved)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"bad json", "{", fiber.StatusBadRequest},
		{"missing fields", fiber.Map{"username": "cashier1"}, fiber.StatusBadRequest},
		{"unknown user", fiber.Map{"username": "ghost", "password": "secret1"}, fiber.StatusUnauthorized},
		{"wrong password", fiber.Map{"username": "cashier1", "password": "nope"}, fiber.StatusUnauthorized},
		{"pending account", fiber.Map{"username": "pending", "password": "secret1"}, fiber.StatusForbidden},
		{"ok", fiber.Map{"username": "cashier1", "password": "secret1"}, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(http.MethodPost, "/api/v1/auth/login", "", tt.body)
			assert.Equal(t, tt.status, status, body)
		})
	}

	_, body := s.do(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"username": "pending", "password": "secret1"})
	assert.Contains(t, body["error"], "pending")
}

func TestRegister(t *testing.T) {
	closed := newServer(t)
	status, body := closed.do(http.MethodPost, "/api/v1/auth/register", "", fiber.Map{"username": "newbie", "password": "secret1"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Contains(t, body["error"], "registration is disabled")

	open := newServer(t, func(c *config.Config) { c.AllowRegistration = true })
	status, body = open.do(http.MethodPost, "/api/v1/auth/register", "", fiber.Map{"username": "newbie", "password": "secret1"})
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "Pending", body["data"].(map[string]interface{})["status"])

	status, _ = open.do(http.MethodPost, "/api/v1/auth/register", "", fiber.Map{"username": "newbie", "password": "secret1"})
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newServer(t)
	_, cashier := s.seedStaff()

	status, body := s.do(http.MethodGet, "/api/v1/auth/me", cashier, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "cashier1", body["username"])

	status, _ = s.do(http.MethodPost, "/api/v1/auth/logout", cashier, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = s.do(http.MethodGet, "/api/v1/dashboard", cashier, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRoleGuards(t *testing.T) {
	s := newServer(t)
	admin, cashier := s.seedStaff()

	tests := []struct {
		method, path, token string
		status              int
	}{
		{http.MethodGet, "/api/v1/users", "", fiber.StatusUnauthorized},
		{http.MethodGet, "/api/v1/users", cashier, fiber.StatusForbidden},
		{http.MethodGet, "/api/v1/users", admin, fiber.StatusOK},
		{http.MethodGet, "/api/v1/inventory", cashier, fiber.StatusForbidden},
		{http.MethodGet, "/api/v1/reports", cashier, fiber.StatusForbidden},
		{http.MethodGet, "/api/v1/sales/history", cashier, fiber.StatusForbidden},
		{http.MethodGet, "/api/v1/sales/products", admin, fiber.StatusForbidden},
		{http.MethodGet, "/api/v1/sales/products", cashier, fiber.StatusOK},
		{http.MethodGet, "/api/v1/dashboard", cashier, fiber.StatusOK},
		{http.MethodGet, "/api/v1/dashboard", admin, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			status, _ := s.raw(tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestUserManagement(t *testing.T) {
	s := newServer(t)
	admin, _ := s.seedStaff()

	status, body := s.do(http.MethodPost, "/api/v1/users", admin, fiber.Map{"username": "cashier2", "password": "secret2", "role": "Cashier", "status": "Pending"})
	require.Equal(t, fiber.StatusCreated, status, body)
	id := body["data"].(map[string]interface{})["id"].(string)

	status, _ = s.do(http.MethodPost, "/api/v1/users", admin, fiber.Map{"username": "cashier2", "password": "secret2", "role": "Cashier"})
	assert.Equal(t, fiber.StatusConflict, status)

	status, body = s.do(http.MethodPost, "/api/v1/users", admin, fiber.Map{"username": "x", "password": "secret2", "role": "Cashier"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["error"], "username")

	status, body = s.do(http.MethodPut, "/api/v1/users/"+id+"/approve", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Approved", body["data"].(map[string]interface{})["status"])
	s.login("cashier2", "secret2")

	status, _ = s.do(http.MethodPut, "/api/v1/users/"+id+"/reject", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"username": "cashier2", "password": "secret2"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = s.do(http.MethodPut, "/api/v1/users/not-a-uuid/approve", admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do(http.MethodDelete, "/api/v1/users/"+id, admin, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(http.MethodDelete, "/api/v1/users/"+id, admin, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	_, me := s.do(http.MethodGet, "/api/v1/auth/me", admin, nil)
	status, body = s.do(http.MethodDelete, "/api/v1/users/"+me["user_id"].(string), admin, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Contains(t, body["error"], "own account")

	_, users := s.list("/api/v1/users", admin)
	assert.Len(t, users, 2)
}

func TestInventoryAndSalesFlow(t *testing.T) {
	s := newServer(t)
	admin, cashier := s.seedStaff()

	status, body := s.do(http.MethodPost, "/api/v1/products", admin, fiber.Map{
		"name": "Soap Bar", "price": "25.00", "cost": "10.00", "quantity": 100, "category": "Toiletries",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	productID := body["data"].(map[string]interface{})["id"].(string)

	status, _ = s.do(http.MethodPost, "/api/v1/products", admin, fiber.Map{"name": "Broken", "price": "abc", "quantity": 1})
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = s.do(http.MethodPost, "/api/v1/products", admin, fiber.Map{"name": "Broken", "price": 1, "quantity": -1})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do(http.MethodPost, "/api/v1/sales", cashier, fiber.Map{"product_id": productID, "quantity": 3})
	require.Equal(t, fiber.StatusCreated, status, body)
	sale := body["data"].(map[string]interface{})
	assert.Equal(t, "75", sale["total_amount"])
	assert.Equal(t, "30", sale["total_cost"])
	assert.Equal(t, "cashier1", sale["sold_by"])

	status, body = s.do(http.MethodPost, "/api/v1/sales", cashier, fiber.Map{"product_id": productID, "quantity": 98})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Contains(t, body["error"], "only 97 available")

	status, _ = s.do(http.MethodPost, "/api/v1/sales", cashier, fiber.Map{"product_id": productID, "quantity": 0})
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = s.do(http.MethodPost, "/api/v1/sales", cashier, fiber.Map{"product_id": "8d3e7c1a-0000-4000-8000-000000000000", "quantity": 1})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = s.do(http.MethodGet, "/api/v1/products/"+productID, admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 97, body["quantity"])

	status, body = s.do(http.MethodGet, "/api/v1/reports", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	rows := body["product_sales"].([]interface{})
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.EqualValues(t, 3, row["total_sold"])
	assert.Equal(t, "75", row["revenue"])
	assert.Equal(t, "45", row["profit"])
	assert.Equal(t, "60", row["margin"])
	assert.Equal(t, "45", body["overall_profit"])

	status, body = s.do(http.MethodPut, "/api/v1/products/"+productID, admin, fiber.Map{"quantity": 10})
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 10, body["data"].(map[string]interface{})["quantity"])

	status, _ = s.do(http.MethodDelete, "/api/v1/products/"+productID, admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(http.MethodPut, "/api/v1/products/"+productID, admin, fiber.Map{"quantity": 1})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = s.do(http.MethodGet, "/api/v1/sales/history", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, "75", body["total_revenue"])

	status, body = s.do(http.MethodGet, "/api/v1/dashboard", cashier, nil)
	require.Equal(t, fiber.StatusOK, status)
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, "75", stats["my_total"])
}

func TestStockValuationEndpoints(t *testing.T) {
	s := newServer(t)
	admin, _ := s.seedStaff()
	testutil.SeedProduct(t, s.db, "Soap Bar", "25.00", "10.00", 100, "Toiletries")

	status, body := s.do(http.MethodGet, "/api/v1/reports/valuation", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "1000", body["cost_value"])

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/valuation.pdf", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	pdf, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	status, body = s.do(http.MethodGet, "/api/v1/reports/trend?days=abc", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 7, body["period"])
}

func TestFallbacks(t *testing.T) {
	s := newServer(t)

	status, body := s.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Page not found", body["error"])

	status, body = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["cache"])

	status, _ = s.raw(http.MethodGet, "/ws", "", nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, status)
}
