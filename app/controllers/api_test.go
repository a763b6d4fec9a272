package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gmcandra/mebelshop/app/controllers"
	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/app/repositories"
	"github.com/gmcandra/mebelshop/app/routes"
	"github.com/gmcandra/mebelshop/app/services"
	"github.com/gmcandra/mebelshop/pkg/httpcache"
	"github.com/gmcandra/mebelshop/pkg/kv"
	"github.com/gmcandra/mebelshop/pkg/payment"
	"github.com/gmcandra/mebelshop/pkg/router"
	"github.com/gmcandra/mebelshop/pkg/search"
)

// newAPI wires the whole HTTP surface onto an in-memory database, the
// same way the server boots it minus the listeners.
func newAPI(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Category{}, &models.Product{},
		&models.Order{}, &models.OrderItem{},
	))

	category := models.Category{Name: "Kursi", Slug: "kursi"}
	require.NoError(t, db.Create(&category).Error)
	require.NoError(t, db.Create(&models.Product{
		Name: "Kursi Jati Minimalis", Price: 450000, Stock: 5, CategoryID: category.ID,
	}).Error)

	store := kv.NewMemory()
	users := repositories.NewUserRepository(db)
	products := repositories.NewProductRepository(db)
	categories := repositories.NewCategoryRepository(db)
	orders := repositories.NewOrderRepository(db)

	webCache := httpcache.New(store)
	authService := services.NewAuthService(users, store)
	catalogService := services.NewCatalogService(products, categories, search.NewIndex(), webCache)
	checkoutService := services.NewCheckoutService(orders, products, store,
		payment.NewClientWith("SB-test-server-key", "https://app.sandbox.midtrans.com"), nil)

	r := router.New()
	routes.RegisterAPI(r, routes.Deps{
		Auth:       controllers.NewAuthController(authService),
		Products:   controllers.NewProductController(catalogService),
		Categories: controllers.NewCategoryController(catalogService),
		Cart:       controllers.NewCartController(checkoutService),
		Orders:     controllers.NewOrderController(checkoutService, authService),
		Cache:      webCache,
	})

	srv := httptest.NewServer(r.Handler())
	t.Cleanup(srv.Close)
	return srv
}

type apiResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func call(t *testing.T, method, url, token string, body interface{}) (int, apiResponse) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func registerAndLogin(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	status, _ := call(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"name":     "Budi Santoso",
		"email":    "budi@example.com",
		"password": "rahasia-123",
	})
	require.Equal(t, http.StatusCreated, status)

	status, resp := call(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "budi@example.com",
		"password": "rahasia-123",
	})
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestHealthz(t *testing.T) {
	srv := newAPI(t)

	status, resp := call(t, http.MethodGet, srv.URL+"/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), "ok")
}

func TestRegisterValidation(t *testing.T) {
	srv := newAPI(t)

	status, resp := call(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"name":     "B",
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.NotEmpty(t, resp.Errors["email"])
	assert.NotEmpty(t, resp.Errors["password"])
}

func TestCartRequiresAuth(t *testing.T) {
	srv := newAPI(t)

	status, _ := call(t, http.MethodGet, srv.URL+"/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCartFlow(t *testing.T) {
	srv := newAPI(t)
	token := registerAndLogin(t, srv)

	status, resp := call(t, http.MethodPost, srv.URL+"/api/cart/items", token, map[string]interface{}{
		"product_id": 1,
		"quantity":   3,
	})
	require.Equal(t, http.StatusOK, status)

	var cart struct {
		Lines []struct {
			ProductID uint `json:"product_id"`
			Quantity  int  `json:"quantity"`
		} `json:"lines"`
		TotalItems int     `json:"total_items"`
		TotalPrice float64 `json:"total_price"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &cart))
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.TotalItems)
	assert.Equal(t, 3*450000.0, cart.TotalPrice)

	// Over-ask clamps to the stock ceiling of 5.
	status, resp = call(t, http.MethodPatch, srv.URL+"/api/cart/items/1", token, map[string]int{
		"quantity": 99,
	})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &cart))
	assert.Equal(t, 5, cart.Lines[0].Quantity)

	status, resp = call(t, http.MethodDelete, srv.URL+"/api/cart/items/1", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &cart))
	assert.Empty(t, cart.Lines)
}

func TestGuestOnlyLoginForAuthenticated(t *testing.T) {
	srv := newAPI(t)
	token := registerAndLogin(t, srv)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/auth/login",
		bytes.NewReader([]byte(`{"email":"budi@example.com","password":"rahasia-123"}`)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAdminRoutesForbiddenForUsers(t *testing.T) {
	srv := newAPI(t)
	token := registerAndLogin(t, srv)

	status, _ := call(t, http.MethodGet, srv.URL+"/api/admin/orders", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestProductListServedFromCache(t *testing.T) {
	srv := newAPI(t)

	status, first := call(t, http.MethodGet, srv.URL+"/api/products", "", nil)
	require.Equal(t, http.StatusOK, status)

	status, second := call(t, http.MethodGet, srv.URL+"/api/products", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(first.Data), string(second.Data))
}
