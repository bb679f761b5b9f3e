package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/shoplite/shoplite/internal/catalog/domain"
	catalogmysql "github.com/shoplite/shoplite/internal/catalog/infrastructure/persistence/mysql"
	cartdomain "github.com/shoplite/shoplite/internal/cart/domain"
	cartmysql "github.com/shoplite/shoplite/internal/cart/infrastructure/persistence/mysql"
	"github.com/shoplite/shoplite/internal/payment/application"
	"github.com/shoplite/shoplite/internal/payment/domain"
	paymentmysql "github.com/shoplite/shoplite/internal/payment/infrastructure/persistence/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type paymentRouterFixture struct {
	router   *gin.Engine
	products catalogdomain.ProductRepository
	items    cartdomain.CartItemRepository
}

func newPaymentRouter(t *testing.T) *paymentRouterFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "payment.db")
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&catalogdomain.Product{}, &cartdomain.CartItem{}, &domain.Payment{}))

	products := catalogmysql.NewProductRepository(gdb, nil, 0)
	items := cartmysql.NewCartItemRepository(gdb)
	payments := paymentmysql.NewPaymentRepository(gdb)
	svc := application.NewPaymentService(gdb, payments, items, products, nil, nil)

	router := gin.New()
	NewPaymentHandler(svc).RegisterRoutes(router.Group("/"))
	return &paymentRouterFixture{router: router, products: products, items: items}
}

// seedReserved 造出已加购的状态：商品库存 stock，购物车行项占用 quantity
func (f *paymentRouterFixture) seedReserved(t *testing.T, stock, quantity int) (*catalogdomain.Product, *cartdomain.CartItem) {
	t.Helper()
	ctx := context.Background()
	p := &catalogdomain.Product{
		Name:  "Keyboard",
		Price: decimal.RequireFromString("49.90"),
		Stock: stock,
	}
	require.NoError(t, f.products.Save(ctx, p))
	item := &cartdomain.CartItem{ProductID: p.ID, Quantity: quantity}
	require.NoError(t, f.items.Save(ctx, item))
	return p, item
}

func (f *paymentRouterFixture) doJSON(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func processPayload(p *catalogdomain.Product, item *cartdomain.CartItem, total string) gin.H {
	return gin.H{
		"name":           "Juan dela Cruz",
		"email":          "juan@example.com",
		"address":        "123 Rizal St",
		"payment_method": "gcash",
		"total_amount":   total,
		"products":       []gin.H{{"id": p.ID, "quantity": item.Quantity}},
		"cart_items":     []uint{item.ID},
	}
}

func TestProcessEndpoint(t *testing.T) {
	f := newPaymentRouter(t)
	p, item := f.seedReserved(t, 5, 2)

	w := f.doJSON(t, http.MethodPost, "/payments/process/", processPayload(p, item, "99.80"))
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "Payment processed successfully", body["message"])
	assert.NotZero(t, body["order_id"])
	assert.NotNil(t, body["products"])

	got, err := f.products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
}

func TestProcessEndpoint_NoProducts(t *testing.T) {
	f := newPaymentRouter(t)

	w := f.doJSON(t, http.MethodPost, "/payments/process/", gin.H{
		"email":          "juan@example.com",
		"address":        "123 Rizal St",
		"payment_method": "gcash",
		"total_amount":   "10.00",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No products selected for payment", decodeBody(t, w)["detail"])
}

func TestProcessEndpoint_InsufficientStock(t *testing.T) {
	f := newPaymentRouter(t)
	p, item := f.seedReserved(t, 1, 2)

	w := f.doJSON(t, http.MethodPost, "/payments/process/", processPayload(p, item, "99.80"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["detail"], "not enough stock")
}

func TestProcessEndpoint_MissingFields(t *testing.T) {
	f := newPaymentRouter(t)

	w := f.doJSON(t, http.MethodPost, "/payments/process/", gin.H{"email": "juan@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentListAndGetEndpoints(t *testing.T) {
	f := newPaymentRouter(t)
	p, item := f.seedReserved(t, 5, 1)

	w := f.doJSON(t, http.MethodPost, "/payments/process/", processPayload(p, item, "49.90"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.doJSON(t, http.MethodGet, "/payments/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "49.90", list[0]["total_amount"])

	w = f.doJSON(t, http.MethodGet, "/payments/1/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gcash", decodeBody(t, w)["payment_method"])

	w = f.doJSON(t, http.MethodGet, "/payments/9999/", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Payment not found", decodeBody(t, w)["detail"])
}
