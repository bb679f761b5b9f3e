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
	"github.com/shoplite/shoplite/internal/catalog/application"
	"github.com/shoplite/shoplite/internal/catalog/domain"
	catalogmysql "github.com/shoplite/shoplite/internal/catalog/infrastructure/persistence/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) (*gin.Engine, *application.CatalogService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.Product{}))

	svc := application.NewCatalogService(catalogmysql.NewProductRepository(gdb, nil, 0), nil)
	router := gin.New()
	NewProductHandler(svc).RegisterRoutes(router.Group("/"))
	return router, svc
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestProductCreateEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/products/", gin.H{
		"name":  "Keyboard",
		"price": "49.90",
		"stock": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Keyboard", body["name"])
	assert.Equal(t, "49.90", body["price"])
	assert.Equal(t, float64(10), body["stock"])
}

func TestProductCreateEndpoint_MissingPrice(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/products/", gin.H{"name": "Keyboard", "stock": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductGetEndpoint_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/products/9999/", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "product not found", decodeBody(t, w)["error"])

	// 非数字 ID 同样按 404 处理
	w = doJSON(t, router, http.MethodGet, "/products/abc/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateStockEndpoint(t *testing.T) {
	router, svc := newTestRouter(t)
	created, err := svc.CreateProduct(context.Background(), application.CreateProductCommand{
		Name:  "Monitor",
		Price: decimal.NewFromInt(150),
		Stock: 4,
	})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPost, "/products/1/update_stock/", gin.H{"stock": 7})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "stock updated", body["status"])
	assert.Equal(t, float64(7), body["new_stock"])

	got, err := svc.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)
}

func TestUpdateStockEndpoint_Invalid(t *testing.T) {
	router, svc := newTestRouter(t)
	_, err := svc.CreateProduct(context.Background(), application.CreateProductCommand{
		Name:  "Mouse",
		Price: decimal.NewFromInt(20),
		Stock: 5,
	})
	require.NoError(t, err)

	// 缺少 stock 字段
	w := doJSON(t, router, http.MethodPost, "/products/1/update_stock/", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "stock value required", decodeBody(t, w)["error"])

	// 类型错误
	w = doJSON(t, router, http.MethodPost, "/products/1/update_stock/", gin.H{"stock": "many"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid stock value", decodeBody(t, w)["error"])

	// 负库存
	w = doJSON(t, router, http.MethodPost, "/products/1/update_stock/", gin.H{"stock": -2})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid stock value", decodeBody(t, w)["error"])

	// 商品不存在
	w = doJSON(t, router, http.MethodPost, "/products/9999/update_stock/", gin.H{"stock": 3})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "product not found", decodeBody(t, w)["error"])
}

func TestProductDeleteEndpoint(t *testing.T) {
	router, svc := newTestRouter(t)
	created, err := svc.CreateProduct(context.Background(), application.CreateProductCommand{
		Name:  "Cable",
		Price: decimal.NewFromInt(3),
		Stock: 9,
	})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodDelete, "/products/1/", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, err = svc.GetProduct(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
