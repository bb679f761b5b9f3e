package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shoplite/shoplite/internal/contact/application"
	"github.com/shoplite/shoplite/internal/contact/domain"
	contactmysql "github.com/shoplite/shoplite/internal/contact/infrastructure/persistence/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newContactRouter(t *testing.T) (*gin.Engine, domain.ContactRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "contact.db")
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.Contact{}))

	repo := contactmysql.NewContactRepository(gdb)
	svc := application.NewContactService(repo, nil)
	router := gin.New()
	NewContactHandler(svc).RegisterRoutes(router.Group("/"))
	return router, repo
}

func postRaw(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/infocontact/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestContactEndpoint_SingleObject(t *testing.T) {
	router, repo := newContactRouter(t)

	w := postRaw(t, router, `{"first_name":"Maria","last_name":"Santos","email":"maria@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Contact added successfully!")
	assert.Contains(t, w.Body.String(), `"id"`)

	contacts, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, contacts, 1)
}

func TestContactEndpoint_Array(t *testing.T) {
	router, repo := newContactRouter(t)

	w := postRaw(t, router, `[
		{"first_name":"Maria","last_name":"Santos","email":"maria@example.com"},
		{"first_name":"Jose","last_name":"Rizal","email":"jose@example.com"}
	]`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "2 contacts added successfully!")

	contacts, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}

func TestContactEndpoint_InvalidShape(t *testing.T) {
	router, _ := newContactRouter(t)

	for _, body := range []string{`"just a string"`, `42`, ``, `not json at all`} {
		w := postRaw(t, router, body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid data format")
	}
}

func TestContactEndpoint_ValidationError(t *testing.T) {
	router, repo := newContactRouter(t)

	w := postRaw(t, router, `{"first_name":"Maria","last_name":"Santos","email":"broken"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid email address")

	// 数组中任一条非法则整批拒绝
	w = postRaw(t, router, `[
		{"first_name":"Maria","last_name":"Santos","email":"maria@example.com"},
		{"first_name":"","last_name":"Rizal","email":"jose@example.com"}
	]`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	contacts, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, contacts)
}
