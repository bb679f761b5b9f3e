// Package http 提供商品目录的 REST 接口。
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shoplite/shoplite/internal/catalog/application"
	"github.com/shoplite/shoplite/internal/catalog/domain"
	"github.com/shoplite/shoplite/pkg/logger"
	"github.com/shopspring/decimal"
)

// ProductHandler 商品 HTTP 处理器
type ProductHandler struct {
	svc *application.CatalogService
}

// NewProductHandler 创建商品 HTTP 处理器
func NewProductHandler(svc *application.CatalogService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *ProductHandler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/products")
	g.GET("/", h.List)
	g.POST("/", h.Create)
	g.GET("/:id/", h.Get)
	g.PUT("/:id/", h.Update)
	g.DELETE("/:id/", h.Delete)
	g.POST("/:id/update_stock/", h.UpdateStock)
}

// CreateProductRequest 创建/更新商品请求
type CreateProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Stock       *int             `json:"stock" binding:"required"`
	Image       string           `json:"image"`
}

// List 列出全部商品
func (h *ProductHandler) List(c *gin.Context) {
	dtos, err := h.svc.ListProducts(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list products", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dtos)
}

// Get 获取单个商品
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	dto, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto)
}

// Create 创建商品
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dto, err := h.svc.CreateProduct(c.Request.Context(), application.CreateProductCommand{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       *req.Stock,
		Image:       req.Image,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, dto)
}

// Update 全量更新商品
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dto, err := h.svc.UpdateProduct(c.Request.Context(), id, application.UpdateProductCommand{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       *req.Stock,
		Image:       req.Image,
	})
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto)
}

// Delete 删除商品
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateStockRequest 管理端库存覆写请求
type UpdateStockRequest struct {
	Stock *int `json:"stock"`
}

// UpdateStock 管理端库存覆写
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stock value"})
		return
	}
	if req.Stock == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock value required"})
		return
	}

	dto, err := h.svc.UpdateStock(c.Request.Context(), id, *req.Stock)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		case errors.Is(err, domain.ErrInvalidStock):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stock value"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stock updated", "new_stock": dto.Stock})
}

// parseID 解析路径中的商品 ID，非法时直接写 404
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return 0, false
	}
	return uint(id), true
}
