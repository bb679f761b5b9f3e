// Package http 提供购物车的 REST 接口。
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/shoplite/shoplite/internal/catalog/domain"
	"github.com/shoplite/shoplite/internal/cart/application"
	"github.com/shoplite/shoplite/internal/cart/domain"
	"github.com/shoplite/shoplite/pkg/logger"
)

// CartHandler 购物车 HTTP 处理器
type CartHandler struct {
	svc *application.CartService
}

// NewCartHandler 创建购物车 HTTP 处理器
func NewCartHandler(svc *application.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *CartHandler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/cart-items")
	g.GET("/", h.List)
	g.POST("/", h.Add)
	g.GET("/:id/", h.Get)
	g.PUT("/:id/", h.Update)
	g.DELETE("/:id/", h.Remove)
}

// AddItemRequest 加入购物车请求，quantity 省略时为 1
type AddItemRequest struct {
	ProductID *uint `json:"product_id" binding:"required"`
	Quantity  *int  `json:"quantity"`
}

// UpdateItemRequest 修改数量请求
type UpdateItemRequest struct {
	Quantity *int `json:"quantity"`
}

// List 列出全部行项
func (h *CartHandler) List(c *gin.Context) {
	dtos, err := h.svc.ListItems(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list cart items", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dtos)
}

// Get 获取单个行项
func (h *CartHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	dto, err := h.svc.GetItem(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// Add 加入购物车（见 AddItem 的对账语义）
func (h *CartHandler) Add(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	dto, err := h.svc.AddItem(c.Request.Context(), *req.ProductID, quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto)
}

// Update 修改行项数量
func (h *CartHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Quantity is required"})
		return
	}

	dto, err := h.svc.UpdateQuantity(c.Request.Context(), id, *req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// Remove 移除行项并归还库存
func (h *CartHandler) Remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveItem(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError 将领域错误映射为 HTTP 响应
func (h *CartHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalogdomain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Product not found"})
	case errors.Is(err, domain.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Cart item not found"})
	case errors.Is(err, domain.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Not enough stock available"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Cart item not found"})
		return 0, false
	}
	return uint(id), true
}
