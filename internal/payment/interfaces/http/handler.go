// Package http 提供支付台账的 REST 接口。
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	cartdomain "github.com/shoplite/shoplite/internal/cart/domain"
	"github.com/shoplite/shoplite/internal/payment/application"
	"github.com/shoplite/shoplite/internal/payment/domain"
	"github.com/shoplite/shoplite/pkg/logger"
	"github.com/shopspring/decimal"
)

// PaymentHandler 支付 HTTP 处理器
type PaymentHandler struct {
	svc *application.PaymentService
}

// NewPaymentHandler 创建支付 HTTP 处理器
func NewPaymentHandler(svc *application.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// RegisterRoutes 注册路由。台账仅追加：不暴露更新与删除端点
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/payments")
	g.GET("/", h.List)
	g.GET("/:id/", h.Get)
	g.POST("/process/", h.Process)
}

// ProcessRequest 结算请求
type ProcessRequest struct {
	Name          string           `json:"name"`
	Email         string           `json:"email" binding:"required"`
	Address       string           `json:"address" binding:"required"`
	PaymentMethod string           `json:"payment_method" binding:"required"`
	TotalAmount   *decimal.Decimal `json:"total_amount" binding:"required"`
	Products      []map[string]any `json:"products"`
	CartItems     []uint           `json:"cart_items"`
}

// List 列出全部支付记录
func (h *PaymentHandler) List(c *gin.Context) {
	dtos, err := h.svc.ListPayments(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list payments", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dtos)
}

// Get 获取单条支付记录
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Payment not found"})
		return
	}
	dto, err := h.svc.GetPayment(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Payment not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto)
}

// Process 结算选中的购物车行项
func (h *PaymentHandler) Process(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	dto, err := h.svc.Checkout(c.Request.Context(), application.CheckoutCommand{
		Name:          req.Name,
		Email:         req.Email,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   *req.TotalAmount,
		Products:      req.Products,
		CartItemIDs:   req.CartItems,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoProducts):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "No products selected for payment"})
		case errors.Is(err, cartdomain.ErrInsufficientStock):
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		default:
			logger.Error(c.Request.Context(), "Failed to process payment", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id": dto.ID,
		"status":   "success",
		"message":  "Payment processed successfully",
		"products": dto.Products,
	})
}
