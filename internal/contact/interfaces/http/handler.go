// Package http 提供联系人录入的 REST 接口。
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shoplite/shoplite/internal/contact/application"
	"github.com/shoplite/shoplite/internal/contact/domain"
)

// ContactHandler 联系人 HTTP 处理器
type ContactHandler struct {
	svc *application.ContactService
}

// NewContactHandler 创建联系人 HTTP 处理器
func NewContactHandler(svc *application.ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *ContactHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/infocontact/", h.Create)
}

// Create 接收单个对象或对象数组，按负载形状分派
func (h *ContactHandler) Create(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data format"})
		return
	}
	body = bytes.TrimSpace(body)

	switch {
	case len(body) > 0 && body[0] == '{':
		var cmd application.ContactCommand
		if err := json.Unmarshal(body, &cmd); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data format"})
			return
		}
		id, err := h.svc.CreateContact(c.Request.Context(), cmd)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Contact added successfully!", "id": id})

	case len(body) > 0 && body[0] == '[':
		var cmds []application.ContactCommand
		if err := json.Unmarshal(body, &cmds); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data format"})
			return
		}
		count, err := h.svc.CreateContacts(c.Request.Context(), cmds)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": fmt.Sprintf("%d contacts added successfully!", count)})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data format"})
	}
}

// writeError 校验失败与存储失败都按 400 返回，不泄露内部细节
func (h *ContactHandler) writeError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrInvalidContact) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "failed to save contact"})
}
