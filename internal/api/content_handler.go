package api

import (
	"errors"
	"net/http"
	"strconv"

	"PodSync/internal/repository"
	"PodSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ContentHandler 数字标牌内容管理接口
type ContentHandler struct {
	contentService *service.ContentService
	logger         *logrus.Logger
}

// NewContentHandler 创建 ContentHandler
func NewContentHandler(contentService *service.ContentService, logger *logrus.Logger) *ContentHandler {
	return &ContentHandler{contentService: contentService, logger: logger}
}

type reorderRequest struct {
	Items []repository.ContentOrderItem `json:"items" binding:"required,min=1,dive"`
}

// ListActive 当前可展示内容（标牌轮播）
// GET /api/content/active
func (h *ContentHandler) ListActive(c *gin.Context) {
	contents, err := h.contentService.ListActive(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ListActive failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contents": contents, "count": len(contents)})
}

// ListContents 全部内容（管理后台）
// GET /api/content
func (h *ContentHandler) ListContents(c *gin.Context) {
	contents, err := h.contentService.ListAll(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ListContents failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contents": contents, "count": len(contents)})
}

// GetContent 内容详情
// GET /api/content/:id
func (h *ContentHandler) GetContent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content id"})
		return
	}

	content, err := h.contentService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
			return
		}
		h.logger.WithError(err).Error("GetContent failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, content)
}

// CreateContent 创建内容
// POST /api/content
func (h *ContentHandler) CreateContent(c *gin.Context) {
	var in service.ContentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := h.contentService.Create(c.Request.Context(), in)
	if err != nil {
		h.logger.WithError(err).Error("CreateContent failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, content)
}

// UpdateContent 更新内容
// PUT /api/content/:id
func (h *ContentHandler) UpdateContent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content id"})
		return
	}

	var in service.ContentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := h.contentService.Update(c.Request.Context(), id, in)
	if err != nil {
		h.logger.WithError(err).Error("UpdateContent failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, content)
}

// DeleteContent 删除内容
// DELETE /api/content/:id
func (h *ContentHandler) DeleteContent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content id"})
		return
	}

	if err := h.contentService.Delete(c.Request.Context(), id); err != nil {
		h.logger.WithError(err).Error("DeleteContent failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// Reorder 批量调整展示顺序
// PATCH /api/content/display-order
func (h *ContentHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.contentService.Reorder(c.Request.Context(), req.Items); err != nil {
		h.logger.WithError(err).Error("Reorder failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": len(req.Items)})
}

// Stats 内容统计
// GET /api/content/stats
func (h *ContentHandler) Stats(c *gin.Context) {
	stats, err := h.contentService.Stats(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Stats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RegenerateQRCode 重新生成二维码地址
// POST /api/content/:id/regenerate-qr
func (h *ContentHandler) RegenerateQRCode(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content id"})
		return
	}

	content, err := h.contentService.RegenerateQRCode(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("RegenerateQRCode failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, content)
}
