package api

import (
	"net/http"
	"strconv"

	"PodSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StatusHandler 直播状态与自动调度管理接口
type StatusHandler struct {
	statusService *service.StatusService
	reconciler    *service.Reconciler
	logger        *logrus.Logger
}

// NewStatusHandler 创建 StatusHandler
func NewStatusHandler(statusService *service.StatusService, reconciler *service.Reconciler, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		statusService: statusService,
		reconciler:    reconciler,
		logger:        logger,
	}
}

// setStatusRequest 手动设置状态的请求体。isOnAir 必填（用指针区分 false 与缺省）
type setStatusRequest struct {
	IsOnAir       *bool   `json:"isOnAir" binding:"required"`
	StatusMessage string  `json:"statusMessage"`
	UpdatedBy     string  `json:"updatedBy"`
	ScheduleID    *uint64 `json:"scheduleId"`
}

// GetStatus 当前直播状态（含进行中/下一场预约上下文）
// GET /api/status
func (h *StatusHandler) GetStatus(c *gin.Context) {
	view, err := h.statusService.Current(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("GetStatus failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetStatus 手动写入状态事件
// POST /api/status
func (h *StatusHandler) SetStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isOnAir is required"})
		return
	}

	ev, err := h.statusService.Set(c.Request.Context(), service.SetStatusInput{
		IsOnAir:       *req.IsOnAir,
		StatusMessage: req.StatusMessage,
		UpdatedBy:     req.UpdatedBy,
		ScheduleID:    req.ScheduleID,
	})
	if err != nil {
		h.logger.WithError(err).Error("SetStatus failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ev)
}

// GetHistory 状态历史（倒序）
// GET /api/status/history?limit=50
func (h *StatusHandler) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	events, err := h.statusService.History(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("GetHistory failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": events, "count": len(events)})
}

// GetScheduler 自动调度运行状态
// GET /api/status/scheduler
func (h *StatusHandler) GetScheduler(c *gin.Context) {
	c.JSON(http.StatusOK, h.reconciler.Status())
}

// StartScheduler 开启自动调度
// POST /api/status/scheduler/start
func (h *StatusHandler) StartScheduler(c *gin.Context) {
	h.reconciler.Start()
	c.JSON(http.StatusOK, h.reconciler.Status())
}

// StopScheduler 停止自动调度
// POST /api/status/scheduler/stop
func (h *StatusHandler) StopScheduler(c *gin.Context) {
	h.reconciler.Stop()
	c.JSON(http.StatusOK, h.reconciler.Status())
}

// ForceCheck 立即执行一次对账（不影响定时节奏）
// POST /api/status/scheduler/force-check
func (h *StatusHandler) ForceCheck(c *gin.Context) {
	if err := h.reconciler.Tick(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("ForceCheck failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.reconciler.Status())
}
