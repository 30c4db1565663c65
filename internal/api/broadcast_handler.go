package api

import (
	"net/http"
	"time"

	"PodSync/internal/interfaces"
	"PodSync/internal/model"
	"PodSync/internal/repository"
	"PodSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BroadcastHandler Unity 展示端接口（精简返回体，展示端不解析完整事件结构）
type BroadcastHandler struct {
	statusService *service.StatusService
	scheduleRepo  repository.ScheduleRepository
	clock         interfaces.Clock
	loc           *time.Location
	logger        *logrus.Logger
}

// NewBroadcastHandler 创建 BroadcastHandler
func NewBroadcastHandler(
	statusService *service.StatusService,
	scheduleRepo repository.ScheduleRepository,
	clock interfaces.Clock,
	loc *time.Location,
	logger *logrus.Logger,
) *BroadcastHandler {
	return &BroadcastHandler{
		statusService: statusService,
		scheduleRepo:  scheduleRepo,
		clock:         clock,
		loc:           loc,
		logger:        logger,
	}
}

type unitySetStatusRequest struct {
	OnAir   *bool  `json:"onAir" binding:"required"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

// UnityStatus 展示端当前状态
// GET /api/broadcast/unity/status
func (h *BroadcastHandler) UnityStatus(c *gin.Context) {
	view, err := h.statusService.UnityCurrent(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("UnityStatus failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// UnitySetStatus 展示端手动切换状态。source 缺省按 unity-manual 处理（人工档保护）
// POST /api/broadcast/unity/status
func (h *BroadcastHandler) UnitySetStatus(c *gin.Context) {
	var req unitySetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "onAir is required"})
		return
	}
	source := req.Source
	if source == "" {
		source = "unity-manual"
	}

	if _, err := h.statusService.Set(c.Request.Context(), service.SetStatusInput{
		IsOnAir:       *req.OnAir,
		StatusMessage: req.Message,
		UpdatedBy:     source,
	}); err != nil {
		h.logger.WithError(err).Error("UnitySetStatus failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	view, err := h.statusService.UnityCurrent(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("UnitySetStatus read-back failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// TodaySchedule 展示端排期快照：今日列表 + 正在进行/下一场
// GET /api/broadcast/schedule
func (h *BroadcastHandler) TodaySchedule(c *gin.Context) {
	now := h.clock.Now().In(h.loc)
	date := now.Format("2006-01-02")
	clockTime := now.Format("15:04:05")

	schedules, err := h.scheduleRepo.ListByDate(c.Request.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("TodaySchedule failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	active, err := h.scheduleRepo.ListActiveAt(c.Request.Context(), date, clockTime)
	if err != nil {
		h.logger.WithError(err).Warn("查询进行中预约失败")
	}
	var current *model.Schedule
	if len(active) > 0 {
		current = active[0]
	}
	next, err := h.scheduleRepo.FindNextAt(c.Request.Context(), date, clockTime)
	if err != nil {
		h.logger.WithError(err).Warn("查询下一场预约失败")
	}

	c.JSON(http.StatusOK, gin.H{
		"date":            date,
		"wibTime":         now.Format("2006-01-02 15:04:05"),
		"currentSchedule": current,
		"nextSchedule":    next,
		"schedules":       schedules,
		"count":           len(schedules),
	})
}
