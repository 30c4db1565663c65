package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"PodSync/internal/interfaces"
	"PodSync/internal/model"
	"PodSync/internal/repository"
	"PodSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ScheduleHandler 预约查询与管理接口，含表格导入的触发与状态查询
type ScheduleHandler struct {
	scheduleRepo repository.ScheduleRepository
	entryRepo    repository.SheetEntryRepository
	importer     *service.Importer
	clock        interfaces.Clock
	loc          *time.Location
	logger       *logrus.Logger
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(
	scheduleRepo repository.ScheduleRepository,
	entryRepo repository.SheetEntryRepository,
	importer *service.Importer,
	clock interfaces.Clock,
	loc *time.Location,
	logger *logrus.Logger,
) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleRepo: scheduleRepo,
		entryRepo:    entryRepo,
		importer:     importer,
		clock:        clock,
		loc:          loc,
		logger:       logger,
	}
}

// createScheduleRequest 手动创建预约的请求体
type createScheduleRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required"`
	StartTime   string `json:"startTime" binding:"required"`
	EndTime     string `json:"endTime" binding:"required"`
	Location    string `json:"location"`
	Organizer   string `json:"organizer"`
	Unit        string `json:"unit"`
}

type updateScheduleStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListSchedules 预约列表
// GET /api/schedule?status=pending&start_date=2025-01-01&end_date=2025-01-31&unit=FIK&search=podcast&page=1&page_size=20
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := repository.ScheduleFilter{
		Status:    c.Query("status"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Unit:      c.Query("unit"),
		Search:    c.Query("search"),
	}

	schedules, total, err := h.scheduleRepo.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListSchedules failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"schedules": schedules,
		"total":     total,
		"page":      page,
		"pageSize":  pageSize,
	})
}

// TodaySchedules 今日预约（固定时区意义下的"今天"）
// GET /api/schedule/today
func (h *ScheduleHandler) TodaySchedules(c *gin.Context) {
	date := h.clock.Now().In(h.loc).Format("2006-01-02")
	schedules, err := h.scheduleRepo.ListByDate(c.Request.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("TodaySchedules failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "schedules": schedules, "count": len(schedules)})
}

// ActiveSchedules 当前时刻命中的预约
// GET /api/schedule/active
func (h *ScheduleHandler) ActiveSchedules(c *gin.Context) {
	now := h.clock.Now().In(h.loc)
	schedules, err := h.scheduleRepo.ListActiveAt(c.Request.Context(), now.Format("2006-01-02"), now.Format("15:04:05"))
	if err != nil {
		h.logger.WithError(err).Error("ActiveSchedules failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": schedules, "count": len(schedules)})
}

// ListUnits 已出现过的单位/院系（筛选下拉用）
// GET /api/schedule/units
func (h *ScheduleHandler) ListUnits(c *gin.Context) {
	units, err := h.scheduleRepo.DistinctUnits(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ListUnits failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units})
}

// GetSchedule 预约详情
// GET /api/schedule/:id
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule id"})
		return
	}

	schedule, err := h.scheduleRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
			return
		}
		h.logger.WithError(err).Error("GetSchedule failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// CreateSchedule 手动创建预约（不经过表格导入）
// POST /api/schedule
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	start, err1 := time.Parse("15:04:05", req.StartTime)
	end, err2 := time.Parse("15:04:05", req.EndTime)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "time must be HH:MM:SS"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endTime must be after startTime"})
		return
	}

	schedule := &model.Schedule{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		Organizer:   req.Organizer,
		Unit:        req.Unit,
		Status:      model.ScheduleStatusPending,
	}
	if err := h.scheduleRepo.Create(c.Request.Context(), schedule); err != nil {
		h.logger.WithError(err).Error("CreateSchedule failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

// UpdateScheduleStatus 手动流转预约状态
// PATCH /api/schedule/:id/status
func (h *ScheduleHandler) UpdateScheduleStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule id"})
		return
	}

	var req updateScheduleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	switch req.Status {
	case model.ScheduleStatusPending, model.ScheduleStatusOngoing, model.ScheduleStatusCompleted:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pending/ongoing/completed"})
		return
	}

	if err := h.scheduleRepo.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		h.logger.WithError(err).Error("UpdateScheduleStatus failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

// TriggerSync 手动触发一次表格导入
// POST /api/sync
func (h *ScheduleHandler) TriggerSync(c *gin.Context) {
	stats, err := h.importer.Run(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("TriggerSync failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// SyncStatus 导入任务状态
// GET /api/sync/status
func (h *ScheduleHandler) SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.importer.Status(c.Request.Context()))
}

// ListEntries 表格导入原始行列表
// GET /api/sync/entries?start_date=&end_date=&unit=&search=&page=1&page_size=20
func (h *ScheduleHandler) ListEntries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := repository.EntryFilter{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Unit:      c.Query("unit"),
		Search:    c.Query("search"),
	}

	entries, total, err := h.entryRepo.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListEntries failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":  entries,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}
