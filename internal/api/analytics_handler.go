package api

import (
	"net/http"
	"time"

	"PodSync/internal/interfaces"
	"PodSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AnalyticsHandler 使用统计接口（管理后台图表）
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	clock     interfaces.Clock
	loc       *time.Location
	logger    *logrus.Logger
}

// NewAnalyticsHandler 创建 AnalyticsHandler
func NewAnalyticsHandler(analytics *service.AnalyticsService, clock interfaces.Clock, loc *time.Location, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, clock: clock, loc: loc, logger: logger}
}

// Dashboard 汇总面板
// GET /api/analytics/dashboard
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	summary, err := h.analytics.Dashboard(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Dashboard failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Charts 图表数据统一入口，按 chartType 分发。
// timeRange 对 daily 取 YYYY-MM、对 monthly 取 YYYY，缺省取当前时间
// GET /api/analytics/charts?chartType=daily|monthly|facility|unit|peak-hours&timeRange=2025-01
func (h *AnalyticsHandler) Charts(c *gin.Context) {
	chartType := c.DefaultQuery("chartType", "daily")
	timeRange := c.Query("timeRange")
	now := h.clock.Now().In(h.loc)

	var (
		rows []service.UsageBucket
		err  error
	)
	switch chartType {
	case "daily":
		if timeRange == "" {
			timeRange = now.Format("2006-01")
		}
		rows, err = h.analytics.DailyUsage(c.Request.Context(), timeRange)
	case "monthly":
		if timeRange == "" {
			timeRange = now.Format("2006")
		}
		rows, err = h.analytics.MonthlyUsage(c.Request.Context(), timeRange)
	case "facility":
		rows, err = h.analytics.ByFacility(c.Request.Context())
	case "unit":
		rows, err = h.analytics.ByUnit(c.Request.Context())
	case "peak-hours":
		rows, err = h.analytics.PeakHours(c.Request.Context())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown chartType: " + chartType})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chartType": chartType, "timeRange": timeRange, "buckets": rows})
}

// DailyUsage 指定月份按天聚合，month 缺省取当前月
// GET /api/analytics/daily?month=2025-01
func (h *AnalyticsHandler) DailyUsage(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = h.clock.Now().In(h.loc).Format("2006-01")
	}

	rows, err := h.analytics.DailyUsage(c.Request.Context(), month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "buckets": rows})
}

// MonthlyUsage 指定年份按月聚合，year 缺省取当前年
// GET /api/analytics/monthly?year=2025
func (h *AnalyticsHandler) MonthlyUsage(c *gin.Context) {
	year := c.Query("year")
	if year == "" {
		year = h.clock.Now().In(h.loc).Format("2006")
	}

	rows, err := h.analytics.MonthlyUsage(c.Request.Context(), year)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "buckets": rows})
}

// ByFacility 按设施聚合
// GET /api/analytics/facilities
func (h *AnalyticsHandler) ByFacility(c *gin.Context) {
	rows, err := h.analytics.ByFacility(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ByFacility failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"buckets": rows})
}

// ByUnit 按单位/院系聚合
// GET /api/analytics/units
func (h *AnalyticsHandler) ByUnit(c *gin.Context) {
	rows, err := h.analytics.ByUnit(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ByUnit failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"buckets": rows})
}

// PeakHours 按开始时段聚合
// GET /api/analytics/peak-hours
func (h *AnalyticsHandler) PeakHours(c *gin.Context) {
	rows, err := h.analytics.PeakHours(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("PeakHours failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"buckets": rows})
}
