package service

import (
	"context"
	"fmt"
	"time"

	"PodSync/internal/interfaces"
	"PodSync/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UsageBucket 按维度聚合的使用量
type UsageBucket struct {
	Label string  `json:"label"`
	Count int64   `json:"count"`
	Hours float64 `json:"hours"`
}

// DashboardSummary 管理后台首页汇总
type DashboardSummary struct {
	TotalEntries    int64   `json:"totalEntries"`
	TotalHours      float64 `json:"totalHours"`
	TotalSchedules  int64   `json:"totalSchedules"`
	TodaySchedules  int64   `json:"todaySchedules"`
	OngoingCount    int64   `json:"ongoingCount"`
	PendingCount    int64   `json:"pendingCount"`
	CompletedCount  int64   `json:"completedCount"`
	DistinctUnits   int64   `json:"distinctUnits"`
	EntriesThisWeek int64   `json:"entriesThisWeek"`
}

// AnalyticsService 使用统计。聚合查询直接走原生SQL；
// 日期按字符串存储，substr 截取在 postgres 与 sqlite 上行为一致
type AnalyticsService struct {
	db     *gorm.DB
	logger *logrus.Logger
	clock  interfaces.Clock
	loc    *time.Location
}

// NewAnalyticsService 创建统计服务实例
func NewAnalyticsService(db *gorm.DB, clock interfaces.Clock, loc *time.Location, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{db: db, logger: logger, clock: clock, loc: loc}
}

// Dashboard 汇总各维度总量
func (a *AnalyticsService) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	now := a.clock.Now().In(a.loc)
	today := now.Format("2006-01-02")
	weekAgo := now.AddDate(0, 0, -7).Format("2006-01-02")
	db := a.db.WithContext(ctx)

	out := &DashboardSummary{}
	if err := db.Model(&model.SheetEntry{}).Count(&out.TotalEntries).Error; err != nil {
		return nil, fmt.Errorf("统计表格行总数失败: %w", err)
	}
	if err := db.Model(&model.SheetEntry{}).
		Select("COALESCE(SUM(hours), 0)").Scan(&out.TotalHours).Error; err != nil {
		return nil, fmt.Errorf("统计总时长失败: %w", err)
	}
	if err := db.Model(&model.SheetEntry{}).
		Where("start_date >= ?", weekAgo).Count(&out.EntriesThisWeek).Error; err != nil {
		return nil, fmt.Errorf("统计本周新增失败: %w", err)
	}
	if err := db.Model(&model.Schedule{}).Count(&out.TotalSchedules).Error; err != nil {
		return nil, fmt.Errorf("统计预约总数失败: %w", err)
	}
	if err := db.Model(&model.Schedule{}).
		Where("date = ?", today).Count(&out.TodaySchedules).Error; err != nil {
		return nil, fmt.Errorf("统计今日预约失败: %w", err)
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var byStatus []statusCount
	if err := db.Model(&model.Schedule{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("按状态统计预约失败: %w", err)
	}
	for _, sc := range byStatus {
		switch sc.Status {
		case model.ScheduleStatusOngoing:
			out.OngoingCount = sc.Count
		case model.ScheduleStatusPending:
			out.PendingCount = sc.Count
		case model.ScheduleStatusCompleted:
			out.CompletedCount = sc.Count
		}
	}

	if err := db.Model(&model.SheetEntry{}).
		Distinct("unit").Where("unit <> ''").Count(&out.DistinctUnits).Error; err != nil {
		return nil, fmt.Errorf("统计单位数失败: %w", err)
	}
	return out, nil
}

// DailyUsage 指定月份（YYYY-MM）内按天聚合的使用量
func (a *AnalyticsService) DailyUsage(ctx context.Context, month string) ([]UsageBucket, error) {
	if _, err := time.Parse("2006-01", month); err != nil {
		return nil, fmt.Errorf("月份格式不合法, 期望 YYYY-MM: %w", err)
	}
	var rows []UsageBucket
	err := a.db.WithContext(ctx).Model(&model.SheetEntry{}).
		Select("start_date AS label, COUNT(*) AS count, COALESCE(SUM(hours), 0) AS hours").
		Where("substr(start_date, 1, 7) = ?", month).
		Group("start_date").Order("start_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("按天统计失败: %w", err)
	}
	return rows, nil
}

// MonthlyUsage 指定年份（YYYY）内按月聚合的使用量
func (a *AnalyticsService) MonthlyUsage(ctx context.Context, year string) ([]UsageBucket, error) {
	if _, err := time.Parse("2006", year); err != nil {
		return nil, fmt.Errorf("年份格式不合法, 期望 YYYY: %w", err)
	}
	var rows []UsageBucket
	err := a.db.WithContext(ctx).Model(&model.SheetEntry{}).
		Select("substr(start_date, 1, 7) AS label, COUNT(*) AS count, COALESCE(SUM(hours), 0) AS hours").
		Where("substr(start_date, 1, 4) = ?", year).
		Group("substr(start_date, 1, 7)").Order("label ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("按月统计失败: %w", err)
	}
	return rows, nil
}

// ByFacility 按设施聚合
func (a *AnalyticsService) ByFacility(ctx context.Context) ([]UsageBucket, error) {
	return a.groupBy(ctx, "facility")
}

// ByUnit 按单位/院系聚合
func (a *AnalyticsService) ByUnit(ctx context.Context) ([]UsageBucket, error) {
	return a.groupBy(ctx, "unit")
}

func (a *AnalyticsService) groupBy(ctx context.Context, column string) ([]UsageBucket, error) {
	var rows []UsageBucket
	err := a.db.WithContext(ctx).Model(&model.SheetEntry{}).
		Select(column + " AS label, COUNT(*) AS count, COALESCE(SUM(hours), 0) AS hours").
		Where(column + " <> ''").
		Group(column).Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("按 %s 统计失败: %w", column, err)
	}
	return rows, nil
}

// PeakHours 按开始时间的小时段聚合，用于热力分析
func (a *AnalyticsService) PeakHours(ctx context.Context) ([]UsageBucket, error) {
	var rows []UsageBucket
	err := a.db.WithContext(ctx).Model(&model.SheetEntry{}).
		Select("substr(start_time, 1, 2) AS label, COUNT(*) AS count, COALESCE(SUM(hours), 0) AS hours").
		Group("substr(start_time, 1, 2)").Order("label ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("按时段统计失败: %w", err)
	}
	return rows, nil
}
