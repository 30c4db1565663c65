package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PodSync/internal/model"

	"gorm.io/gorm"
)

// ScheduleFilter 预约列表筛选条件
type ScheduleFilter struct {
	Status    string // 状态：pending / ongoing / completed
	StartDate string // 起始日期 YYYY-MM-DD（含）
	EndDate   string // 结束日期 YYYY-MM-DD（含）
	Unit      string // 所属单位/院系
	Search    string // 在标题/描述/预约人中模糊搜索
}

// ScheduleRepository 预约仓储（调度器与CRUD接口共用）
type ScheduleRepository interface {
	// ListActiveAt 某日期某时刻正在进行的预约，按开始时间升序。
	// 正常数据最多一条；多于一条属于数据质量问题，由调用方记录告警并取最早开始的
	ListActiveAt(ctx context.Context, date, clockTime string) ([]*model.Schedule, error)
	// MarkOngoing 将预约置为 ongoing
	MarkOngoing(ctx context.Context, id uint64) error
	// MarkCompleted 将预约置为 completed
	MarkCompleted(ctx context.Context, id uint64) error
	// CompleteExpired 将已过结束时间仍为 ongoing 的预约批量置为 completed，返回处理条数
	CompleteExpired(ctx context.Context, date, clockTime string) (int64, error)
	// List 按过滤条件分页查询
	List(ctx context.Context, filter ScheduleFilter, page, pageSize int) ([]*model.Schedule, int64, error)
	// ListByDate 某一天的全部预约，按开始时间升序
	ListByDate(ctx context.Context, date string) ([]*model.Schedule, error)
	// FindNextAt 某日期某时刻之后最近的一条未开始预约
	FindNextAt(ctx context.Context, date, clockTime string) (*model.Schedule, error)
	// GetByID 主键查询
	GetByID(ctx context.Context, id uint64) (*model.Schedule, error)
	// Create 创建预约
	Create(ctx context.Context, s *model.Schedule) error
	// UpdateStatus 人工修改预约状态
	UpdateStatus(ctx context.Context, id uint64, status string) error
	// DistinctUnits 去重后的单位列表（前端筛选下拉框用）
	DistinctUnits(ctx context.Context) ([]string, error)
	// UpsertFromEntry 按关联的表格行ID创建或更新预约（导入任务专用）
	UpsertFromEntry(ctx context.Context, s *model.Schedule, syncedAt time.Time) error
}

type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository 创建 ScheduleRepository 实例
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

// ListActiveAt 查询 date 当天 [start_time, end_time] 覆盖 clockTime、
// 且状态仍可进入直播（pending/ongoing）的预约
func (r *scheduleRepository) ListActiveAt(ctx context.Context, date, clockTime string) ([]*model.Schedule, error) {
	var schedules []*model.Schedule
	if err := r.db.WithContext(ctx).Model(&model.Schedule{}).
		Where("date = ? AND start_time <= ? AND end_time >= ?", date, clockTime, clockTime).
		Where("status IN ?", []string{model.ScheduleStatusPending, model.ScheduleStatusOngoing}).
		Order("start_time ASC").
		Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

// MarkOngoing 将预约置为 ongoing
func (r *scheduleRepository) MarkOngoing(ctx context.Context, id uint64) error {
	return r.setStatus(ctx, id, model.ScheduleStatusOngoing)
}

// MarkCompleted 将预约置为 completed
func (r *scheduleRepository) MarkCompleted(ctx context.Context, id uint64) error {
	return r.setStatus(ctx, id, model.ScheduleStatusCompleted)
}

func (r *scheduleRepository) setStatus(ctx context.Context, id uint64, status string) error {
	res := r.db.WithContext(ctx).Model(&model.Schedule{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("更新预约状态失败: %w, id: %d", res.Error, id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("预约不存在: %d", id)
	}
	return nil
}

// CompleteExpired 已过结束时间（当天 end_time < clockTime，或日期早于今天）
// 仍为 ongoing 的预约批量收尾
func (r *scheduleRepository) CompleteExpired(ctx context.Context, date, clockTime string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Schedule{}).
		Where("status = ?", model.ScheduleStatusOngoing).
		Where("(date = ? AND end_time < ?) OR date < ?", date, clockTime, date).
		Update("status", model.ScheduleStatusCompleted)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// List 按过滤条件分页查询
func (r *scheduleRepository) List(ctx context.Context, filter ScheduleFilter, page, pageSize int) ([]*model.Schedule, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}

	db := r.db.WithContext(ctx).Model(&model.Schedule{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.StartDate != "" {
		db = db.Where("date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		db = db.Where("date <= ?", filter.EndDate)
	}
	if filter.Unit != "" {
		db = db.Where("unit = ?", filter.Unit)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("title LIKE ? OR description LIKE ? OR organizer LIKE ?", like, like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var schedules []*model.Schedule
	if err := db.
		Order("date DESC, start_time ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&schedules).Error; err != nil {
		return nil, 0, err
	}
	return schedules, total, nil
}

// ListByDate 某一天的全部预约
func (r *scheduleRepository) ListByDate(ctx context.Context, date string) ([]*model.Schedule, error) {
	var schedules []*model.Schedule
	if err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("start_time ASC").
		Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

// FindNextAt 当天 clockTime 之后最近的一条待开始预约；没有时返回 (nil, nil)
func (r *scheduleRepository) FindNextAt(ctx context.Context, date, clockTime string) (*model.Schedule, error) {
	var s model.Schedule
	err := r.db.WithContext(ctx).
		Where("date = ? AND start_time > ? AND status = ?", date, clockTime, model.ScheduleStatusPending).
		Order("start_time ASC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID 主键查询
func (r *scheduleRepository) GetByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	var s model.Schedule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Create 创建预约（end_time > start_time 的校验在 service 层完成）
func (r *scheduleRepository) Create(ctx context.Context, s *model.Schedule) error {
	if s.Status == "" {
		s.Status = model.ScheduleStatusPending
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("创建预约失败: %w, title: %s", err, s.Title)
	}
	return nil
}

// UpdateStatus 人工修改预约状态
func (r *scheduleRepository) UpdateStatus(ctx context.Context, id uint64, status string) error {
	return r.setStatus(ctx, id, status)
}

// DistinctUnits 去重后的单位列表
func (r *scheduleRepository) DistinctUnits(ctx context.Context) ([]string, error) {
	var units []string
	if err := r.db.WithContext(ctx).Model(&model.Schedule{}).
		Where("unit <> ''").
		Distinct("unit").
		Order("unit ASC").
		Pluck("unit", &units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// UpsertFromEntry 按 sheet_entry_id 创建或更新预约。
// 已进入 ongoing/completed 的预约不回退状态，只刷新元信息
func (r *scheduleRepository) UpsertFromEntry(ctx context.Context, s *model.Schedule, syncedAt time.Time) error {
	if s.SheetEntryID == nil {
		return fmt.Errorf("UpsertFromEntry 需要关联表格行ID, title: %s", s.Title)
	}
	s.LastSyncedAt = &syncedAt

	var existing model.Schedule
	err := r.db.WithContext(ctx).
		Where("sheet_entry_id = ?", *s.SheetEntryID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if s.Status == "" {
			s.Status = model.ScheduleStatusPending
		}
		if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
			return fmt.Errorf("导入创建预约失败: %w, title: %s", err, s.Title)
		}
		return nil
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"title":          s.Title,
		"description":    s.Description,
		"date":           s.Date,
		"start_time":     s.StartTime,
		"end_time":       s.EndTime,
		"location":       s.Location,
		"organizer":      s.Organizer,
		"unit":           s.Unit,
		"last_synced_at": syncedAt,
	}
	if err := r.db.WithContext(ctx).Model(&model.Schedule{}).
		Where("id = ?", existing.ID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("导入更新预约失败: %w, id: %d", err, existing.ID)
	}
	s.ID = existing.ID
	return nil
}
