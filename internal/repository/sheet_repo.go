package repository

import (
	"context"
	"errors"
	"fmt"

	"PodSync/internal/model"

	"gorm.io/gorm"
)

// EntryFilter 表格行列表筛选条件
type EntryFilter struct {
	StartDate string // 借用开始日期下限 YYYY-MM-DD
	EndDate   string // 借用开始日期上限 YYYY-MM-DD
	Unit      string // 所属单位/院系
	Search    string // 在姓名/工号/用途中模糊搜索
}

// SheetEntryRepository 表格导入行仓储
type SheetEntryRepository interface {
	// UpsertByRowKey 按稳定行标识入库：不存在则新建；
	// 已存在且内容指纹变化时原地更新并将版本号+1，指纹未变则跳过
	UpsertByRowKey(ctx context.Context, e *model.SheetEntry) (created, changed bool, err error)
	// GetByRowKey 按稳定行标识查询；不存在时返回 (nil, nil)
	GetByRowKey(ctx context.Context, rowKey string) (*model.SheetEntry, error)
	// List 按过滤条件分页查询
	List(ctx context.Context, filter EntryFilter, page, pageSize int) ([]*model.SheetEntry, int64, error)
	// ListByDate 某一天开始借用的全部行
	ListByDate(ctx context.Context, date string) ([]*model.SheetEntry, error)
	// DistinctUnits 去重后的单位列表
	DistinctUnits(ctx context.Context) ([]string, error)
	// Count 总行数
	Count(ctx context.Context) (int64, error)
}

type sheetEntryRepository struct {
	db *gorm.DB
}

// NewSheetEntryRepository 创建 SheetEntryRepository 实例
func NewSheetEntryRepository(db *gorm.DB) SheetEntryRepository {
	return &sheetEntryRepository{db: db}
}

// UpsertByRowKey 按稳定行标识入库
func (r *sheetEntryRepository) UpsertByRowKey(ctx context.Context, e *model.SheetEntry) (bool, bool, error) {
	existing, err := r.GetByRowKey(ctx, e.RowKey)
	if err != nil {
		return false, false, err
	}
	if existing == nil {
		if e.Version <= 0 {
			e.Version = 1
		}
		if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
			return false, false, fmt.Errorf("保存表格行失败: %w, borrower: %s", err, e.BorrowerName)
		}
		return true, true, nil
	}

	e.ID = existing.ID
	e.CreatedAt = existing.CreatedAt
	if existing.Fingerprint == e.Fingerprint {
		e.Version = existing.Version
		return false, false, nil
	}

	// 内容变化：原地更新，版本号+1
	e.Version = existing.Version + 1
	if err := r.db.WithContext(ctx).Save(e).Error; err != nil {
		return false, false, fmt.Errorf("更新表格行失败: %w, borrower: %s", err, e.BorrowerName)
	}
	return false, true, nil
}

// GetByRowKey 按稳定行标识查询
func (r *sheetEntryRepository) GetByRowKey(ctx context.Context, rowKey string) (*model.SheetEntry, error) {
	var e model.SheetEntry
	err := r.db.WithContext(ctx).
		Where("row_key = ?", rowKey).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List 按过滤条件分页查询
func (r *sheetEntryRepository) List(ctx context.Context, filter EntryFilter, page, pageSize int) ([]*model.SheetEntry, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}

	db := r.db.WithContext(ctx).Model(&model.SheetEntry{})
	if filter.StartDate != "" {
		db = db.Where("start_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		db = db.Where("start_date <= ?", filter.EndDate)
	}
	if filter.Unit != "" {
		db = db.Where("unit = ?", filter.Unit)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("borrower_name LIKE ? OR borrower_id LIKE ? OR purpose LIKE ?", like, like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []*model.SheetEntry
	if err := db.
		Order("start_date DESC, start_time ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListByDate 某一天开始借用的全部行
func (r *sheetEntryRepository) ListByDate(ctx context.Context, date string) ([]*model.SheetEntry, error) {
	var entries []*model.SheetEntry
	if err := r.db.WithContext(ctx).
		Where("start_date = ?", date).
		Order("start_time ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// DistinctUnits 去重后的单位列表
func (r *sheetEntryRepository) DistinctUnits(ctx context.Context) ([]string, error) {
	var units []string
	if err := r.db.WithContext(ctx).Model(&model.SheetEntry{}).
		Where("unit <> ''").
		Distinct("unit").
		Order("unit ASC").
		Pluck("unit", &units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// Count 总行数
func (r *sheetEntryRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.SheetEntry{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
