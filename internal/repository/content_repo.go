package repository

import (
	"context"
	"fmt"
	"time"

	"PodSync/internal/model"

	"gorm.io/gorm"
)

// ContentOrderItem 批量调整展示顺序的单项
type ContentOrderItem struct {
	ID           uint64 `json:"id" binding:"required"`
	DisplayOrder int    `json:"displayOrder"`
}

// ContentStats 标牌内容统计
type ContentStats struct {
	Total    int64            `json:"total"`
	Active   int64            `json:"active"`
	Inactive int64            `json:"inactive"`
	ByType   map[string]int64 `json:"byType"`
}

// ContentRepository 数字标牌内容仓储
type ContentRepository struct {
	db *gorm.DB
}

// NewContentRepository 创建 ContentRepository 实例
func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// ListActive 当前可展示的内容：is_active 且落在展示时间窗内，按展示顺序排列
func (r *ContentRepository) ListActive(ctx context.Context, now time.Time) ([]*model.SignageContent, error) {
	var contents []*model.SignageContent
	if err := r.db.WithContext(ctx).Model(&model.SignageContent{}).
		Where("is_active = ?", true).
		Where("start_date IS NULL OR start_date <= ?", now).
		Where("end_date IS NULL OR end_date >= ?", now).
		Order("display_order ASC").
		Order("created_at DESC").
		Find(&contents).Error; err != nil {
		return nil, err
	}
	return contents, nil
}

// ListAll 全部内容（含停用），按展示顺序排列
func (r *ContentRepository) ListAll(ctx context.Context) ([]*model.SignageContent, error) {
	var contents []*model.SignageContent
	if err := r.db.WithContext(ctx).
		Order("display_order ASC").
		Order("created_at DESC").
		Find(&contents).Error; err != nil {
		return nil, err
	}
	return contents, nil
}

// ListByDateRange 按创建时间范围查询
func (r *ContentRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]*model.SignageContent, error) {
	var contents []*model.SignageContent
	if err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at DESC").
		Find(&contents).Error; err != nil {
		return nil, err
	}
	return contents, nil
}

// GetByID 主键查询
func (r *ContentRepository) GetByID(ctx context.Context, id uint64) (*model.SignageContent, error) {
	var c model.SignageContent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Create 创建内容
func (r *ContentRepository) Create(ctx context.Context, c *model.SignageContent) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("创建标牌内容失败: %w, title: %s", err, c.Title)
	}
	return nil
}

// Update 按字段更新内容
func (r *ContentRepository) Update(ctx context.Context, id uint64, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.SignageContent{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("更新标牌内容失败: %w, id: %d", res.Error, id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("标牌内容不存在: %d", id)
	}
	return nil
}

// Delete 删除内容
func (r *ContentRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.SignageContent{})
	if res.Error != nil {
		return fmt.Errorf("删除标牌内容失败: %w, id: %d", res.Error, id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("标牌内容不存在: %d", id)
	}
	return nil
}

// UpdateDisplayOrders 批量调整展示顺序（单事务内完成，部分失败整体回滚）
func (r *ContentRepository) UpdateDisplayOrders(ctx context.Context, items []ContentOrderItem) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	for _, item := range items {
		if err := tx.Model(&model.SignageContent{}).
			Where("id = ?", item.ID).
			Update("display_order", item.DisplayOrder).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("调整展示顺序失败: %w, id: %d", err, item.ID)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// Stats 内容统计（总数/启停/按类型）
func (r *ContentRepository) Stats(ctx context.Context) (*ContentStats, error) {
	stats := &ContentStats{ByType: make(map[string]int64)}

	if err := r.db.WithContext(ctx).Model(&model.SignageContent{}).
		Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&model.SignageContent{}).
		Where("is_active = ?", true).
		Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	stats.Inactive = stats.Total - stats.Active

	type typeCount struct {
		Type  string
		Count int64
	}
	var rows []typeCount
	if err := r.db.WithContext(ctx).Model(&model.SignageContent{}).
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByType[row.Type] = row.Count
	}
	return stats, nil
}
