package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PodSync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusRepository 直播状态日志仓储。日志仅追加：只有 Append 一个写入口，
// 没有 Update/Delete，"当前状态"按 last_updated 倒序取第一条
type StatusRepository interface {
	// Append 追加一条状态事件（服务端生成UUID与时间戳）
	Append(ctx context.Context, ev *model.BroadcastStatus, now time.Time) error
	// Latest 最新状态事件；日志为空时返回 (nil, nil)
	Latest(ctx context.Context) (*model.BroadcastStatus, error)
	// History 最近 limit 条事件，新的在前
	History(ctx context.Context, limit int) ([]*model.BroadcastStatus, error)
	// GetByUUID 通过 status_uuid 获取事件
	GetByUUID(ctx context.Context, statusUUID string) (*model.BroadcastStatus, error)
}

type statusRepository struct {
	db *gorm.DB
}

// NewStatusRepository 创建 StatusRepository 实例
func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &statusRepository{db: db}
}

// Append 追加状态事件。时间戳由服务端统一生成，避免多写入方时钟漂移导致排序混乱
func (r *statusRepository) Append(ctx context.Context, ev *model.BroadcastStatus, now time.Time) error {
	if ev.StatusUUID == "" {
		ev.StatusUUID = uuid.NewString()
	}
	ev.LastUpdated = now.UTC()
	if ev.SourceKind == "" {
		ev.SourceKind = model.ClassifySource(ev.UpdatedBy)
	}
	if ev.StatusMessage == "" {
		if ev.IsOnAir {
			ev.StatusMessage = "On Air"
		} else {
			ev.StatusMessage = "Off Air"
		}
	}
	if err := r.db.WithContext(ctx).Create(ev).Error; err != nil {
		return fmt.Errorf("追加状态事件失败: %w", err)
	}
	return nil
}

// Latest 最新状态事件。排序键是 last_updated 而非自增ID，
// 人工与自动写入可能来自不同进程，只有服务端时间戳是可靠顺序
func (r *statusRepository) Latest(ctx context.Context) (*model.BroadcastStatus, error) {
	var ev model.BroadcastStatus
	err := r.db.WithContext(ctx).
		Order("last_updated DESC").
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// History 最近 limit 条事件，新的在前
func (r *statusRepository) History(ctx context.Context, limit int) ([]*model.BroadcastStatus, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var events []*model.BroadcastStatus
	if err := r.db.WithContext(ctx).
		Order("last_updated DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// GetByUUID 通过 status_uuid 获取事件
func (r *statusRepository) GetByUUID(ctx context.Context, statusUUID string) (*model.BroadcastStatus, error) {
	var ev model.BroadcastStatus
	if err := r.db.WithContext(ctx).
		Where("status_uuid = ?", statusUUID).
		First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}
