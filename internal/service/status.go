package service

import (
	"context"
	"fmt"
	"time"

	"PodSync/internal/interfaces"
	"PodSync/internal/model"
	"PodSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// StatusView 当前直播状态（对外接口返回体）。
// 状态日志为空时合成一条默认 Off-Air，保证接口始终有含义明确的返回
type StatusView struct {
	StatusUUID    string           `json:"statusUuid"`
	IsOnAir       bool             `json:"isOnAir"`
	StatusMessage string           `json:"statusMessage"`
	UpdatedBy     string           `json:"updatedBy"`
	SourceKind    model.SourceKind `json:"sourceKind"`
	ScheduleID    *uint64          `json:"scheduleId"`
	LastUpdated   *time.Time       `json:"lastUpdated"`
	ServerTime    time.Time        `json:"serverTime"`
	LocalTime     string           `json:"localTime"`

	ActiveSchedule *model.Schedule `json:"activeSchedule,omitempty"`
	NextSchedule   *model.Schedule `json:"nextSchedule,omitempty"`
}

// UnityStatusView Unity 展示端专用的精简返回体
type UnityStatusView struct {
	OnAir      bool   `json:"onAir"`
	Message    string `json:"message"`
	LastUpdate string `json:"lastUpdate"`
	WibTime    string `json:"wibTime"`
}

// SetStatusInput 手动设置直播状态的入参
type SetStatusInput struct {
	IsOnAir       bool
	StatusMessage string
	UpdatedBy     string
	ScheduleID    *uint64
}

// StatusService 直播状态读写：当前状态、历史、手动覆盖
type StatusService struct {
	statusRepo   repository.StatusRepository
	scheduleRepo repository.ScheduleRepository
	logger       *logrus.Logger
	clock        interfaces.Clock
	loc          *time.Location
}

// NewStatusService 创建状态服务实例
func NewStatusService(
	statusRepo repository.StatusRepository,
	scheduleRepo repository.ScheduleRepository,
	clock interfaces.Clock,
	loc *time.Location,
	logger *logrus.Logger,
) *StatusService {
	return &StatusService{
		statusRepo:   statusRepo,
		scheduleRepo: scheduleRepo,
		logger:       logger,
		clock:        clock,
		loc:          loc,
	}
}

// Current 返回当前直播状态，附带正在进行/即将开始的预约上下文
func (s *StatusService) Current(ctx context.Context) (*StatusView, error) {
	now := s.clock.Now().In(s.loc)
	view := &StatusView{
		IsOnAir:       false,
		StatusMessage: "Off Air",
		UpdatedBy:     "system",
		SourceKind:    model.SourceKindSystem,
		ServerTime:    s.clock.Now().UTC(),
		LocalTime:     now.Format("2006-01-02 15:04:05"),
	}

	latest, err := s.statusRepo.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询最新状态失败: %w", err)
	}
	if latest != nil {
		t := latest.LastUpdated
		view.StatusUUID = latest.StatusUUID
		view.IsOnAir = latest.IsOnAir
		view.StatusMessage = latest.StatusMessage
		view.UpdatedBy = latest.UpdatedBy
		view.SourceKind = latest.SourceKind
		view.ScheduleID = latest.ScheduleID
		view.LastUpdated = &t
	}

	date := now.Format("2006-01-02")
	clockTime := now.Format("15:04:05")
	active, err := s.scheduleRepo.ListActiveAt(ctx, date, clockTime)
	if err != nil {
		s.logger.WithError(err).Warn("查询进行中预约失败")
	} else if len(active) > 0 {
		view.ActiveSchedule = active[0]
	}
	next, err := s.scheduleRepo.FindNextAt(ctx, date, clockTime)
	if err != nil {
		s.logger.WithError(err).Warn("查询下一场预约失败")
	} else {
		view.NextSchedule = next
	}
	return view, nil
}

// Set 手动写入一条状态事件。updatedBy 为空时默认 system，
// 来源分级由来源标识在落库时确定，保护窗口随之生效
func (s *StatusService) Set(ctx context.Context, in SetStatusInput) (*model.BroadcastStatus, error) {
	updatedBy := in.UpdatedBy
	if updatedBy == "" {
		updatedBy = "system"
	}
	ev := &model.BroadcastStatus{
		IsOnAir:       in.IsOnAir,
		StatusMessage: in.StatusMessage,
		UpdatedBy:     updatedBy,
		ScheduleID:    in.ScheduleID,
	}
	if err := s.statusRepo.Append(ctx, ev, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("写入状态事件失败: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"is_on_air":  ev.IsOnAir,
		"updated_by": ev.UpdatedBy,
		"source":     ev.SourceKind,
	}).Info("手动更新直播状态")
	return ev, nil
}

// History 按时间倒序返回状态历史
func (s *StatusService) History(ctx context.Context, limit int) ([]*model.BroadcastStatus, error) {
	return s.statusRepo.History(ctx, limit)
}

// UnityCurrent 返回 Unity 展示端格式的当前状态
func (s *StatusService) UnityCurrent(ctx context.Context) (*UnityStatusView, error) {
	view, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	out := &UnityStatusView{
		OnAir:   view.IsOnAir,
		Message: view.StatusMessage,
		WibTime: view.LocalTime,
	}
	if view.LastUpdated != nil {
		out.LastUpdate = view.LastUpdated.In(s.loc).Format("2006-01-02 15:04:05")
	}
	return out, nil
}
