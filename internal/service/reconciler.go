package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PodSync/internal/config"
	"PodSync/internal/interfaces"
	"PodSync/internal/metrics"
	"PodSync/internal/model"
	"PodSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// Reconciler 直播状态自动调度器：定时比对"排期认为该不该直播"与"状态日志的当前状态"，
// 不一致且最新事件不在保护窗口内时追加一条自动状态事件。
// 单实例持有全部可变状态，由 main 构造后注入各 handler，不做包级单例
type Reconciler struct {
	scheduleRepo repository.ScheduleRepository
	statusRepo   repository.StatusRepository
	logger       *logrus.Logger
	metrics      *metrics.Metrics
	clock        interfaces.Clock
	loc          *time.Location

	interval     time.Duration
	manualWindow time.Duration // 人工来源保护窗口
	systemWindow time.Duration // 系统来源保护窗口

	mu         sync.Mutex
	running    bool
	cancel     context.CancelFunc
	done       chan struct{}
	inFlight   bool // 单飞标记：tick超时也绝不并发执行
	lastCheck  *CheckSnapshot
	lastUpdate *UpdateSnapshot
}

// CheckSnapshot 最近一次检查的快照（管理接口展示用）
type CheckSnapshot struct {
	Time           time.Time       `json:"time"`
	LocalTime      string          `json:"localTime"`
	ActiveSchedule *model.Schedule `json:"activeSchedule"`
	ShouldBeOnAir  bool            `json:"shouldBeOnAir"`
	CurrentlyOnAir bool            `json:"currentlyOnAir"`
	NeedsUpdate    bool            `json:"needsUpdate"`
}

// UpdateSnapshot 最近一次自动状态变更的快照
type UpdateSnapshot struct {
	Time          time.Time `json:"time"`
	Action        string    `json:"action"` // auto_on / auto_off
	ScheduleTitle string    `json:"scheduleTitle,omitempty"`
	StatusUUID    string    `json:"statusUuid"`
}

// SchedulerStatus 调度器运行状态（管理接口展示用）
type SchedulerStatus struct {
	Running              bool            `json:"running"`
	CheckIntervalSeconds int             `json:"checkIntervalSeconds"`
	Timezone             string          `json:"timezone"`
	LastCheck            *CheckSnapshot  `json:"lastCheck"`
	LastUpdate           *UpdateSnapshot `json:"lastUpdate"`
}

// AutoSchedulerSource 自动调度写入状态事件时使用的来源标识
const AutoSchedulerSource = "auto-scheduler"

// NewReconciler 创建调度器实例
func NewReconciler(
	scheduleRepo repository.ScheduleRepository,
	statusRepo repository.StatusRepository,
	cfg *config.Config,
	clock interfaces.Clock,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *Reconciler {
	return &Reconciler{
		scheduleRepo: scheduleRepo,
		statusRepo:   statusRepo,
		logger:       logger,
		metrics:      m,
		clock:        clock,
		loc:          cfg.Timezone.Location(),
		interval:     cfg.Broadcast.CheckInterval,
		manualWindow: cfg.Broadcast.ManualOverrideWindow,
		systemWindow: cfg.Broadcast.SystemOverrideWindow,
	}
}

// Start 启动定时调度。重复调用无副作用
func (r *Reconciler) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		r.logger.Info("调度器已在运行")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true

	go r.run(ctx)
	r.logger.Infof("调度器已启动，检查间隔 %s", r.interval)
}

// Stop 停止调度：取消待触发的定时器，正在执行的tick允许跑完
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		r.logger.Info("调度器未在运行")
		return
	}
	cancel := r.cancel
	done := r.done
	r.running = false
	r.mu.Unlock()

	cancel()
	<-done
	r.logger.Info("调度器已停止")
}

// Running 调度器是否在运行
func (r *Reconciler) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Status 调度器运行状态快照
func (r *Reconciler) Status() SchedulerStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return SchedulerStatus{
		Running:              r.running,
		CheckIntervalSeconds: int(r.interval / time.Second),
		Timezone:             r.loc.String(),
		LastCheck:            r.lastCheck,
		LastUpdate:           r.lastUpdate,
	}
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.done)

	// 启动后先立即检查一次，再进入固定间隔
	if err := r.Tick(ctx); err != nil {
		r.logger.WithError(err).Error("调度tick失败，下个周期重试")
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Tick(ctx); err != nil {
				r.logger.WithError(err).Error("调度tick失败，下个周期重试")
			}
		}
	}
}

// Tick 执行一次完整的检查与修正。任何错误只记录不上抛进程：
// 事件追加是单次原子写入，失败不会留下半成品状态，下个tick从头重来
func (r *Reconciler) Tick(ctx context.Context) error {
	r.mu.Lock()
	if r.inFlight {
		r.mu.Unlock()
		r.logger.Warn("上一个tick尚未结束，跳过本次")
		return nil
	}
	r.inFlight = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.inFlight = false
		r.mu.Unlock()
	}()

	start := r.clock.Now()
	defer func() {
		r.metrics.TickDuration.Observe(time.Since(start).Seconds())
	}()

	// 1. 固定偏移时区下的"今天"与"当前时刻"
	now := start.In(r.loc)
	today := now.Format("2006-01-02")
	clockTime := now.Format("15:04:05")

	// 2. 查询当前应处于直播的预约
	matches, err := r.scheduleRepo.ListActiveAt(ctx, today, clockTime)
	if err != nil {
		r.metrics.TicksTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("查询当前预约失败: %w", err)
	}
	var active *model.Schedule
	if len(matches) > 0 {
		// 正常排期同一时刻只有一条；多条说明导入数据有重叠，取最早开始的并告警
		active = matches[0]
		if len(matches) > 1 {
			r.logger.WithFields(logrus.Fields{
				"count":  len(matches),
				"date":   today,
				"time":   clockTime,
				"picked": active.ID,
			}).Warn("同一时刻存在多条进行中预约，已按最早开始时间选取")
		}
	}
	shouldBeOnAir := active != nil

	// 3. 状态日志的当前状态（日志为空视为off-air）
	latest, err := r.statusRepo.Latest(ctx)
	if err != nil {
		r.metrics.TicksTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("查询当前状态失败: %w", err)
	}
	currentlyOnAir := latest != nil && latest.IsOnAir

	r.setLastCheck(&CheckSnapshot{
		Time:           start,
		LocalTime:      now.Format("2006-01-02 15:04:05"),
		ActiveSchedule: active,
		ShouldBeOnAir:  shouldBeOnAir,
		CurrentlyOnAir: currentlyOnAir,
		NeedsUpdate:    shouldBeOnAir != currentlyOnAir,
	})

	switch {
	case shouldBeOnAir == currentlyOnAir:
		// 状态一致，本tick无事可做
		r.metrics.TicksTotal.WithLabelValues("noop").Inc()

	case r.isProtected(latest, start):
		// 最新事件仍在保护窗口内：不与人工操作抢状态，留到窗口过期后的tick处理
		r.metrics.TicksTotal.WithLabelValues("skipped").Inc()
		r.metrics.OverrideSkips.Inc()
		r.logger.WithFields(logrus.Fields{
			"updated_by":   latest.UpdatedBy,
			"source_kind":  latest.SourceKind,
			"age":          start.Sub(latest.LastUpdated).Round(time.Second).String(),
			"should_be_on": shouldBeOnAir,
		}).Info("最新状态仍在保护窗口内，本tick跳过")

	default:
		if err := r.applyTransition(ctx, active, shouldBeOnAir, start); err != nil {
			r.metrics.TicksTotal.WithLabelValues("error").Inc()
			return err
		}
		r.metrics.TicksTotal.WithLabelValues("updated").Inc()
		currentlyOnAir = shouldBeOnAir
	}

	if currentlyOnAir {
		r.metrics.OnAir.Set(1)
	} else {
		r.metrics.OnAir.Set(0)
	}

	// 4. 收尾：已过结束时间仍为ongoing的预约统一置completed
	if n, err := r.scheduleRepo.CompleteExpired(ctx, today, clockTime); err != nil {
		r.logger.WithError(err).Warn("批量收尾过期预约失败")
	} else if n > 0 {
		r.logger.Infof("已将%d条过期预约置为completed", n)
	}

	return nil
}

// applyTransition 追加一条自动状态事件并同步预约状态
func (r *Reconciler) applyTransition(ctx context.Context, active *model.Schedule, onAir bool, now time.Time) error {
	ev := &model.BroadcastStatus{
		IsOnAir:    onAir,
		UpdatedBy:  AutoSchedulerSource,
		SourceKind: model.SourceKindAuto,
	}
	action := "auto_off"
	title := ""
	if onAir {
		action = "auto_on"
		title = active.Title
		ev.StatusMessage = fmt.Sprintf("Auto On-Air: %s", active.Title)
		if active.Organizer != "" {
			ev.StatusMessage = fmt.Sprintf("Auto On-Air: %s (%s)", active.Title, active.Organizer)
		}
		ev.ScheduleID = &active.ID
	} else {
		ev.StatusMessage = "Auto Off-Air: no active schedule"
	}

	if err := r.statusRepo.Append(ctx, ev, now); err != nil {
		return fmt.Errorf("追加自动状态事件失败: %w", err)
	}

	if onAir {
		r.metrics.StatusTransitions.WithLabelValues("on").Inc()
		if err := r.scheduleRepo.MarkOngoing(ctx, active.ID); err != nil {
			// 事件已经写入，预约状态流转失败只告警，下个tick的收尾逻辑会补救
			r.logger.WithError(err).WithField("schedule_id", active.ID).Warn("预约置为ongoing失败")
		}
	} else {
		r.metrics.StatusTransitions.WithLabelValues("off").Inc()
	}

	r.setLastUpdate(&UpdateSnapshot{
		Time:          now,
		Action:        action,
		ScheduleTitle: title,
		StatusUUID:    ev.StatusUUID,
	})
	r.logger.WithFields(logrus.Fields{
		"action":   action,
		"schedule": title,
	}).Info("已自动修正直播状态")
	return nil
}

// isProtected 最新事件是否仍在其来源分级对应的保护窗口内。
// manual=15m、system=5m、auto=0（自动事件随时可被覆盖）
func (r *Reconciler) isProtected(latest *model.BroadcastStatus, now time.Time) bool {
	if latest == nil {
		return false
	}
	kind := latest.SourceKind
	if kind == "" {
		// 旧数据没有分级字段时退回写入规则补判一次
		kind = model.ClassifySource(latest.UpdatedBy)
	}
	var window time.Duration
	switch kind {
	case model.SourceKindManual:
		window = r.manualWindow
	case model.SourceKindSystem:
		window = r.systemWindow
	default:
		return false
	}
	return now.Sub(latest.LastUpdated) < window
}

func (r *Reconciler) setLastCheck(s *CheckSnapshot) {
	r.mu.Lock()
	r.lastCheck = s
	r.mu.Unlock()
}

func (r *Reconciler) setLastUpdate(s *UpdateSnapshot) {
	r.mu.Lock()
	r.lastUpdate = s
	r.mu.Unlock()
}
