package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"PodSync/internal/config"
	"PodSync/internal/interfaces"
	"PodSync/internal/metrics"
	"PodSync/internal/model"
	"PodSync/internal/repository"
	"PodSync/internal/sheets"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// 表格列序（与表单字段顺序一致）：
// 提交时间、姓名、工号/学号、电话、单位、用途、设施、开始日期、结束日期、借用月份、开始时间、结束时间、时长
const minRowColumns = 13

// ImportStats 单次导入的统计
type ImportStats struct {
	Processed int       `json:"processed"`
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
	Skipped   int       `json:"skipped"`
	Errors    int       `json:"errors"`
	RanAt     time.Time `json:"ranAt"`
}

// ImporterStatus 导入任务运行状态（管理接口展示用）
type ImporterStatus struct {
	Enabled         bool         `json:"enabled"`
	Running         bool         `json:"running"`
	IntervalSeconds int          `json:"intervalSeconds"`
	LastRun         *ImportStats `json:"lastRun"`
	LastError       string       `json:"lastError,omitempty"`
	TotalEntries    int64        `json:"totalEntries"`
}

// Importer 表格导入任务：定时从数据源拉取预约行，按指纹去重入库，
// 并为每行创建/刷新关联的预约记录。单行失败不阻塞整次导入
type Importer struct {
	source       interfaces.SheetSource
	entryRepo    repository.SheetEntryRepository
	scheduleRepo repository.ScheduleRepository
	logger       *logrus.Logger
	metrics      *metrics.Metrics
	clock        interfaces.Clock
	loc          *time.Location
	interval     time.Duration
	enabled      bool

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	lastRun   *ImportStats
	lastError string
}

// NewImporter 创建导入任务实例
func NewImporter(
	source interfaces.SheetSource,
	entryRepo repository.SheetEntryRepository,
	scheduleRepo repository.ScheduleRepository,
	cfg *config.Config,
	clock interfaces.Clock,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *Importer {
	return &Importer{
		source:       source,
		entryRepo:    entryRepo,
		scheduleRepo: scheduleRepo,
		logger:       logger,
		metrics:      m,
		clock:        clock,
		loc:          cfg.Timezone.Location(),
		interval:     cfg.Sync.Interval,
		enabled:      cfg.Sync.Enabled,
	}
}

// Start 启动定时导入。未启用或重复调用时无副作用
func (im *Importer) Start() {
	im.mu.Lock()
	defer im.mu.Unlock()
	if !im.enabled {
		im.logger.Info("自动导入未启用，仅支持手动触发")
		return
	}
	if im.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	im.cancel = cancel
	im.done = make(chan struct{})
	im.running = true

	go func() {
		defer close(im.done)
		ticker := time.NewTicker(im.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := im.Run(ctx); err != nil {
					im.logger.WithError(err).Error("定时导入失败，下个周期重试")
				}
			}
		}
	}()
	im.logger.Infof("导入任务已启动，间隔 %s", im.interval)
}

// Stop 停止定时导入，正在执行的一轮允许跑完
func (im *Importer) Stop() {
	im.mu.Lock()
	if !im.running {
		im.mu.Unlock()
		return
	}
	cancel := im.cancel
	done := im.done
	im.running = false
	im.mu.Unlock()

	cancel()
	<-done
	im.logger.Info("导入任务已停止")
}

// Status 导入任务状态快照
func (im *Importer) Status(ctx context.Context) ImporterStatus {
	total, err := im.entryRepo.Count(ctx)
	if err != nil {
		im.logger.WithError(err).Warn("统计表格行总数失败")
	}
	im.mu.Lock()
	defer im.mu.Unlock()
	return ImporterStatus{
		Enabled:         im.enabled,
		Running:         im.running,
		IntervalSeconds: int(im.interval / time.Second),
		LastRun:         im.lastRun,
		LastError:       im.lastError,
		TotalEntries:    total,
	}
}

// Run 执行一次完整导入。返回统计；拉取失败时整轮放弃，单行解析/入库失败只计数
func (im *Importer) Run(ctx context.Context) (*ImportStats, error) {
	now := im.clock.Now()
	stats := &ImportStats{RanAt: now}

	rows, err := im.source.FetchRows(ctx)
	if err != nil {
		im.metrics.ImportRuns.WithLabelValues("error").Inc()
		im.recordRun(stats, err)
		return nil, fmt.Errorf("拉取表格数据失败: %w", err)
	}
	stats.Processed = len(rows)

	for _, row := range rows {
		entry, err := im.parseRow(row)
		if err != nil {
			stats.Errors++
			im.logger.WithError(err).Warn("解析表格行失败，已跳过")
			continue
		}

		created, changed, err := im.entryRepo.UpsertByRowKey(ctx, entry)
		if err != nil {
			stats.Errors++
			im.logger.WithError(err).WithField("borrower", entry.BorrowerName).Warn("表格行入库失败，已跳过")
			continue
		}

		// 每行对应一条预约；重复导入只刷新元信息，不回退状态
		schedule := scheduleFromEntry(entry)
		if err := im.scheduleRepo.UpsertFromEntry(ctx, schedule, now); err != nil {
			stats.Errors++
			im.logger.WithError(err).WithField("entry_id", entry.ID).Warn("同步预约失败，已跳过")
			continue
		}

		switch {
		case created:
			stats.Created++
			im.metrics.ImportedRows.Inc()
		case changed:
			stats.Updated++
		default:
			stats.Skipped++
		}
	}

	im.metrics.ImportRuns.WithLabelValues("ok").Inc()
	im.recordRun(stats, nil)
	im.logger.WithFields(logrus.Fields{
		"processed": stats.Processed,
		"created":   stats.Created,
		"updated":   stats.Updated,
		"errors":    stats.Errors,
	}).Info("导入完成")
	return stats, nil
}

func (im *Importer) recordRun(stats *ImportStats, err error) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.lastRun = stats
	if err != nil {
		im.lastError = err.Error()
	} else {
		im.lastError = ""
	}
}

// parseRow 将一行表格数据转换为 SheetEntry
func (im *Importer) parseRow(row interfaces.SheetRow) (*model.SheetEntry, error) {
	if len(row) < minRowColumns {
		return nil, fmt.Errorf("列数不足: 期望%d列, 实际%d列", minRowColumns, len(row))
	}

	startDate, err := sheets.ParseLongDate(row[7])
	if err != nil {
		return nil, fmt.Errorf("开始日期: %w", err)
	}
	endDate, err := sheets.ParseLongDate(row[8])
	if err != nil {
		return nil, fmt.Errorf("结束日期: %w", err)
	}
	startTime, err := sheets.NormalizeClock(row[10])
	if err != nil {
		return nil, fmt.Errorf("开始时间: %w", err)
	}
	endTime, err := sheets.NormalizeClock(row[11])
	if err != nil {
		return nil, fmt.Errorf("结束时间: %w", err)
	}
	if endTime <= startTime {
		return nil, fmt.Errorf("结束时间必须晚于开始时间: %s..%s", startTime, endTime)
	}

	entry := &model.SheetEntry{
		BorrowerName: strings.TrimSpace(row[1]),
		BorrowerID:   strings.TrimSpace(row[2]),
		Phone:        strings.TrimSpace(row[3]),
		Unit:         strings.TrimSpace(row[4]),
		Purpose:      strings.TrimSpace(row[5]),
		Facility:     strings.TrimSpace(row[6]),
		StartDate:    startDate,
		EndDate:      endDate,
		StartTime:    startTime,
		EndTime:      endTime,
	}
	if entry.BorrowerName == "" || entry.BorrowerID == "" {
		return nil, fmt.Errorf("姓名与工号/学号不能为空")
	}

	if t, err := sheets.ParseTimestamp(row[0], im.loc); err == nil {
		entry.SubmittedAt = &t
	}
	if hours, err := strconv.ParseFloat(strings.TrimSpace(row[12]), 64); err == nil {
		entry.Hours = hours
	}

	entry.RowKey = rowKey(row[0], entry.BorrowerID)
	entry.Fingerprint = rowFingerprint(row)
	if raw, err := json.Marshal([]string(row)); err == nil {
		entry.Raw = datatypes.JSON(raw)
	}
	return entry, nil
}

// rowKey 稳定行标识：提交时间+工号/学号。表单一次提交对应一行，
// 该组合在后续编辑中保持不变，作为去重键
func rowKey(timestamp, borrowerID string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(timestamp) + "\x1f" + borrowerID))
	return hex.EncodeToString(h[:])
}

// rowFingerprint 行内容指纹：全部单元格拼接后取sha256，用于检测行内容是否变化
func rowFingerprint(row interfaces.SheetRow) string {
	h := sha256.Sum256([]byte(strings.Join(row, "\x1f")))
	return hex.EncodeToString(h[:])
}

// scheduleFromEntry 由表格行生成预约记录
func scheduleFromEntry(e *model.SheetEntry) *model.Schedule {
	title := e.Purpose
	if title == "" {
		title = "Lab Booking"
	}
	return &model.Schedule{
		Title:        title,
		Description:  fmt.Sprintf("%s - %s", e.Facility, e.BorrowerName),
		Date:         e.StartDate,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		Location:     e.Facility,
		Organizer:    e.BorrowerName,
		Unit:         e.Unit,
		SheetEntryID: &e.ID,
	}
}
