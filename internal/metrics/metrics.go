package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 调度与导入任务的运行指标
type Metrics struct {
	TicksTotal        *prometheus.CounterVec // 调度tick次数，按结果分类
	StatusTransitions *prometheus.CounterVec // 自动状态切换次数，按方向分类
	OverrideSkips     prometheus.Counter     // 因保护窗口跳过的tick次数
	TickDuration      prometheus.Summary     // 单次tick耗时
	ImportRuns        *prometheus.CounterVec // 导入任务运行次数，按结果分类
	ImportedRows      prometheus.Counter     // 导入的表格行总数
	OnAir             prometheus.Gauge       // 当前是否直播中（1/0）
}

// New 创建指标并注册到给定 registry
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "podsync",
			Name:      "reconciler_ticks_total",
			Help:      "Reconciler ticks by outcome (noop/updated/skipped/error)",
		}, []string{"outcome"}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "podsync",
			Name:      "status_transitions_total",
			Help:      "Automatic broadcast status transitions by direction",
		}, []string{"direction"}),
		OverrideSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "podsync",
			Name:      "override_skips_total",
			Help:      "Ticks skipped because the latest event was inside its protection window",
		}),
		TickDuration: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace: "podsync",
			Name:      "reconciler_tick_duration_seconds",
			Help:      "Time spent in one reconciler tick",
		}),
		ImportRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "podsync",
			Name:      "sheet_import_runs_total",
			Help:      "Sheet import runs by outcome (ok/error)",
		}, []string{"outcome"}),
		ImportedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "podsync",
			Name:      "sheet_imported_rows_total",
			Help:      "Rows created from the sheet import",
		}),
		OnAir: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "podsync",
			Name:      "on_air",
			Help:      "Whether the studio is currently on air (1) or off air (0)",
		}),
	}

	reg.MustRegister(
		m.TicksTotal,
		m.StatusTransitions,
		m.OverrideSkips,
		m.TickDuration,
		m.ImportRuns,
		m.ImportedRows,
		m.OnAir,
	)
	return m
}
