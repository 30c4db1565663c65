package model

import "strings"

// SourceKind 状态事件来源分级（写入时一次性确定，读取侧不再做字符串猜测）
type SourceKind string

const (
	SourceKindManual SourceKind = "manual" // 人工操作：admin、web-app-admin、unity-manual 等
	SourceKindSystem SourceKind = "system" // 系统写入：system、unity-digital-signage 等
	SourceKindAuto   SourceKind = "auto"   // 自动调度：auto-scheduler、auto-system
)

// 已知来源标识按分级归类（与旧版 updated_by 自由字符串兼容）
var (
	manualSources = []string{"admin", "web-app-admin", "unity-manual", "unity-manual-override"}
	systemSources = []string{"system", "unity-digital-signage", "unity-booking-display"}
	autoSources   = []string{"auto-scheduler", "auto-system"}
)

// ClassifySource 将自由格式的来源标识归入封闭枚举。
// 判定优先级 manual > auto > system（auto-system 必须落在 auto 档，不能被 system 误判）；
// 未知来源按 auto 处理（不受保护窗口约束）。
func ClassifySource(updatedBy string) SourceKind {
	s := strings.ToLower(strings.TrimSpace(updatedBy))
	for _, src := range manualSources {
		if strings.Contains(s, src) {
			return SourceKindManual
		}
	}
	for _, src := range autoSources {
		if strings.Contains(s, src) {
			return SourceKindAuto
		}
	}
	for _, src := range systemSources {
		if strings.Contains(s, src) {
			return SourceKindSystem
		}
	}
	return SourceKindAuto
}
