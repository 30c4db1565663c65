package model

import "testing"

func TestClassifySource(t *testing.T) {
	tests := []struct {
		updatedBy string
		want      SourceKind
	}{
		{"admin", SourceKindManual},
		{"web-app-admin", SourceKindManual},
		{"unity-manual", SourceKindManual},
		{"unity-manual-override", SourceKindManual},
		{"Admin", SourceKindManual},
		{"  admin  ", SourceKindManual},

		{"system", SourceKindSystem},
		{"unity-digital-signage", SourceKindSystem},
		{"unity-booking-display", SourceKindSystem},

		{"auto-scheduler", SourceKindAuto},
		// 前缀含 auto 的必须落在 auto 档，不能被 system 误判
		{"auto-system", SourceKindAuto},

		// 未知来源不受保护窗口约束
		{"", SourceKindAuto},
		{"something-else", SourceKindAuto},
	}

	for _, tt := range tests {
		if got := ClassifySource(tt.updatedBy); got != tt.want {
			t.Errorf("ClassifySource(%q) = %v, want %v", tt.updatedBy, got, tt.want)
		}
	}
}
