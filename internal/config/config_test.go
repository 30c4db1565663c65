package config

import (
	"testing"
	"time"
)

func TestApplyDefaultsTimezone(t *testing.T) {
	tests := []struct {
		name       string
		tz         TimezoneConfig
		wantName   string
		wantOffset int
	}{
		{"empty", TimezoneConfig{}, "WIB", 7},
		{"name only", TimezoneConfig{Name: "WIB"}, "WIB", 7},
		{"offset only", TimezoneConfig{OffsetHours: 8}, "WIB", 8},
		{"both set", TimezoneConfig{Name: "WITA", OffsetHours: 8}, "WITA", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Timezone: tt.tz}
			ApplyDefaults(cfg)
			if cfg.Timezone.Name != tt.wantName || cfg.Timezone.OffsetHours != tt.wantOffset {
				t.Errorf("timezone = %s%+d, want %s%+d",
					cfg.Timezone.Name, cfg.Timezone.OffsetHours, tt.wantName, tt.wantOffset)
			}
			loc := cfg.Timezone.Location()
			ref := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC).In(loc)
			if got := ref.Hour(); got != (9+tt.wantOffset)%24 {
				t.Errorf("hour in zone = %d, want %d", got, (9+tt.wantOffset)%24)
			}
		})
	}
}

func TestApplyDefaultsBroadcastInterval(t *testing.T) {
	cfg := &Config{}
	cfg.Broadcast.CheckInterval = 3 * time.Second
	ApplyDefaults(cfg)
	if cfg.Broadcast.CheckInterval != 30*time.Second {
		t.Errorf("interval = %s, want floor applied to 30s", cfg.Broadcast.CheckInterval)
	}
}
