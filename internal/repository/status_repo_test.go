package repository

import (
	"context"
	"testing"
	"time"

	"PodSync/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newStatusRepo(t *testing.T) StatusRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.BroadcastStatus{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStatusRepository(db)
}

func TestAppendFillsServerFields(t *testing.T) {
	repo := newStatusRepo(t)
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.FixedZone("WIB", 7*3600))

	ev := &model.BroadcastStatus{IsOnAir: true, UpdatedBy: "admin"}
	if err := repo.Append(context.Background(), ev, now); err != nil {
		t.Fatalf("append: %v", err)
	}

	if ev.StatusUUID == "" {
		t.Error("expected generated status uuid")
	}
	if ev.SourceKind != model.SourceKindManual {
		t.Errorf("sourceKind = %q, want manual", ev.SourceKind)
	}
	if ev.StatusMessage != "On Air" {
		t.Errorf("message = %q, want default On Air", ev.StatusMessage)
	}
	// timestamps normalized to UTC so ordering works across writers
	if !ev.LastUpdated.Equal(now) || ev.LastUpdated.Location() != time.UTC {
		t.Errorf("lastUpdated = %v, want %v in UTC", ev.LastUpdated, now)
	}

	got, err := repo.GetByUUID(context.Background(), ev.StatusUUID)
	if err != nil {
		t.Fatalf("get by uuid: %v", err)
	}
	if got.IsOnAir != true || got.UpdatedBy != "admin" {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestLatestFollowsTimestampNotInsertOrder(t *testing.T) {
	repo := newStatusRepo(t)
	base := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	// newer event inserted first
	newer := &model.BroadcastStatus{IsOnAir: true, UpdatedBy: "admin"}
	if err := repo.Append(context.Background(), newer, base.Add(time.Minute)); err != nil {
		t.Fatalf("append newer: %v", err)
	}
	older := &model.BroadcastStatus{IsOnAir: false, UpdatedBy: "auto-scheduler"}
	if err := repo.Append(context.Background(), older, base); err != nil {
		t.Fatalf("append older: %v", err)
	}

	latest, err := repo.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.StatusUUID != newer.StatusUUID {
		t.Errorf("latest = %s, want %s (timestamp order)", latest.StatusUUID, newer.StatusUUID)
	}
}

func TestLatestEmptyLog(t *testing.T) {
	repo := newStatusRepo(t)
	latest, err := repo.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest != nil {
		t.Errorf("expected nil on empty log, got %+v", latest)
	}
}

func TestHistoryLimitAndOrder(t *testing.T) {
	repo := newStatusRepo(t)
	base := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		ev := &model.BroadcastStatus{IsOnAir: i%2 == 0, UpdatedBy: "system"}
		if err := repo.Append(context.Background(), ev, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := repo.History(context.Background(), 3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len = %d, want 3", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].LastUpdated.After(events[i-1].LastUpdated) {
			t.Errorf("history not in descending order at %d", i)
		}
	}

	// out-of-range limit falls back to default
	events, err = repo.History(context.Background(), -1)
	if err != nil {
		t.Fatalf("history default: %v", err)
	}
	if len(events) != 5 {
		t.Errorf("len = %d, want all 5 with default limit", len(events))
	}
}
