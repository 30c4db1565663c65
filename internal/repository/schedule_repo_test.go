package repository

import (
	"context"
	"testing"

	"PodSync/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newScheduleRepo(t *testing.T) (ScheduleRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Schedule{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewScheduleRepository(db), db
}

func mustCreate(t *testing.T, db *gorm.DB, s *model.Schedule) *model.Schedule {
	t.Helper()
	if s.Status == "" {
		s.Status = model.ScheduleStatusPending
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	return s
}

func TestListActiveAtBoundaries(t *testing.T) {
	repo, db := newScheduleRepo(t)
	mustCreate(t, db, &model.Schedule{
		Title: "Show", Date: "2025-01-06", StartTime: "09:00:00", EndTime: "11:00:00",
	})

	tests := []struct {
		clockTime string
		want      int
	}{
		{"08:59:59", 0},
		{"09:00:00", 1}, // start boundary inclusive
		{"10:30:00", 1},
		{"11:00:00", 1}, // end boundary inclusive
		{"11:00:01", 0},
	}
	for _, tt := range tests {
		got, err := repo.ListActiveAt(context.Background(), "2025-01-06", tt.clockTime)
		if err != nil {
			t.Fatalf("ListActiveAt(%s): %v", tt.clockTime, err)
		}
		if len(got) != tt.want {
			t.Errorf("ListActiveAt(%s) = %d matches, want %d", tt.clockTime, len(got), tt.want)
		}
	}

	// other day never matches
	got, err := repo.ListActiveAt(context.Background(), "2025-01-07", "10:00:00")
	if err != nil {
		t.Fatalf("ListActiveAt other day: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("schedule matched on wrong day")
	}
}

func TestListActiveAtSkipsCompleted(t *testing.T) {
	repo, db := newScheduleRepo(t)
	mustCreate(t, db, &model.Schedule{
		Title: "Done", Date: "2025-01-06", StartTime: "09:00:00", EndTime: "11:00:00",
		Status: model.ScheduleStatusCompleted,
	})

	got, err := repo.ListActiveAt(context.Background(), "2025-01-06", "10:00:00")
	if err != nil {
		t.Fatalf("ListActiveAt: %v", err)
	}
	if len(got) != 0 {
		t.Error("completed schedule must not count as active")
	}
}

func TestCompleteExpired(t *testing.T) {
	repo, db := newScheduleRepo(t)
	ended := mustCreate(t, db, &model.Schedule{
		Title: "Ended", Date: "2025-01-06", StartTime: "07:00:00", EndTime: "08:00:00",
		Status: model.ScheduleStatusOngoing,
	})
	yesterday := mustCreate(t, db, &model.Schedule{
		Title: "Yesterday", Date: "2025-01-05", StartTime: "09:00:00", EndTime: "11:00:00",
		Status: model.ScheduleStatusOngoing,
	})
	current := mustCreate(t, db, &model.Schedule{
		Title: "Current", Date: "2025-01-06", StartTime: "09:00:00", EndTime: "11:00:00",
		Status: model.ScheduleStatusOngoing,
	})

	n, err := repo.CompleteExpired(context.Background(), "2025-01-06", "10:00:00")
	if err != nil {
		t.Fatalf("CompleteExpired: %v", err)
	}
	if n != 2 {
		t.Errorf("rows affected = %d, want 2", n)
	}

	for _, tc := range []struct {
		id   uint64
		want string
	}{
		{ended.ID, model.ScheduleStatusCompleted},
		{yesterday.ID, model.ScheduleStatusCompleted},
		{current.ID, model.ScheduleStatusOngoing},
	} {
		got, err := repo.GetByID(context.Background(), tc.id)
		if err != nil {
			t.Fatalf("get %d: %v", tc.id, err)
		}
		if got.Status != tc.want {
			t.Errorf("schedule %d status = %q, want %q", tc.id, got.Status, tc.want)
		}
	}
}

func TestListFilters(t *testing.T) {
	repo, db := newScheduleRepo(t)
	mustCreate(t, db, &model.Schedule{
		Title: "Podcast A", Date: "2025-01-06", StartTime: "09:00:00", EndTime: "11:00:00",
		Unit: "FIK",
	})
	mustCreate(t, db, &model.Schedule{
		Title: "Radio B", Date: "2025-01-10", StartTime: "13:00:00", EndTime: "15:00:00",
		Unit: "FEB", Status: model.ScheduleStatusCompleted,
	})

	got, total, err := repo.List(context.Background(), ScheduleFilter{Unit: "FIK"}, 1, 20)
	if err != nil {
		t.Fatalf("list by unit: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].Title != "Podcast A" {
		t.Errorf("unit filter: total=%d got=%+v", total, got)
	}

	_, total, err = repo.List(context.Background(), ScheduleFilter{Status: model.ScheduleStatusCompleted}, 1, 20)
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if total != 1 {
		t.Errorf("status filter total = %d, want 1", total)
	}

	_, total, err = repo.List(context.Background(), ScheduleFilter{StartDate: "2025-01-07"}, 1, 20)
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if total != 1 {
		t.Errorf("date filter total = %d, want 1", total)
	}

	_, total, err = repo.List(context.Background(), ScheduleFilter{Search: "Radio"}, 1, 20)
	if err != nil {
		t.Fatalf("list by search: %v", err)
	}
	if total != 1 {
		t.Errorf("search filter total = %d, want 1", total)
	}
}

func TestFindNextAt(t *testing.T) {
	repo, db := newScheduleRepo(t)
	mustCreate(t, db, &model.Schedule{
		Title: "Later", Date: "2025-01-06", StartTime: "14:00:00", EndTime: "16:00:00",
	})
	mustCreate(t, db, &model.Schedule{
		Title: "Sooner", Date: "2025-01-06", StartTime: "11:00:00", EndTime: "12:00:00",
	})

	next, err := repo.FindNextAt(context.Background(), "2025-01-06", "10:00:00")
	if err != nil {
		t.Fatalf("FindNextAt: %v", err)
	}
	if next == nil || next.Title != "Sooner" {
		t.Errorf("next = %+v, want Sooner", next)
	}

	next, err = repo.FindNextAt(context.Background(), "2025-01-06", "17:00:00")
	if err != nil {
		t.Fatalf("FindNextAt after all: %v", err)
	}
	if next != nil {
		t.Errorf("expected nil when nothing upcoming, got %+v", next)
	}
}
