package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"PodSync/internal/config"
	"PodSync/internal/interfaces"
	"PodSync/internal/metrics"
	"PodSync/internal/model"
	"PodSync/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeSource struct {
	rows []interfaces.SheetRow
	err  error
}

func (f *fakeSource) FetchRows(ctx context.Context) ([]interfaces.SheetRow, error) {
	return f.rows, f.err
}

func validRow(name, id string) interfaces.SheetRow {
	return interfaces.SheetRow{
		"2/1/2025 08:15:00", // submitted
		name,
		id,
		"081234567890",
		"Fakultas Ilmu Komputer",
		"Podcast Recording",
		"Studio Podcast",
		"15 Januari 2025",
		"15 Januari 2025",
		"Januari",
		"9:00",
		"11:00",
		"2",
	}
}

func newImporterFixture(t *testing.T, src interfaces.SheetSource) (*Importer, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Schedule{}, &model.SheetEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	im := NewImporter(
		src,
		repository.NewSheetEntryRepository(db),
		repository.NewScheduleRepository(db),
		cfg,
		interfaces.FixedClock{T: time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)},
		metrics.New(prometheus.NewRegistry()),
		logger,
	)
	return im, db
}

func TestImporterCreatesEntryAndSchedule(t *testing.T) {
	src := &fakeSource{rows: []interfaces.SheetRow{validRow("Budi Santoso", "2110511001")}}
	im, db := newImporterFixture(t, src)

	stats, err := im.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Created != 1 || stats.Errors != 0 {
		t.Fatalf("stats = %+v, want 1 created", stats)
	}

	var entry model.SheetEntry
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.StartDate != "2025-01-15" || entry.StartTime != "09:00:00" || entry.EndTime != "11:00:00" {
		t.Errorf("entry dates = %s %s..%s", entry.StartDate, entry.StartTime, entry.EndTime)
	}
	if entry.Hours != 2 {
		t.Errorf("hours = %v, want 2", entry.Hours)
	}

	var sched model.Schedule
	if err := db.First(&sched).Error; err != nil {
		t.Fatalf("load schedule: %v", err)
	}
	if sched.Title != "Podcast Recording" || sched.Date != "2025-01-15" {
		t.Errorf("schedule = %+v", sched)
	}
	if sched.SheetEntryID == nil || *sched.SheetEntryID != entry.ID {
		t.Errorf("schedule not linked to entry: %v", sched.SheetEntryID)
	}
	if sched.Status != model.ScheduleStatusPending {
		t.Errorf("schedule status = %q, want pending", sched.Status)
	}
}

func TestImporterIsIdempotent(t *testing.T) {
	src := &fakeSource{rows: []interfaces.SheetRow{validRow("Budi Santoso", "2110511001")}}
	im, db := newImporterFixture(t, src)

	if _, err := im.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	stats, err := im.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats.Created != 0 || stats.Updated != 0 || stats.Skipped != 1 {
		t.Errorf("second run stats = %+v, want 0 created / 0 updated / 1 skipped", stats)
	}

	var entries, schedules int64
	db.Model(&model.SheetEntry{}).Count(&entries)
	db.Model(&model.Schedule{}).Count(&schedules)
	if entries != 1 || schedules != 1 {
		t.Errorf("counts = %d entries / %d schedules, want 1/1", entries, schedules)
	}
}

func TestImporterEditedRowUpdatesInPlace(t *testing.T) {
	src := &fakeSource{rows: []interfaces.SheetRow{validRow("Budi Santoso", "2110511001")}}
	im, db := newImporterFixture(t, src)

	if _, err := im.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// 借用人在表格里改了结束时间，提交时间与工号不变
	edited := validRow("Budi Santoso", "2110511001")
	edited[11] = "12:00"
	src.rows = []interfaces.SheetRow{edited}

	stats, err := im.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats.Created != 0 || stats.Updated != 1 || stats.Skipped != 0 {
		t.Errorf("second run stats = %+v, want 0 created / 1 updated / 0 skipped", stats)
	}

	var entries, schedules int64
	db.Model(&model.SheetEntry{}).Count(&entries)
	db.Model(&model.Schedule{}).Count(&schedules)
	if entries != 1 || schedules != 1 {
		t.Fatalf("counts = %d entries / %d schedules, want 1/1", entries, schedules)
	}

	var entry model.SheetEntry
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.Version != 2 {
		t.Errorf("version = %d, want 2", entry.Version)
	}
	if entry.EndTime != "12:00:00" {
		t.Errorf("entry end time = %q, want 12:00:00", entry.EndTime)
	}

	var sched model.Schedule
	if err := db.First(&sched).Error; err != nil {
		t.Fatalf("load schedule: %v", err)
	}
	if sched.EndTime != "12:00:00" {
		t.Errorf("schedule end time = %q, want 12:00:00", sched.EndTime)
	}
}

func TestImporterReimportDoesNotRegressStatus(t *testing.T) {
	src := &fakeSource{rows: []interfaces.SheetRow{validRow("Budi Santoso", "2110511001")}}
	im, db := newImporterFixture(t, src)

	if _, err := im.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// reconciler moved the booking to ongoing between imports
	if err := db.Model(&model.Schedule{}).Where("1=1").
		Update("status", model.ScheduleStatusOngoing).Error; err != nil {
		t.Fatalf("set ongoing: %v", err)
	}

	if _, err := im.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	var sched model.Schedule
	if err := db.First(&sched).Error; err != nil {
		t.Fatalf("load schedule: %v", err)
	}
	if sched.Status != model.ScheduleStatusOngoing {
		t.Errorf("status = %q, re-import must not reset ongoing", sched.Status)
	}
}

func TestImporterSkipsBadRows(t *testing.T) {
	bad := validRow("Siti Aminah", "2110511002")
	bad[7] = "not a date"
	short := interfaces.SheetRow{"only", "three", "cells"}

	src := &fakeSource{rows: []interfaces.SheetRow{
		validRow("Budi Santoso", "2110511001"),
		bad,
		short,
	}}
	im, db := newImporterFixture(t, src)

	stats, err := im.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Created != 1 || stats.Errors != 2 {
		t.Errorf("stats = %+v, want 1 created / 2 errors", stats)
	}

	var entries int64
	db.Model(&model.SheetEntry{}).Count(&entries)
	if entries != 1 {
		t.Errorf("entries = %d, want 1", entries)
	}
}

func TestImporterFetchFailureAbortsRun(t *testing.T) {
	src := &fakeSource{err: errors.New("quota exceeded")}
	im, _ := newImporterFixture(t, src)

	if _, err := im.Run(context.Background()); err == nil {
		t.Fatal("expected error when fetch fails")
	}

	status := im.Status(context.Background())
	if status.LastError == "" {
		t.Error("expected lastError recorded")
	}
}
