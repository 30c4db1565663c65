package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"PodSync/internal/config"
	"PodSync/internal/interfaces"
	"PodSync/internal/metrics"
	"PodSync/internal/model"
	"PodSync/internal/repository"
	"PodSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Schedule{}, &model.BroadcastStatus{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	clock := interfaces.FixedClock{T: time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)}
	loc := cfg.Timezone.Location()

	scheduleRepo := repository.NewScheduleRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	statusService := service.NewStatusService(statusRepo, scheduleRepo, clock, loc, logger)
	reconciler := service.NewReconciler(scheduleRepo, statusRepo, cfg, clock, metrics.New(prometheus.NewRegistry()), logger)

	r := gin.New()
	h := NewStatusHandler(statusService, reconciler, logger)
	r.GET("/api/status", h.GetStatus)
	r.POST("/api/status", h.SetStatus)
	r.GET("/api/status/history", h.GetHistory)
	r.GET("/api/status/scheduler", h.GetScheduler)
	return r, db
}

func TestGetStatusEmptyLogSynthesizesOffAir(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", w.Code)
	}
	var body struct {
		IsOnAir       bool   `json:"isOnAir"`
		StatusMessage string `json:"statusMessage"`
		LocalTime     string `json:"localTime"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.IsOnAir {
		t.Error("empty log must read as off-air")
	}
	if body.StatusMessage != "Off Air" {
		t.Errorf("message = %q, want Off Air", body.StatusMessage)
	}
	// 09:30 UTC = 16:30 WIB
	if body.LocalTime != "2025-01-06 16:30:00" {
		t.Errorf("localTime = %q, want 2025-01-06 16:30:00", body.LocalTime)
	}
}

func TestSetStatusValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	// missing isOnAir
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/status", strings.NewReader(`{"statusMessage":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing isOnAir: code = %d, want 400", w.Code)
	}

	// malformed body
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/status", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: code = %d, want 400", w.Code)
	}
}

func TestSetStatusPersistsEvent(t *testing.T) {
	r, db := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/status",
		strings.NewReader(`{"isOnAir":true,"statusMessage":"Live now","updatedBy":"admin"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", w.Code, w.Body.String())
	}

	var ev model.BroadcastStatus
	if err := db.First(&ev).Error; err != nil {
		t.Fatalf("load event: %v", err)
	}
	if !ev.IsOnAir || ev.UpdatedBy != "admin" || ev.SourceKind != model.SourceKindManual {
		t.Errorf("persisted event = %+v", ev)
	}

	// false must survive binding (pointer field, not zero-value swallowed)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/status", strings.NewReader(`{"isOnAir":false}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("isOnAir=false: code = %d", w.Code)
	}
}

func TestGetSchedulerReportsStopped(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/status/scheduler", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", w.Code)
	}
	var body struct {
		Running              bool `json:"running"`
		CheckIntervalSeconds int  `json:"checkIntervalSeconds"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Running {
		t.Error("scheduler should not be running before Start")
	}
	if body.CheckIntervalSeconds != 30 {
		t.Errorf("interval = %d, want 30", body.CheckIntervalSeconds)
	}
}
