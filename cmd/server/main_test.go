package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"toll-system/internal/apperror"
	"toll-system/internal/calendar"
	"toll-system/internal/config"
	"toll-system/internal/database"
	"toll-system/internal/handlers"
	"toll-system/internal/logger"
	"toll-system/internal/models"
	"toll-system/internal/services"
	"toll-system/internal/toll"
)

type noopHealth struct{}

func (noopHealth) Health() error { return nil }

type noopRedisHealth struct{}

func (noopRedisHealth) Health(ctx context.Context) error { return nil }

type routeTollService struct{}

func (routeTollService) CalculateFees(ctx context.Context, req *models.DailyFeeRequest) (*models.CalculateFeesResponse, error) {
	return &models.CalculateFeesResponse{}, nil
}
func (routeTollService) RecordPassage(ctx context.Context, req *models.RecordPassageRequest) (*models.Passage, error) {
	return &models.Passage{}, nil
}
func (routeTollService) VehicleDailyFee(ctx context.Context, plate string, day time.Time) (*models.VehicleDailyFee, error) {
	return &models.VehicleDailyFee{Plate: plate}, nil
}
func (routeTollService) VehicleFees(ctx context.Context, plate string, from, to time.Time) (*models.VehicleFeesResponse, error) {
	return &models.VehicleFeesResponse{Plate: plate}, nil
}
func (routeTollService) Schedule() []toll.FeeWindow { return toll.DefaultSchedule().Windows() }

func newTestMux() *http.ServeMux {
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	limiter := services.NewRateLimiter(nil, log, &config.RateLimitConfig{})
	return setupRoutes(
		handlers.NewTollHandler(routeTollService{}, log),
		handlers.NewHealthHandler(noopHealth{}, noopRedisHealth{}, nil, func([]string) error { return nil }),
		handlers.NewRateLimitHandler(limiter, log, &config.RateLimitConfig{}),
		limiter,
		log,
	)
}

func TestSetupRoutes(t *testing.T) {
	mux := newTestMux()
	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health/liveness", "", http.StatusOK},
		{http.MethodPost, "/api/tolls/daily-fee", `{"vehicle_type":"car","passages":[]}`, http.StatusOK},
		{http.MethodGet, "/api/tolls/schedule", "", http.StatusOK},
		{http.MethodPost, "/api/passages", `{"plate":"ABC123","passed_at":"2024-12-17T07:30:00Z"}`, http.StatusCreated},
		{http.MethodGet, "/api/vehicles/ABC123/daily-fee?date=2024-12-17", "", http.StatusOK},
		{http.MethodGet, "/api/vehicles/ABC123/fees?from=2024-12-16&to=2024-12-20", "", http.StatusOK},
		{http.MethodGet, "/api/vehicles/ABC123/unknown", "", http.StatusNotFound},
		{http.MethodOptions, "/api/passages", "", http.StatusOK},
		{http.MethodGet, "/api/rate-limit/status", "", http.StatusOK},
	}

	for _, tc := range cases {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(tc.body)))
		if rr.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d (%s)", tc.method, tc.path, tc.want, rr.Code, rr.Body.String())
		}
	}
}

func TestCORSMiddlewareHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestMux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/liveness", nil))
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected CORS header")
	}
}

func TestBuildApplication_UnsupportedLocale(t *testing.T) {
	origLoad, origConnect := loadConfig, dbConnect
	defer func() { loadConfig, dbConnect = origLoad, origConnect }()

	loadConfig = func() *config.Config {
		cfg := config.Load()
		cfg.Toll.Locale = "de-DE"
		cfg.Logger.Level = "error"
		return cfg
	}
	dbConnect = func(cfg *config.DatabaseConfig, log *logger.Logger) (*database.DB, error) {
		t.Fatalf("database must not be touched without a calendar")
		return nil, nil
	}

	_, err := buildApplication()
	if !apperror.Is(err, apperror.KindConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if err.Error() != "no implementation for locale de-DE" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestBuildApplication_DBFailure(t *testing.T) {
	origLoad, origConnect := loadConfig, dbConnect
	defer func() { loadConfig, dbConnect = origLoad, origConnect }()

	loadConfig = func() *config.Config {
		cfg := config.Load()
		cfg.Logger.Level = "error"
		return cfg
	}
	dbConnect = func(cfg *config.DatabaseConfig, log *logger.Logger) (*database.DB, error) {
		return nil, errors.New("connection refused")
	}

	if _, err := buildApplication(); err == nil {
		t.Fatalf("expected db connect error")
	}
}

func TestBuildApplication_InvalidConfig(t *testing.T) {
	origLoad, origCalendar := loadConfig, holidayCalendar
	defer func() { loadConfig, holidayCalendar = origLoad, origCalendar }()

	loadConfig = func() *config.Config {
		cfg := config.Load()
		cfg.Logger.Level = "error"
		cfg.Kafka.Brokers = nil
		return cfg
	}
	holidayCalendar = func(string) (calendar.HolidayCalendar, error) {
		t.Fatalf("calendar must not be selected for invalid config")
		return nil, nil
	}

	if _, err := buildApplication(); !apperror.Is(err, apperror.KindConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestApplication_ReleaseInReverseOrder(t *testing.T) {
	var order []string
	app := &application{log: logger.New(&config.LoggerConfig{Level: "error", Format: "json"})}
	app.onShutdown(func() error { order = append(order, "db"); return nil })
	app.onShutdown(func() error { order = append(order, "redis"); return errors.New("already closed") })
	app.onShutdown(func() error { order = append(order, "kafka"); return nil })

	app.release()
	if len(order) != 3 || order[0] != "kafka" || order[2] != "db" {
		t.Fatalf("unexpected release order: %v", order)
	}
	app.release()
	if len(order) != 3 {
		t.Fatalf("release must run closers once")
	}
}
