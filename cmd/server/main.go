package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"toll-system/internal/calendar"
	"toll-system/internal/config"
	"toll-system/internal/database"
	"toll-system/internal/handlers"
	"toll-system/internal/kafka"
	"toll-system/internal/logger"
	"toll-system/internal/models"
	"toll-system/internal/redis"
	"toll-system/internal/services"
	"toll-system/internal/toll"
)

const (
	migrateTimeout  = 10 * time.Second
	shutdownTimeout = 30 * time.Second
)

// Точки подмены внешних зависимостей в тестах.
var (
	loadConfig       = config.Load
	newLogger        = logger.New
	holidayCalendar  = calendar.ForLocale
	dbConnect        = database.Connect
	redisConnect     = redis.Connect
	newKafkaProducer = kafka.NewProducer
	newKafkaConsumer = kafka.NewConsumer
	kafkaHealthCheck = kafka.CheckHealth
)

type application struct {
	log    *logger.Logger
	server *http.Server

	// closers освобождают ресурсы в порядке, обратном открытию
	closers []func() error
}

func (a *application) onShutdown(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *application) release() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.log != nil {
			a.log.WithError(err).Warn("Failed to release resource")
		}
	}
	a.closers = nil
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	app, err := buildApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build app: %v\n", err)
		os.Exit(1)
	}

	go func() {
		app.log.WithField("address", app.server.Addr).Info("HTTP server starting")
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	app.log.WithField("signal", sig.String()).Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(ctx); err != nil {
		app.log.WithError(err).Error("Server forced to shutdown")
	}
	app.release()
	app.log.Info("Server exited")
}

// buildApplication собирает сервис. Календарь праздников выбирается до любых
// подключений: при неподдерживаемой локали ошибка возвращается без изменений.
func buildApplication() (app *application, err error) {
	cfg := loadConfig()
	log := newLogger(&cfg.Logger)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cal, err := holidayCalendar(cfg.Toll.Locale)
	if err != nil {
		log.WithField("supported", calendar.SupportedLocales()).WithError(err).Error("Holiday calendar is not available")
		return nil, err
	}

	app = &application{log: log}
	defer func() {
		if err != nil {
			app.release()
			app = nil
		}
	}()

	db, err := dbConnect(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	app.onShutdown(db.Close)

	migrateCtx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()
	if err := db.Migrate(migrateCtx); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}

	redisClient, err := redisConnect(&cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	app.onShutdown(redisClient.Close)

	producer, err := newKafkaProducer(&cfg.Kafka, log)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	app.onShutdown(producer.Close)

	consumer, err := newKafkaConsumer(&cfg.Kafka, log)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	app.onShutdown(consumer.Stop)

	aggregator := toll.NewAggregator(toll.DefaultSchedule(), cal)
	passageService := services.NewPassageService(db, log)
	tollService := services.NewTollService(aggregator, passageService, redisClient, producer, log, &cfg.Toll)
	rateLimiter := services.NewRateLimiter(redisClient, log, &cfg.RateLimit)

	consumer.RegisterHandler(models.EventTypePassageRecorded, tollService.IngestPassage)
	if err := consumer.Start(); err != nil {
		return nil, fmt.Errorf("kafka consumer start: %w", err)
	}

	mux := setupRoutes(
		handlers.NewTollHandler(tollService, log),
		handlers.NewHealthHandler(db, redisClient, cfg.Kafka.Brokers, kafkaHealthCheck),
		handlers.NewRateLimitHandler(rateLimiter, log, &cfg.RateLimit),
		rateLimiter,
		log,
	)
	app.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	log.WithFields(map[string]interface{}{
		"locale":     cfg.Toll.Locale,
		"rate_limit": cfg.RateLimit.Enabled,
	}).Info("Toll calculator configured")

	return app, nil
}

// setupRoutes регистрирует маршруты. /health* работают без rate limit.
func setupRoutes(tollHandler *handlers.TollHandler, healthHandler *handlers.HealthHandler, rateLimitHandler *handlers.RateLimitHandler, rateLimiter handlers.MiddlewareLimiter, log *logger.Logger) *http.ServeMux {
	public := map[string]http.HandlerFunc{
		"/health":           healthHandler.Health,
		"/health/readiness": healthHandler.Readiness,
		"/health/liveness":  healthHandler.Liveness,
	}
	api := map[string]http.HandlerFunc{
		"/api/tolls/daily-fee":   tollHandler.CalculateDailyFee,
		"/api/tolls/schedule":    tollHandler.GetSchedule,
		"/api/passages":          tollHandler.RecordPassage,
		"/api/vehicles/":         vehicleRoutes(tollHandler),
		"/api/rate-limit/status": rateLimitHandler.Status,
	}

	mux := http.NewServeMux()
	for pattern, h := range public {
		mux.HandleFunc(pattern, corsMiddleware(h))
	}
	for pattern, h := range api {
		mux.HandleFunc(pattern, corsMiddleware(handlers.RateLimitMiddleware(rateLimiter, log, h)))
	}
	return mux
}

// vehicleRoutes разбирает /api/vehicles/{plate}/daily-fee и /api/vehicles/{plate}/fees.
func vehicleRoutes(handler *handlers.TollHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSuffix(r.URL.Path, "/")
		switch {
		case strings.HasSuffix(path, "/daily-fee"):
			handler.GetVehicleDailyFee(w, r)
		case strings.HasSuffix(path, "/fees"):
			handler.GetVehicleFees(w, r)
		default:
			writeErrorResponse(w, http.StatusNotFound, "Route not found")
		}
	}
}

func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   http.StatusText(statusCode),
		"message": message,
	})
}
