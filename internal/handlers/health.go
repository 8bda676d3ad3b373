package handlers

import (
	"context"
	"net/http"
	"time"

	"toll-system/internal/kafka"
)

// KafkaChecker проверяет доступность брокеров
type KafkaChecker func(brokers []string) error

// HealthHandler представляет обработчик для проверки здоровья системы
type HealthHandler struct {
	db           DBHealth
	redisClient  RedisHealth
	kafkaBrokers []string
	checkKafka   KafkaChecker
}

// NewHealthHandler создает новый обработчик здоровья.
// Без checker используется kafka.CheckHealth.
func NewHealthHandler(db DBHealth, redisClient RedisHealth, kafkaBrokers []string, checker KafkaChecker) *HealthHandler {
	if checker == nil {
		checker = kafka.CheckHealth
	}
	return &HealthHandler{
		db:           db,
		redisClient:  redisClient,
		kafkaBrokers: kafkaBrokers,
		checkKafka:   checker,
	}
}

// HealthResponse — ответ /health
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
	Version  string            `json:"version"`
	Uptime   string            `json:"uptime"`
}

const (
	serviceVersion = "1.0.0"

	healthTimeout    = 5 * time.Second
	readinessTimeout = 2 * time.Second
)

var startTime = time.Now()

type componentCheck struct {
	name  string
	check func(ctx context.Context) error
}

func (h *HealthHandler) components() []componentCheck {
	return []componentCheck{
		{name: "database", check: func(context.Context) error { return h.db.Health() }},
		{name: "redis", check: h.redisClient.Health},
		{name: "kafka", check: func(context.Context) error { return h.checkKafka(h.kafkaBrokers) }},
	}
}

// Health опрашивает все компоненты и отдаёт 503, если хотя бы один недоступен.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:   "healthy",
		Services: make(map[string]string),
		Version:  serviceVersion,
		Uptime:   time.Since(startTime).String(),
	}
	for _, c := range h.components() {
		status := "healthy"
		if err := c.check(ctx); err != nil {
			status = "unhealthy: " + err.Error()
			resp.Status = "unhealthy"
		}
		resp.Services[c.name] = status
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSONResponse(w, code, resp)
}

// Readiness останавливается на первом неготовом компоненте.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	for _, c := range h.components() {
		if err := c.check(ctx); err != nil {
			writeErrorResponse(w, http.StatusServiceUnavailable, c.name+" not ready")
			return
		}
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Liveness не трогает зависимости.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{
		"status": "alive",
		"uptime": time.Since(startTime).String(),
	})
}
