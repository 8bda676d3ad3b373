package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"toll-system/internal/config"
	"toll-system/internal/logger"
	"toll-system/internal/services"
)

// MiddlewareLimiter описывает контракт для rate limiter.
type MiddlewareLimiter interface {
	Allow(ctx context.Context, key string) (services.RateDecision, error)
	Enabled() bool
	Limit() int64
}

// RateLimitStatusProvider расширяет интерфейс для эндпоинта статуса.
type RateLimitStatusProvider interface {
	MiddlewareLimiter
	Usage(ctx context.Context, key string) (services.RateUsage, error)
}

// RateLimitStatus — состояние лимита клиента в текущем окне.
type RateLimitStatus struct {
	Enabled       bool       `json:"enabled"`
	Limit         int        `json:"limit,omitempty"`
	WindowSeconds int        `json:"window_seconds,omitempty"`
	Used          int64      `json:"used"`
	Remaining     int64      `json:"remaining"`
	Key           string     `json:"key,omitempty"`
	ResetAt       *time.Time `json:"reset_at,omitempty"`
}

// RateLimitHandler отвечает за статус лимита.
type RateLimitHandler struct {
	limiter RateLimitStatusProvider
	log     *logger.Logger
	cfg     *config.RateLimitConfig
}

// NewRateLimitHandler создает новый RateLimitHandler.
func NewRateLimitHandler(limiter RateLimitStatusProvider, log *logger.Logger, cfg *config.RateLimitConfig) *RateLimitHandler {
	return &RateLimitHandler{
		limiter: limiter,
		log:     log,
		cfg:     cfg,
	}
}

// Status возвращает текущие значения лимита для клиента.
func (h *RateLimitHandler) Status(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	if h.limiter == nil || h.cfg == nil || !h.cfg.Enabled || !h.limiter.Enabled() {
		writeJSONResponse(w, http.StatusOK, RateLimitStatus{Enabled: false})
		return
	}

	key := services.ExtractClientIP(r)
	usage, err := h.limiter.Usage(r.Context(), key)
	if err != nil {
		h.log.WithError(err).Error("Failed to fetch rate limit usage")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to fetch rate limit usage")
		return
	}

	writeJSONResponse(w, http.StatusOK, RateLimitStatus{
		Enabled:       true,
		Limit:         h.cfg.Requests,
		WindowSeconds: h.cfg.WindowSeconds,
		Used:          usage.Used,
		Remaining:     usage.Remaining,
		Key:           key,
		ResetAt:       usage.ResetAt,
	})
}

// RateLimitMiddleware применяет rate limiting к хендлеру.
func RateLimitMiddleware(limiter MiddlewareLimiter, log *logger.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if limiter == nil || !limiter.Enabled() {
			next(w, r)
			return
		}

		decision, err := limiter.Allow(r.Context(), services.ExtractClientIP(r))
		if err != nil {
			log.WithError(err).Error("Rate limiter failed")
			writeErrorResponse(w, http.StatusInternalServerError, "Rate limiter error")
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limiter.Limit(), 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		if !decision.ResetAt.IsZero() {
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		}

		if !decision.Allowed {
			if wait := time.Until(decision.ResetAt); wait > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
			}
			writeErrorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next(w, r)
	}
}
