package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"toll-system/internal/config"
	"toll-system/internal/logger"
	"toll-system/internal/redis"
)

// RateDecision — результат проверки лимита для одного запроса.
type RateDecision struct {
	Allowed   bool
	Remaining int64
	ResetAt   time.Time
}

// RateUsage — состояние окна клиента без учёта нового запроса.
type RateUsage struct {
	Used      int64
	Remaining int64
	ResetAt   *time.Time
}

// RateLimiter ограничивает число запросов к API в фиксированном окне на ключ (IP клиента).
// Счётчики живут в Redis, поэтому лимит общий для всех экземпляров сервиса.
type RateLimiter struct {
	redis   rateRedis
	log     *logger.Logger
	enabled bool
	limit   int64
	window  time.Duration
	prefix  string
}

type rateRedis interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

// NewRateLimiter создаёт rate limiter. Без Redis или при выключенной настройке
// лимитер пропускает все запросы.
func NewRateLimiter(redisClient *redis.Client, log *logger.Logger, cfg *config.RateLimitConfig) *RateLimiter {
	if redisClient == nil || cfg == nil || !cfg.Enabled || cfg.Requests <= 0 || cfg.WindowSeconds <= 0 {
		return &RateLimiter{enabled: false}
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = redis.KeyPrefixRateLimit
	}

	return &RateLimiter{
		redis:   redisClient,
		log:     log,
		enabled: true,
		limit:   int64(cfg.Requests),
		window:  time.Duration(cfg.WindowSeconds) * time.Second,
		prefix:  prefix,
	}
}

// Allow учитывает запрос и сообщает, укладывается ли он в лимит.
func (r *RateLimiter) Allow(ctx context.Context, key string) (RateDecision, error) {
	if !r.enabled {
		return RateDecision{Allowed: true, Remaining: r.limit}, nil
	}

	count, ttl, err := r.redis.IncrWindow(ctx, r.makeKey(key), r.window)
	if err != nil {
		return RateDecision{}, fmt.Errorf("rate limiter incr failed: %w", err)
	}

	return RateDecision{
		Allowed:   count <= r.limit,
		Remaining: r.remaining(count),
		ResetAt:   time.Now().Add(ttl),
	}, nil
}

// Usage возвращает текущее состояние окна клиента.
func (r *RateLimiter) Usage(ctx context.Context, key string) (RateUsage, error) {
	if !r.enabled {
		return RateUsage{Remaining: r.limit}, nil
	}

	redisKey := r.makeKey(key)
	count, err := r.redis.GetInt(ctx, redisKey)
	if errors.Is(err, redis.ErrKeyNotFound) {
		// окно ещё не открыто
		return RateUsage{Remaining: r.limit}, nil
	}
	if err != nil {
		return RateUsage{}, fmt.Errorf("rate limiter usage failed: %w", err)
	}

	usage := RateUsage{Used: count, Remaining: r.remaining(count)}
	ttl, err := r.redis.TTL(ctx, redisKey)
	if err != nil {
		r.log.WithError(err).WithField("key", redisKey).Warn("Failed to get rate limit ttl")
		return usage, nil
	}
	if ttl > 0 {
		resetAt := time.Now().Add(ttl)
		usage.ResetAt = &resetAt
	}
	return usage, nil
}

func (r *RateLimiter) remaining(count int64) int64 {
	if count >= r.limit {
		return 0
	}
	return r.limit - count
}

// Двоеточия из IPv6 не должны дробить пространство ключей Redis.
func (r *RateLimiter) makeKey(key string) string {
	return redis.GenerateKey(r.prefix, strings.ReplaceAll(key, ":", "_"))
}

// Limit возвращает лимит для текущего окна.
func (r *RateLimiter) Limit() int64 {
	return r.limit
}

// Enabled сообщает, включён ли rate limiting.
func (r *RateLimiter) Enabled() bool {
	return r.enabled
}

// ExtractClientIP получает IP клиента: X-Real-IP, затем первый адрес X-Forwarded-For,
// затем RemoteAddr.
func ExtractClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
