package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"toll-system/internal/config"
	"toll-system/internal/logger"

	"github.com/go-redis/redis/v8"
)

// ErrKeyNotFound возвращается, когда ключа нет или он истёк
var ErrKeyNotFound = errors.New("key not found")

const pingTimeout = 3 * time.Second

// Client — обёртка go-redis для кеша сборов и счётчиков rate limit.
type Client struct {
	client *redis.Client
	log    *logger.Logger
}

// Connect открывает клиент и проверяет соединение PING.
func Connect(cfg *config.RedisConfig, log *logger.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}

	log.WithFields(map[string]interface{}{"addr": cfg.Addr(), "db": cfg.DB}).Info("Successfully connected to Redis")
	return &Client{client: rdb, log: log}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// keyError приводит redis.Nil к ErrKeyNotFound и добавляет к ошибке операцию и ключ.
func keyError(op, key string, err error) error {
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("key %s: %w", key, ErrKeyNotFound)
	}
	return fmt.Errorf("failed to %s key %s: %w", op, key, err)
}

// Set сохраняет value в JSON с TTL.
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return keyError("set", key, err)
	}
	return nil
}

// Get читает JSON по ключу в dest. Отсутствующий ключ даёт ErrKeyNotFound.
func (c *Client) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return keyError("get", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal value for key %s: %w", key, err)
	}
	c.log.WithField("key", key).Debug("Cache hit")
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return keyError("delete", key, err)
	}
	return nil
}

// IncrWindow увеличивает счётчик окна и возвращает его значение и остаток TTL.
// TTL выставляется, только если у ключа его ещё нет: окно не продлевается запросами.
func (c *Client) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, keyError("incr", key, err)
	}

	left := ttl.Val()
	if left <= 0 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return incr.Val(), 0, keyError("expire", key, err)
		}
		left = window
	}
	return incr.Val(), left, nil
}

// TTL возвращает остаток жизни ключа; отрицательные значения go-redis передаются как есть.
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, keyError("ttl", key, err)
	}
	return ttl, nil
}

// GetInt читает счётчик.
func (c *Client) GetInt(ctx context.Context, key string) (int64, error) {
	val, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		return 0, keyError("get", key, err)
	}
	return val, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GenerateKey склеивает префикс и идентификатор через двоеточие.
func GenerateKey(prefix, id string) string {
	return prefix + ":" + id
}

// DailyFeeKey возвращает ключ кеша дневного сбора ТС, например toll:ABC123:2024-12-17
func DailyFeeKey(plate, date string) string {
	return GenerateKey(KeyPrefixToll, plate+":"+date)
}

// Константы для префиксов ключей
const (
	KeyPrefixToll      = "toll"
	KeyPrefixRateLimit = "ratelimit"
)
