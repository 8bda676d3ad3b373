package config

import (
	"errors"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"toll-system/internal/apperror"

	"github.com/joho/godotenv"
)

// Config — настройки сервиса сборов, собранные из окружения.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Kafka     KafkaConfig     `json:"kafka"`
	Logger    LoggerConfig    `json:"logger"`
	Toll      TollConfig      `json:"toll"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

// ServerConfig — HTTP сервер; таймауты в секундах.
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
}

func (s ServerConfig) Addr() string { return net.JoinHostPort(s.Host, s.Port) }

func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

func (s ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// DSN собирает строку подключения в формате lib/pq.
func (d DatabaseConfig) DSN() string {
	parts := []string{
		"host=" + d.Host,
		"port=" + d.Port,
		"user=" + d.User,
		"password=" + d.Password,
		"dbname=" + d.DBName,
		"sslmode=" + d.SSLMode,
	}
	return strings.Join(parts, " ")
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

func (r RedisConfig) Addr() string { return net.JoinHostPort(r.Host, r.Port) }

type KafkaConfig struct {
	Brokers []string `json:"brokers"`
	GroupID string   `json:"group_id"`
	Topics  Topics   `json:"topics"`
}

type Topics struct {
	Passages string `json:"passages"` // проезды от рамок
	Tolls    string `json:"tolls"`    // рассчитанные сборы
}

type LoggerConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	File   string `json:"file"`
}

// TollConfig — локаль календаря праздников и параметры выдачи сборов.
type TollConfig struct {
	Locale          string `json:"locale"`
	CacheTTLMinutes int    `json:"cache_ttl_minutes"`
	MaxRangeDays    int    `json:"max_range_days"`
}

type RateLimitConfig struct {
	Enabled       bool   `json:"enabled"`
	Requests      int    `json:"requests"`
	WindowSeconds int    `json:"window_seconds"`
	KeyPrefix     string `json:"key_prefix"`
}

// LoadDotEnv подгружает переменные из .env файлов.
// Отсутствие файла не ошибка, уже заданные переменные не перезаписываются.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		err := godotenv.Load(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Load читает конфигурацию из окружения. Некорректные числа и флаги
// заменяются значениями по умолчанию.
func Load() *Config {
	cfg := &Config{}

	cfg.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "0.0.0.0"),
		Port:         getEnv("SERVER_PORT", "8080"),
		ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 10),
	}
	cfg.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "toll_user"),
		Password: getEnv("DB_PASSWORD", "toll_pass"),
		DBName:   getEnv("DB_NAME", "toll_system"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
	cfg.Kafka = KafkaConfig{
		Brokers: getEnvAsList("KAFKA_BROKERS", "localhost:9092"),
		GroupID: getEnv("KAFKA_GROUP_ID", "toll-service"),
		Topics: Topics{
			Passages: getEnv("KAFKA_TOPIC_PASSAGES", "passages"),
			Tolls:    getEnv("KAFKA_TOPIC_TOLLS", "tolls"),
		},
	}
	cfg.Logger = LoggerConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
		File:   getEnv("LOG_FILE", ""),
	}
	cfg.Toll = TollConfig{
		Locale:          getEnv("TOLL_LOCALE", "sv-SE"),
		CacheTTLMinutes: getEnvAsInt("TOLL_CACHE_TTL_MINUTES", 60),
		MaxRangeDays:    getEnvAsInt("TOLL_MAX_RANGE_DAYS", 31),
	}
	cfg.RateLimit = RateLimitConfig{
		Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", false),
		Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		KeyPrefix:     getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit"),
	}

	return cfg
}

// Validate проверяет настройки, без которых сервис не стартует.
// Возвращает ошибку вида apperror.KindConfiguration.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port == "":
		return apperror.Configuration("SERVER_PORT must not be empty", nil)
	case len(c.Kafka.Brokers) == 0:
		return apperror.Configuration("KAFKA_BROKERS must list at least one broker", nil)
	case c.Kafka.Topics.Passages == "" || c.Kafka.Topics.Tolls == "":
		return apperror.Configuration("kafka topics must not be empty", nil)
	case c.Toll.MaxRangeDays <= 0:
		return apperror.Configurationf("TOLL_MAX_RANGE_DAYS must be positive, got %d", c.Toll.MaxRangeDays)
	case c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.WindowSeconds <= 0):
		return apperror.Configuration("rate limit requires positive RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW_SECONDS", nil)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(strings.TrimSpace(getEnv(key, "")))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(getEnv(key, ""))) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}

// getEnvAsList разбирает список через запятую, пустые элементы отбрасываются.
func getEnvAsList(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
