package config

import (
	"os"
	"path/filepath"
	"testing"

	"toll-system/internal/apperror"
)

func TestEnvParsing(t *testing.T) {
	t.Setenv("TEST_INT", " 123 ")
	t.Setenv("TEST_INT_BAD", "abc")
	t.Setenv("TEST_BOOL", "YES")
	t.Setenv("TEST_BOOL_BAD", "maybe")
	t.Setenv("TEST_LIST", "kafka-1:9092, ,kafka-2:9092,")

	if v := getEnvAsInt("TEST_INT", 0); v != 123 {
		t.Fatalf("expected 123, got %d", v)
	}
	if v := getEnvAsInt("TEST_INT_BAD", 7); v != 7 {
		t.Fatalf("expected fallback 7, got %d", v)
	}
	if !getEnvAsBool("TEST_BOOL", false) || !getEnvAsBool("TEST_BOOL_BAD", true) {
		t.Fatalf("unexpected bool parsing")
	}
	list := getEnvAsList("TEST_LIST", "")
	if len(list) != 2 || list[0] != "kafka-1:9092" || list[1] != "kafka-2:9092" {
		t.Fatalf("unexpected list: %v", list)
	}
	if v := getEnv("TEST_UNSET_KEY", "fallback"); v != "fallback" {
		t.Fatalf("expected fallback, got %s", v)
	}
}

func TestLoad_TollDefaults(t *testing.T) {
	_ = os.Unsetenv("TOLL_LOCALE")
	_ = os.Unsetenv("TOLL_MAX_RANGE_DAYS")
	cfg := Load()

	if cfg.Toll.Locale != "sv-SE" || cfg.Toll.CacheTTLMinutes != 60 || cfg.Toll.MaxRangeDays != 31 {
		t.Fatalf("unexpected toll defaults: %+v", cfg.Toll)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestConfig_Addresses(t *testing.T) {
	cfg := Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: "8080", ReadTimeout: 5},
		Redis:    RedisConfig{Host: "cache", Port: "6379"},
		Database: DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "tolls", SSLMode: "disable"},
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" || cfg.Redis.Addr() != "cache:6379" {
		t.Fatalf("unexpected addresses: %s %s", cfg.Server.Addr(), cfg.Redis.Addr())
	}
	if cfg.Server.ReadTimeoutDuration().Seconds() != 5 {
		t.Fatalf("unexpected read timeout: %v", cfg.Server.ReadTimeoutDuration())
	}
	want := "host=db port=5432 user=u password=p dbname=tolls sslmode=disable"
	if dsn := cfg.Database.DSN(); dsn != want {
		t.Fatalf("unexpected dsn: %s", dsn)
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := map[string]func(*Config){
		"no brokers":   func(c *Config) { c.Kafka.Brokers = nil },
		"no topic":     func(c *Config) { c.Kafka.Topics.Tolls = "" },
		"range":        func(c *Config) { c.Toll.MaxRangeDays = 0 },
		"rate limit":   func(c *Config) { c.RateLimit.Enabled, c.RateLimit.Requests = true, 0 },
		"no http port": func(c *Config) { c.Server.Port = "" },
	}
	for name, mutate := range cases {
		cfg := Load()
		mutate(cfg)
		if err := cfg.Validate(); !apperror.Is(err, apperror.KindConfiguration) {
			t.Fatalf("%s: expected configuration error, got %v", name, err)
		}
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TOLL_LOCALE_TEST=xx-XX\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("TOLL_LOCALE_TEST") })

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"), path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if v := os.Getenv("TOLL_LOCALE_TEST"); v != "xx-XX" {
		t.Fatalf("expected value from .env, got %q", v)
	}
}
