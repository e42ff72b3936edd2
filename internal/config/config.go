package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App        AppConfig
	Telegram   TelegramConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Session    SessionConfig
	Resolution ResolutionConfig
	Logger     LoggerConfig
	Cities     []string
}

// AppConfig controls server level behavior for the HTTP surface.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string
}

// TelegramConfig holds transport credentials and the fixed administrator
// identity compared against every admin-gated entry point.
type TelegramConfig struct {
	Token              string
	AdminChatID        int64
	WebhookEnabled     bool
	PollTimeoutSeconds int
}

// PostgresConfig holds DB connection values. An empty DSN switches the
// ticket store to the in-memory implementation.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SessionConfig selects the conversation state backend.
type SessionConfig struct {
	Backend string // "memory" or "redis"
}

// ResolutionConfig controls the deferred resolution check.
type ResolutionConfig struct {
	CheckDelay time.Duration
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// defaultCities is the fixed suggestion list used by the intake flow when
// CITY_LIST does not override it.
var defaultCities = []string{
	"Москва", "Санкт-Петербург", "Новосибирск", "Екатеринбург",
	"Казань", "Нижний Новгород", "Челябинск", "Омск",
	"Самара", "Ростов-на-Дону", "Уфа", "Красноярск",
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	adminChatID, err := strconv.ParseInt(getEnv("TELEGRAM_ADMIN_CHAT_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_CHAT_ID: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sessionBackend := getEnv("SESSION_BACKEND", "memory")
	if sessionBackend != "memory" && sessionBackend != "redis" {
		return nil, fmt.Errorf("invalid SESSION_BACKEND: %q", sessionBackend)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "support-bot"),
			Env:     getEnv("APP_ENV", "development"),
			Host:    getEnv("APP_HOST", "0.0.0.0"),
			Port:    getEnv("APP_PORT", "8080"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Telegram: TelegramConfig{
			Token:              os.Getenv("TELEGRAM_BOT_TOKEN"),
			AdminChatID:        adminChatID,
			WebhookEnabled:     getEnvAsBool("TELEGRAM_WEBHOOK_ENABLED", false),
			PollTimeoutSeconds: getEnvAsInt("TELEGRAM_POLL_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Session: SessionConfig{
			Backend: sessionBackend,
		},
		Resolution: ResolutionConfig{
			CheckDelay: time.Duration(getEnvAsInt("RESOLUTION_CHECK_DELAY_MINUTES", 10)) * time.Minute,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Cities: cityList(os.Getenv("CITY_LIST")),
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

func cityList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return append([]string(nil), defaultCities...)
	}
	parts := strings.Split(raw, ",")
	cities := make([]string, 0, len(parts))
	for _, part := range parts {
		if city := strings.TrimSpace(part); city != "" {
			cities = append(cities, city)
		}
	}
	if len(cities) == 0 {
		return append([]string(nil), defaultCities...)
	}
	return cities
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
