package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSessionTTL is the login session lifetime when SESSION_TTL is unset.
const DefaultSessionTTL = 30 * time.Minute

type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	JWTSecret  string
	SessionTTL time.Duration

	Mail  MailConfig
	Redis RedisConfig

	RabbitMQURL   string
	SweepInterval time.Duration
	Timezone      *time.Location

	CORSOrigin string
	LogLevel   string
	LogFormat  string
	RateLimit  RateLimitConfig

	// ConfigFile points at an optional YAML file with seed data.
	ConfigFile string
}

type MailConfig struct {
	Server        string
	Port          int
	Username      string
	Password      string
	DefaultSender string
}

// Enabled reports whether an SMTP relay is configured.
func (m MailConfig) Enabled() bool {
	return m.Server != "" && m.Username != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled  bool
	Capacity int
	Refill   time.Duration
}

// Load -> membaca .env (jika ada) lalu environment variable dengan default
func Load() (*Config, error) {
	// .env is optional, real environment always wins
	_ = godotenv.Load()

	loc := time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, err
		}
		loc = l
	}

	cfg := &Config{
		Port:     getEnv("APP_PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		DBDriver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:    getEnv("DB_DSN", "restobook.db"),

		JWTSecret:  getEnv("JWT_SECRET", "RestoBookDevSecret"),
		SessionTTL: getDuration("SESSION_TTL", DefaultSessionTTL),

		Mail: MailConfig{
			Server:        getEnv("MAIL_SERVER", ""),
			Port:          getInt("MAIL_PORT", 587),
			Username:      getEnv("MAIL_USERNAME", ""),
			Password:      getEnv("MAIL_PASSWORD", ""),
			DefaultSender: getEnv("MAIL_DEFAULT_SENDER", getEnv("MAIL_USERNAME", "")),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},

		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		SweepInterval: getDuration("SWEEP_INTERVAL", time.Minute),
		Timezone:      loc,

		CORSOrigin: getEnv("CORS_ORIGIN", "http://127.0.0.1:5500"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
		RateLimit: RateLimitConfig{
			Enabled:  getBool("RATE_LIMIT_ENABLED", true),
			Capacity: getInt("RATE_LIMIT_CAPACITY", 50),
			Refill:   getDuration("RATE_LIMIT_REFILL", time.Second),
		},

		ConfigFile: getEnv("CONFIG_FILE", ""),
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// getDuration accepts Go durations ("90s") or a bare number of seconds.
func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
