package api

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Apurer/orders-api/internal/domains/orders/adapters/cache/redis"
	"github.com/Apurer/orders-api/internal/domains/orders/adapters/messaging/kafka"
	orderapp "github.com/Apurer/orders-api/internal/domains/orders/application"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port        string
	PostgresDSN string

	CustomerServiceURL      string
	CustomerServiceUser     string
	CustomerServicePassword string
	CustomerServiceTimeout  time.Duration

	RedisAddr        string
	CustomerCacheTTL time.Duration

	KafkaBrokers    []string
	KafkaOrderTopic string

	ShortTimeout time.Duration
	LongTimeout  time.Duration

	AllowedOrigins []string

	AuthDisabled  bool
	AdminUser     string
	AdminPassword string
}

// LoadConfig reads an optional .env file and the environment, applies defaults,
// and validates basic constraints.
func LoadConfig() (Config, error) {
	return loadConfig(".env")
}

func loadConfig(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			if err := godotenv.Load(file); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", file, err)
			}
		}
	}

	cfg := Config{
		Port:                    envDefault("PORT", "8080"),
		PostgresDSN:             strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		CustomerServiceURL:      customerServiceURL(),
		CustomerServiceUser:     envDefault("CUSTOMER_SERVICE_USER", "admin"),
		CustomerServicePassword: envDefault("CUSTOMER_SERVICE_PASSWORD", "p"),
		RedisAddr:               strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		KafkaBrokers:            splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic:         envDefault("KAFKA_ORDER_TOPIC", kafka.DefaultTopic),
		AllowedOrigins:          splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		AuthDisabled:            isTruthy(os.Getenv("ORDERS_AUTH_DISABLED")),
		AdminUser:               envDefault("ORDERS_ADMIN_USER", "admin"),
		AdminPassword:           envDefault("ORDERS_ADMIN_PASSWORD", "p"),
	}

	durations := []struct {
		key      string
		fallback time.Duration
		target   *time.Duration
	}{
		{"CUSTOMER_SERVICE_TIMEOUT", 5 * time.Second, &cfg.CustomerServiceTimeout},
		{"CUSTOMER_CACHE_TTL", redis.DefaultTTL, &cfg.CustomerCacheTTL},
		{"ORDERS_TIMEOUT_SHORT", orderapp.DefaultShortTimeout, &cfg.ShortTimeout},
		{"ORDERS_TIMEOUT_LONG", orderapp.DefaultLongTimeout, &cfg.LongTimeout},
	}
	for _, d := range durations {
		value, err := envDuration(d.key, d.fallback)
		if err != nil {
			return Config{}, err
		}
		*d.target = value
	}
	return cfg, nil
}

func customerServiceURL() string {
	if url := strings.TrimSpace(os.Getenv("CUSTOMER_SERVICE_URL")); url != "" {
		return url
	}
	host := envDefault("CUSTOMER_SERVICE_HOST", "localhost")
	port := envDefault("CUSTOMER_SERVICE_PORT", "8080")
	return "http://" + net.JoinHostPort(host, port)
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration such as 500ms", key)
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
