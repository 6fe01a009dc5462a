package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Terminal TerminalConfig
	Advisor  AdvisorConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Observ   ObservabilityConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type TerminalConfig struct {
	TerminalID     string
	OperatorID     string
	CurrencySymbol string
	StoreName      string
	StoreAddress   string
	CatalogFile    string
}

type AdvisorConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type DatabaseConfig struct {
	URL string
}

// Enabled reports whether the sales journal should be opened
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	IdempotencyTTL time.Duration
}

// Enabled reports whether the checkout idempotency cache should be used
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type KafkaConfig struct {
	Brokers       []string
	TopicPOS      string
	ConsumerGroup string
}

// Enabled reports whether terminal events should be published
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type ObservabilityConfig struct {
	JaegerEndpoint string
	PrometheusPort string
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	idempotencyTTL, _ := strconv.Atoi(getEnv("CHECKOUT_IDEMPOTENCY_TTL_SECONDS", "600"))
	advisorTimeout, _ := strconv.Atoi(getEnv("ADVISOR_TIMEOUT_SECONDS", "20"))

	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "8080"),
			Env:      getEnv("ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", ""),
		},
		Terminal: TerminalConfig{
			TerminalID:     getEnv("TERMINAL_ID", "Retail Terminal #01"),
			OperatorID:     getEnv("OPERATOR_ID", "User-1"),
			CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₵"),
			StoreName:      getEnv("STORE_NAME", "SWIFTPOS RETAIL"),
			StoreAddress:   getEnv("STORE_ADDRESS", "123 Market Lane"),
			CatalogFile:    getEnv("CATALOG_FILE", ""),
		},
		Advisor: AdvisorConfig{
			APIKey:  getEnv("API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			BaseURL: getEnv("GEMINI_BASE_URL", ""),
			Timeout: time.Duration(advisorTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", ""),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             redisDB,
			IdempotencyTTL: time.Duration(idempotencyTTL) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(getEnv("KAFKA_BROKERS", "")),
			TopicPOS:      getEnv("KAFKA_TOPIC_POS_EVENTS", "pos-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "swiftpos-journal-group"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
			PrometheusPort: getEnv("PROMETHEUS_PORT", "9090"),
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, terminal=%s", cfg.Server.Env, cfg.Server.Port, cfg.Terminal.TerminalID)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
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
