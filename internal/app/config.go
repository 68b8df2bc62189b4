package app

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Config описывает настройки запуска приложения. Все значения читаются из
// окружения с префиксом SHOPCORE_; пустой PostgresDSN переключает сервис на
// хранилище в памяти, пустые RedisAddr и KafkaBrokers отключают кэш отчётов
// и публикацию событий соответственно.
type Config struct {
	HTTPAddr     string
	MetricsAddr  string
	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers []string
	LogLevel     string
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних
// зависимостей.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
		LogLevel:    "info",
	}
}

// LoadConfig читает конфигурацию из переменных окружения.
func LoadConfig() Config {
	return Config{
		HTTPAddr:     getenv("SHOPCORE_HTTP_ADDR", ":8080"),
		MetricsAddr:  getenv("SHOPCORE_METRICS_ADDR", ":9090"),
		PostgresDSN:  os.Getenv("SHOPCORE_POSTGRES_DSN"),
		RedisAddr:    os.Getenv("SHOPCORE_REDIS_ADDR"),
		KafkaBrokers: splitCSV(os.Getenv("SHOPCORE_KAFKA_BROKERS")),
		LogLevel:     getenv("SHOPCORE_LOG_LEVEL", "info"),
	}
}

// SetupLogger настраивает глобальный логгер под уровень из конфигурации.
func SetupLogger(cfg Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, falling back to info")
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
