package inventory

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tair/stock-ledger/internal/inventory/monitor"
	"github.com/tair/stock-ledger/internal/inventory/usecase/command"
	"github.com/tair/stock-ledger/pkg/database"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds everything needed to assemble the ledger
type Config struct {
	StoreDriver string
	Database    database.Config
	// AutoMigrate runs gorm migrations when the store opens
	AutoMigrate bool

	Retry   command.RetryConfig
	Monitor monitor.Config

	KafkaBrokers []string
	KafkaGroupID string
	RedisAddr    string

	CursorSecret   string
	HealthInterval time.Duration
}

// DefaultConfig runs everything in process
func DefaultConfig() Config {
	return Config{
		StoreDriver:    DriverMemory,
		Retry:          command.DefaultRetryConfig(),
		Monitor:        monitor.DefaultConfig(),
		KafkaGroupID:   "stock-ledger",
		HealthInterval: 10 * time.Second,
	}
}

// ConfigFromEnv reads the configuration from environment variables
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.StoreDriver = getEnv("STORE_DRIVER", DriverPostgres)
	cfg.Database = database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "inventorydb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
	cfg.AutoMigrate = getEnv("DB_AUTO_MIGRATE", "true") == "true"

	cfg.Retry.MaxAttempts = getEnvInt("TX_MAX_ATTEMPTS", cfg.Retry.MaxAttempts)
	cfg.Retry.Backoff = getEnvDuration("TX_BACKOFF", cfg.Retry.Backoff)
	cfg.Monitor.Interval = getEnvDuration("LOW_STOCK_INTERVAL", cfg.Monitor.Interval)
	cfg.Monitor.DedupWindow = getEnvDuration("LOW_STOCK_DEDUP_WINDOW", cfg.Monitor.DedupWindow)

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	cfg.KafkaGroupID = getEnv("KAFKA_GROUP_ID", cfg.KafkaGroupID)
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.CursorSecret = getEnv("CURSOR_SECRET", "")
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}
