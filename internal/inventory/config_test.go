package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TX_MAX_ATTEMPTS", "9")
	t.Setenv("LOW_STOCK_INTERVAL", "1h")
	t.Setenv("LOW_STOCK_DEDUP_WINDOW", "not-a-duration")

	cfg := ConfigFromEnv()
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 9, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Hour, cfg.Monitor.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Monitor.DedupWindow)
	assert.Equal(t, "inventorydb", cfg.Database.DBName)
}
