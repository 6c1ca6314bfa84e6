package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// Deduper remembers which items were already announced
type Deduper interface {
	// Mark records itemID and reports whether it was not marked before
	Mark(ctx context.Context, itemID string) (bool, error)
	// Clear forgets the given items so their next drop is announced again
	Clear(ctx context.Context, itemIDs ...string) error
}

// NoDedup announces every low item on every scan
type NoDedup struct{}

func (NoDedup) Mark(context.Context, string) (bool, error) { return true, nil }
func (NoDedup) Clear(context.Context, ...string) error      { return nil }

// MemoryDeduper keeps marks in process; they are lost on restart
type MemoryDeduper struct {
	mu     sync.Mutex
	marks  map[string]time.Time
	window time.Duration
	clock  domain.Clock
}

func NewMemoryDeduper(window time.Duration, clock domain.Clock) *MemoryDeduper {
	return &MemoryDeduper{marks: map[string]time.Time{}, window: window, clock: clock}
}

func (d *MemoryDeduper) Mark(_ context.Context, itemID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	if expires, ok := d.marks[itemID]; ok && now.Before(expires) {
		return false, nil
	}
	d.marks[itemID] = now.Add(d.window)
	return true, nil
}

func (d *MemoryDeduper) Clear(_ context.Context, itemIDs ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range itemIDs {
		delete(d.marks, id)
	}
	return nil
}

const redisKeyPrefix = "stock-ledger:low-stock:"

// RedisDeduper shares marks between replicas. A mark is a key with the
// window as TTL.
type RedisDeduper struct {
	client *redis.Client
	window time.Duration
}

func NewRedisDeduper(client *redis.Client, window time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, window: window}
}

func (d *RedisDeduper) Mark(ctx context.Context, itemID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, redisKeyPrefix+itemID, 1, d.window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark item %s: %w", itemID, err)
	}
	return ok, nil
}

func (d *RedisDeduper) Clear(ctx context.Context, itemIDs ...string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	keys := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		keys[i] = redisKeyPrefix + id
	}
	if err := d.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear low stock marks: %w", err)
	}
	return nil
}
