package monitor

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/repository"
	"github.com/tair/stock-ledger/pkg/clock"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type failingSink struct{ err error }

func (s failingSink) Notify(context.Context, domain.LowStockNotification) error { return s.err }

type fixture struct {
	store *repository.MemStore
	clock *manualClock
	mon   *Monitor
}

func newFixture(t *testing.T, window time.Duration, sink domain.NotificationSink) *fixture {
	t.Helper()
	clk := &manualClock{now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	store := repository.NewMemStore(clock.New())
	if sink == nil {
		sink = store
	}
	cfg := Config{Interval: time.Hour, DedupWindow: window}
	return &fixture{
		store: store,
		clock: clk,
		mon:   New(store, sink, NewMemoryDeduper(window, clk), clk, cfg),
	}
}

func (f *fixture) seed(t *testing.T, id string, qty, threshold int64) {
	t.Helper()
	require.NoError(t, f.store.Create(context.Background(), &domain.InventoryItem{
		ID: id, Name: id, Quantity: qty, Threshold: threshold, Location: domain.LocationFront,
	}))
}

func (f *fixture) setQuantity(t *testing.T, id string, qty int64) {
	t.Helper()
	require.NoError(t, f.store.WithinTx(context.Background(), func(ctx context.Context, tx domain.StoreTx) error {
		item, err := tx.GetItem(ctx, id)
		if err != nil {
			return err
		}
		item.Quantity = qty
		return tx.SaveItem(ctx, item)
	}))
}

func entryIDs(n *domain.LowStockNotification) []string {
	var ids []string
	for _, e := range n.Items {
		ids = append(ids, e.ItemID)
	}
	return ids
}

func TestScanListsItemsAtOrUnderThreshold(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.seed(t, "apples", 150, 200)
	f.seed(t, "bananas", 200, 200)
	f.seed(t, "cherries", 201, 200)

	n, err := f.mon.Scan(context.Background())
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, domain.NotificationTypeLowStock, n.Type)
	assert.Equal(t, []string{"apples", "bananas"}, entryIDs(n))

	stored := f.store.Notifications()
	require.Len(t, stored, 1)
	assert.Equal(t, n.ID, stored[0].ID)
}

func TestScanWithNothingLowEmitsNothing(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.seed(t, "apples", 500, 200)

	n, err := f.mon.Scan(context.Background())
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.Empty(t, f.store.Notifications())
}

func TestScanWithoutWindowRepeats(t *testing.T) {
	f := newFixture(t, 0, nil)
	f.seed(t, "apples", 1, 10)

	for i := 0; i < 3; i++ {
		_, err := f.mon.Scan(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, f.store.Notifications(), 3)
}

func TestDedupWindowSuppressesRepeats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 24*time.Hour, nil)
	f.seed(t, "apples", 1, 10)

	n, err := f.mon.Scan(ctx)
	require.NoError(t, err)
	require.NotNil(t, n)

	f.clock.Advance(time.Hour)
	n, err = f.mon.Scan(ctx)
	require.NoError(t, err)
	assert.Nil(t, n)

	// a second item dropping is still announced, alone
	f.seed(t, "bananas", 0, 5)
	n, err = f.mon.Scan(ctx)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, []string{"bananas"}, entryIDs(n))

	// apples' window has passed, bananas' has not
	f.clock.Advance(23*time.Hour + 30*time.Minute)
	n, err = f.mon.Scan(ctx)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, []string{"apples"}, entryIDs(n))
}

func TestRecoveryClearsMark(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 24*time.Hour, nil)
	f.seed(t, "apples", 1, 10)

	_, err := f.mon.Scan(ctx)
	require.NoError(t, err)

	f.setQuantity(t, "apples", 50)
	n, err := f.mon.Scan(ctx)
	require.NoError(t, err)
	assert.Nil(t, n)

	f.setQuantity(t, "apples", 3)
	n, err = f.mon.Scan(ctx)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, int64(3), n.Items[0].Quantity)
}

func TestFailedDeliveryIsRetried(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("broker down")
	f := newFixture(t, 24*time.Hour, failingSink{err: boom})
	f.seed(t, "apples", 1, 10)

	_, err := f.mon.Scan(ctx)
	require.ErrorIs(t, err, boom)

	first, err := f.mon.dedup.Mark(ctx, "apples")
	require.NoError(t, err)
	assert.True(t, first, "mark must be released after a failed delivery")
}

func TestMultiSinkDeliversToAll(t *testing.T) {
	boom := errors.New("boom")
	a := repository.NewMemStore(clock.New())
	b := repository.NewMemStore(clock.New())
	sink := MultiSink{a, failingSink{err: boom}, b, LogSink{}}

	err := sink.Notify(context.Background(), domain.LowStockNotification{ID: "n1"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, a.Notifications(), 1)
	assert.Len(t, b.Notifications(), 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(t, 0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.mon.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestRedisDeduper(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	d := NewRedisDeduper(client, time.Minute)
	id := "redis-dedup-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { _ = d.Clear(ctx, id) })

	first, err := d.Mark(ctx, id)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := d.Mark(ctx, id)
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, d.Clear(ctx, id))
	first, err = d.Mark(ctx, id)
	require.NoError(t, err)
	assert.True(t, first)
}
