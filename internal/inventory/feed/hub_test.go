package feed

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/repository"
	"github.com/tair/stock-ledger/internal/inventory/usecase/query"
	"github.com/tair/stock-ledger/pkg/clock"
)

const waitFor = 2 * time.Second

type recordingRelay struct {
	mu      sync.Mutex
	changes []domain.Change
}

func (r *recordingRelay) RelayChange(_ context.Context, c domain.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	return nil
}

func (r *recordingRelay) snapshot() []domain.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Change(nil), r.changes...)
}

func newHub(t *testing.T, relays ...Relay) (*Hub, *repository.MemStore, context.CancelFunc) {
	t.Helper()
	store := repository.NewMemStore(clock.New())
	list := query.NewListMovementsHandler(store.Movements(), domain.NewCursorCodec([]byte("k")))
	hub := NewHub(store, store, list, relays...)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, hub.Start(ctx))
	t.Cleanup(cancel)
	return hub, store, cancel
}

func seedItem(t *testing.T, store *repository.MemStore, id string, qty int64) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), &domain.InventoryItem{
		ID: id, Name: id, Quantity: qty, Threshold: 1, Location: domain.LocationFront,
	}))
}

func stockIn(t *testing.T, store *repository.MemStore, itemID, movementID string, qty int64) {
	t.Helper()
	require.NoError(t, store.WithinTx(context.Background(), func(ctx context.Context, tx domain.StoreTx) error {
		item, err := tx.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		item.Quantity += qty
		if err := tx.SaveItem(ctx, item); err != nil {
			return err
		}
		return tx.InsertMovement(ctx, &domain.MovementRecord{
			ID:        movementID,
			ItemID:    itemID,
			Type:      domain.MovementStockIn,
			Quantity:  qty,
			Status:    domain.StatusCompleted,
			Timestamp: time.Now().UTC(),
		})
	}))
}

func receive[T any](t *testing.T, sub *Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return v
	case <-time.After(waitFor):
		t.Fatal("no snapshot received")
	}
	var zero T
	return zero
}

// receiveUntil reads snapshots until one satisfies done
func receiveUntil[T any](t *testing.T, sub *Subscription[T], done func(T) bool) T {
	t.Helper()
	deadline := time.After(waitFor)
	for {
		select {
		case v, ok := <-sub.C():
			require.True(t, ok, "subscription closed")
			if done(v) {
				return v
			}
		case <-deadline:
			t.Fatal("expected snapshot never arrived")
		}
	}
}

func TestSubscribeMovementsDeliversInitialAndUpdates(t *testing.T) {
	hub, store, _ := newHub(t)
	seedItem(t, store, "A", 0)
	stockIn(t, store, "A", "m1", 5)

	sub, err := hub.SubscribeMovements(context.Background(), 10)
	require.NoError(t, err)
	defer sub.Cancel()

	initial := receive(t, sub)
	require.Len(t, initial, 1)
	assert.Equal(t, "m1", initial[0].ID)

	stockIn(t, store, "A", "m2", 3)
	page := receiveUntil(t, sub, func(p []domain.MovementRecord) bool { return len(p) == 2 })
	assert.Equal(t, "m2", page[0].ID)
}

func TestSubscribeMovementsRespectsPageSize(t *testing.T) {
	hub, store, _ := newHub(t)
	seedItem(t, store, "A", 0)
	for i := 1; i <= 4; i++ {
		stockIn(t, store, "A", fmt.Sprintf("m%d", i), 1)
	}

	sub, err := hub.SubscribeMovements(context.Background(), 2)
	require.NoError(t, err)
	defer sub.Cancel()

	page := receive(t, sub)
	assert.Len(t, page, 2)
}

func TestSubscribeInventoryFollowsItemChanges(t *testing.T) {
	hub, store, _ := newHub(t)
	seedItem(t, store, "A", 10)

	sub, err := hub.SubscribeInventory(context.Background())
	require.NoError(t, err)
	defer sub.Cancel()

	initial := receive(t, sub)
	require.Len(t, initial, 1)
	assert.Equal(t, int64(10), initial[0].Quantity)

	stockIn(t, store, "A", "m1", 5)
	items := receiveUntil(t, sub, func(items []domain.InventoryItem) bool {
		return len(items) == 1 && items[0].Quantity == 15
	})
	assert.Equal(t, int64(2), items[0].Version)

	require.NoError(t, store.Delete(context.Background(), "A"))
	receiveUntil(t, sub, func(items []domain.InventoryItem) bool { return len(items) == 0 })
}

func TestSlowSubscriberSeesLatestOnly(t *testing.T) {
	hub, store, _ := newHub(t)
	seedItem(t, store, "A", 0)

	slow, err := hub.SubscribeMovements(context.Background(), 10)
	require.NoError(t, err)
	defer slow.Cancel()
	fast, err := hub.SubscribeMovements(context.Background(), 10)
	require.NoError(t, err)
	defer fast.Cancel()

	for i := 1; i <= 5; i++ {
		stockIn(t, store, "A", fmt.Sprintf("m%d", i), 1)
	}
	// both subscribers are sent to in the same step, so once the fast one has
	// the final page the slow one's buffer holds it too
	receiveUntil(t, fast, func(p []domain.MovementRecord) bool { return len(p) == 5 })

	latest := receive(t, slow)
	assert.Len(t, latest, 5)
	select {
	case stale := <-slow.C():
		t.Fatalf("unexpected extra snapshot with %d records", len(stale))
	default:
	}
}

func TestCancelClosesChannel(t *testing.T) {
	hub, _, _ := newHub(t)

	sub, err := hub.SubscribeInventory(context.Background())
	require.NoError(t, err)
	receive(t, sub)

	sub.Cancel()
	sub.Cancel()
	_, ok := <-sub.C()
	assert.False(t, ok)

	hub.mu.Lock()
	assert.Empty(t, hub.itemSubs)
	hub.mu.Unlock()
}

func TestStopClosesSubscriptions(t *testing.T) {
	hub, _, cancel := newHub(t)

	sub, err := hub.SubscribeMovements(context.Background(), 5)
	require.NoError(t, err)
	receive(t, sub)

	cancel()
	select {
	case _, ok := <-sub.C():
		assert.False(t, ok)
	case <-time.After(waitFor):
		t.Fatal("subscription not closed when hub stopped")
	}

	require.Eventually(t, func() bool {
		_, err := hub.SubscribeInventory(context.Background())
		return err == ErrStreamClosed
	}, waitFor, 10*time.Millisecond)
}

func TestRelaysSeeChangesInCommitOrder(t *testing.T) {
	relay := &recordingRelay{}
	_, store, _ := newHub(t, relay)
	seedItem(t, store, "A", 0)
	stockIn(t, store, "A", "m1", 1)
	stockIn(t, store, "A", "m2", 1)

	require.Eventually(t, func() bool { return len(relay.snapshot()) == 5 }, waitFor, 10*time.Millisecond)

	var versions []int64
	for _, c := range relay.snapshot() {
		if c.Kind == domain.ChangeItem {
			versions = append(versions, c.Version)
		}
	}
	assert.Equal(t, []int64{1, 2, 3}, versions)
}
