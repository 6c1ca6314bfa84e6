package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/repository"
	"github.com/tair/stock-ledger/internal/inventory/usecase/command"
	"github.com/tair/stock-ledger/pkg/clock"
)

func purchaseMessage(t *testing.T, event ProductPurchasedEvent) *sarama.ConsumerMessage {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{
		Topic: TopicProductPurchased,
		Value: value,
		Headers: []*sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeProductPurchased)},
			{Key: []byte("event_id"), Value: []byte("evt-1")},
		},
	}
}

func newPurchaseConsumer(t *testing.T, stock int64) (*Consumer, *repository.MemStore) {
	t.Helper()
	clk := clock.New()
	store := repository.NewMemStore(clk)
	require.NoError(t, store.Create(context.Background(), &domain.InventoryItem{
		ID: "widget", Name: "widget", Quantity: stock, Location: domain.LocationFront,
	}))

	runner := command.NewTxRunner(store, command.RetryConfig{MaxAttempts: 3, Backoff: time.Millisecond})
	create := command.NewCreateMovementHandler(runner, clk, nil)

	c := newConsumer([]string{TopicProductPurchased})
	c.RegisterHandler(EventTypeProductPurchased, NewPurchaseHandler(create))
	return c, store
}

func TestPurchaseBecomesSale(t *testing.T) {
	c, store := newPurchaseConsumer(t, 10)
	ctx := context.Background()

	msg := purchaseMessage(t, ProductPurchasedEvent{OrderID: "o-7", ItemID: "widget", Quantity: 3})
	require.NoError(t, c.handleMessage(ctx, msg))

	item, err := store.FindByID(ctx, "widget")
	require.NoError(t, err)
	assert.Equal(t, int64(7), item.Quantity)

	records, err := store.ListMovements(ctx, domain.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.MovementStockSold, records[0].Type)
	assert.Equal(t, PurchaseActor, records[0].ActorID)
	assert.Contains(t, records[0].Notes, "o-7")
	assert.Contains(t, records[0].Notes, "evt-1")
}

func TestPurchaseBeyondStockIsRejected(t *testing.T) {
	c, store := newPurchaseConsumer(t, 2)
	ctx := context.Background()

	err := c.handleMessage(ctx, purchaseMessage(t, ProductPurchasedEvent{ItemID: "widget", Quantity: 3}))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	item, err := store.FindByID(ctx, "widget")
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.Quantity)
}

func TestMessagesWithoutHandlerAreSkipped(t *testing.T) {
	c, _ := newPurchaseConsumer(t, 1)
	ctx := context.Background()

	assert.ErrorIs(t, c.handleMessage(ctx, &sarama.ConsumerMessage{Topic: TopicProductPurchased}), errNoEventType)

	msg := purchaseMessage(t, ProductPurchasedEvent{ItemID: "widget", Quantity: 1})
	msg.Headers[0].Value = []byte("product.refunded")
	assert.ErrorIs(t, c.handleMessage(ctx, msg), errNoHandler)
}

func TestMalformedPurchaseIsRejected(t *testing.T) {
	c, _ := newPurchaseConsumer(t, 1)

	msg := purchaseMessage(t, ProductPurchasedEvent{ItemID: "", Quantity: 1})
	assert.ErrorIs(t, c.handleMessage(context.Background(), msg), domain.ErrValidation)

	msg.Value = []byte("{not json")
	assert.Error(t, c.handleMessage(context.Background(), msg))
}

// flakyRecorder fails the first failures calls with err before delegating
type flakyRecorder struct {
	next     MovementRecorder
	err      error
	failures int

	mu    sync.Mutex
	calls int
}

func (r *flakyRecorder) Handle(ctx context.Context, cmd command.CreateMovementCommand) (*domain.MovementRecord, error) {
	r.mu.Lock()
	r.calls++
	fail := r.calls <= r.failures
	r.mu.Unlock()
	if fail {
		return nil, r.err
	}
	return r.next.Handle(ctx, cmd)
}

func (r *flakyRecorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func newFlakyConsumer(t *testing.T, stock int64, failures int) (*Consumer, *repository.MemStore, *flakyRecorder) {
	t.Helper()
	clk := clock.New()
	store := repository.NewMemStore(clk)
	require.NoError(t, store.Create(context.Background(), &domain.InventoryItem{
		ID: "widget", Name: "widget", Quantity: stock, Location: domain.LocationFront,
	}))
	runner := command.NewTxRunner(store, command.RetryConfig{MaxAttempts: 3, Backoff: time.Millisecond})
	recorder := &flakyRecorder{
		next:     command.NewCreateMovementHandler(runner, clk, nil),
		err:      &domain.Error{Kind: domain.ErrCommitFailed, Op: "create movement", Err: domain.NewConflictError("commit", "widget")},
		failures: failures,
	}

	c := newConsumer([]string{TopicProductPurchased})
	c.redeliveries = 3
	c.redeliveryDelay = time.Millisecond
	c.RegisterHandler(EventTypeProductPurchased, NewPurchaseHandler(recorder))
	return c, store, recorder
}

type recordingSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *recordingSession) Context() context.Context { return s.ctx }

func (s *recordingSession) MarkMessage(msg *sarama.ConsumerMessage, metadata string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

func (s *recordingSession) Marked() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.marked...)
}

type queuedClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *queuedClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func claimOf(messages ...*sarama.ConsumerMessage) *queuedClaim {
	ch := make(chan *sarama.ConsumerMessage, len(messages))
	for _, m := range messages {
		ch <- m
	}
	close(ch)
	return &queuedClaim{messages: ch}
}

func TestTransientFailureIsRetriedBeforeMarking(t *testing.T) {
	c, store, recorder := newFlakyConsumer(t, 10, 1)
	ctx := context.Background()
	session := &recordingSession{ctx: ctx}

	msg := purchaseMessage(t, ProductPurchasedEvent{OrderID: "o-1", ItemID: "widget", Quantity: 2})
	msg.Offset = 41

	handler := &consumerGroupHandler{consumer: c}
	require.NoError(t, handler.ConsumeClaim(session, claimOf(msg)))

	assert.Equal(t, []int64{41}, session.Marked())
	assert.Equal(t, 2, recorder.Calls())

	records, err := store.ListMovements(ctx, domain.MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	item, err := store.FindByID(ctx, "widget")
	require.NoError(t, err)
	assert.Equal(t, int64(8), item.Quantity)
}

func TestPersistentFailureLeavesMessageUnmarked(t *testing.T) {
	c, store, _ := newFlakyConsumer(t, 10, 100)
	ctx := context.Background()
	session := &recordingSession{ctx: ctx}

	first := purchaseMessage(t, ProductPurchasedEvent{ItemID: "widget", Quantity: 1})
	first.Offset = 7
	second := purchaseMessage(t, ProductPurchasedEvent{ItemID: "widget", Quantity: 1})
	second.Offset = 8

	handler := &consumerGroupHandler{consumer: c}
	err := handler.ConsumeClaim(session, claimOf(first, second))
	require.ErrorIs(t, err, domain.ErrCommitFailed)

	assert.Empty(t, session.Marked())
	item, err := store.FindByID(ctx, "widget")
	require.NoError(t, err)
	assert.Equal(t, int64(10), item.Quantity)
}

func TestRejectedMessagesAreMarkedWithoutRetry(t *testing.T) {
	c, _, recorder := newFlakyConsumer(t, 1, 0)
	ctx := context.Background()
	session := &recordingSession{ctx: ctx}

	oversold := purchaseMessage(t, ProductPurchasedEvent{ItemID: "widget", Quantity: 5})
	oversold.Offset = 1
	garbled := purchaseMessage(t, ProductPurchasedEvent{ItemID: "widget", Quantity: 1})
	garbled.Value = []byte("{not json")
	garbled.Offset = 2
	headerless := &sarama.ConsumerMessage{Topic: TopicProductPurchased, Offset: 3}

	handler := &consumerGroupHandler{consumer: c}
	require.NoError(t, handler.ConsumeClaim(session, claimOf(oversold, garbled, headerless)))

	assert.Equal(t, []int64{1, 2, 3}, session.Marked())
	assert.Equal(t, 1, recorder.Calls())
}
