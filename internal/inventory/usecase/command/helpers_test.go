package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/repository"
	"github.com/tair/stock-ledger/pkg/clock"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishMovement(ctx context.Context, event string, m domain.MovementRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event+":"+m.ID)
	return nil
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type fixture struct {
	store    *repository.MemStore
	clock    *clock.Monotonic
	runner   *TxRunner
	pub      *recordingPublisher
	create   *CreateMovementHandler
	update   *UpdateMovementHandler
	delete   *DeleteMovementHandler
	complete *CompleteMovementHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewWithSource(clock.Stepped(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC), time.Second))
	store := repository.NewMemStore(clk)
	return newFixtureWith(t, store, clk, store)
}

func newFixtureWith(t *testing.T, store *repository.MemStore, clk *clock.Monotonic, tx domain.Transactor) *fixture {
	t.Helper()
	runner := NewTxRunner(tx, RetryConfig{MaxAttempts: 5, Backoff: time.Millisecond})
	pub := &recordingPublisher{}
	return &fixture{
		store:    store,
		clock:    clk,
		runner:   runner,
		pub:      pub,
		create:   NewCreateMovementHandler(runner, clk, pub),
		update:   NewUpdateMovementHandler(runner, clk, pub),
		delete:   NewDeleteMovementHandler(runner, clk, pub),
		complete: NewCompleteMovementHandler(runner, clk, pub),
	}
}

func (f *fixture) seed(t *testing.T, id string, qty int64, loc domain.Location, threshold int64) {
	t.Helper()
	require.NoError(t, f.store.Create(context.Background(), &domain.InventoryItem{
		ID:        id,
		Name:      "item " + id,
		Quantity:  qty,
		Location:  loc,
		Threshold: threshold,
	}))
}

func (f *fixture) item(t *testing.T, id string) domain.InventoryItem {
	t.Helper()
	item, err := f.store.FindByID(context.Background(), id)
	require.NoError(t, err)
	return *item
}

func (f *fixture) movementCount(t *testing.T) int {
	t.Helper()
	all, err := f.store.ListMovements(context.Background(), domain.MovementFilter{})
	require.NoError(t, err)
	return len(all)
}

func (f *fixture) mustCreate(t *testing.T, cmd CreateMovementCommand) *domain.MovementRecord {
	t.Helper()
	m, err := f.create.Handle(context.Background(), cmd)
	require.NoError(t, err)
	return m
}

// racingTransactor commits race() between the first attempt's reads and its commit
type racingTransactor struct {
	domain.Transactor
	once     sync.Once
	race     func()
	mu       sync.Mutex
	attempts int
}

func (r *racingTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.StoreTx) error) error {
	r.mu.Lock()
	r.attempts++
	r.mu.Unlock()

	return r.Transactor.WithinTx(ctx, func(ctx context.Context, tx domain.StoreTx) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		r.once.Do(r.race)
		return nil
	})
}

func (r *racingTransactor) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

// conflictingTransactor loses every race
type conflictingTransactor struct {
	calls int
}

func (c *conflictingTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.StoreTx) error) error {
	c.calls++
	return domain.NewConflictError("commit", "a")
}

// movementRaceTransactor commits race() right after the first movement read,
// before the handler has read the item
type movementRaceTransactor struct {
	domain.Transactor
	once     sync.Once
	race     func()
	mu       sync.Mutex
	attempts int
}

func (r *movementRaceTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.StoreTx) error) error {
	r.mu.Lock()
	r.attempts++
	r.mu.Unlock()

	return r.Transactor.WithinTx(ctx, func(ctx context.Context, tx domain.StoreTx) error {
		return fn(ctx, &racingMovementTx{StoreTx: tx, owner: r})
	})
}

func (r *movementRaceTransactor) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

type racingMovementTx struct {
	domain.StoreTx
	owner *movementRaceTransactor
}

func (t *racingMovementTx) GetMovement(ctx context.Context, id string) (*domain.MovementRecord, error) {
	m, err := t.StoreTx.GetMovement(ctx, id)
	if err != nil {
		return nil, err
	}
	t.owner.once.Do(t.owner.race)
	return m, nil
}
