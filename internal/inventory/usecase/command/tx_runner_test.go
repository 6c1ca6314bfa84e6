package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

func TestTxRunnerExhaustsBudget(t *testing.T) {
	tx := &conflictingTransactor{}
	runner := NewTxRunner(tx, RetryConfig{MaxAttempts: 4, Backoff: time.Millisecond})

	err := runner.Run(context.Background(), "test", func(ctx context.Context, tx domain.StoreTx) error {
		return nil
	})

	require.ErrorIs(t, err, domain.ErrCommitFailed)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.False(t, domain.Retryable(err))
	assert.Equal(t, 4, tx.calls)
}

func TestTxRunnerDoesNotRetryBusinessErrors(t *testing.T) {
	f := newFixture(t)
	calls := 0

	err := f.runner.Run(context.Background(), "test", func(ctx context.Context, tx domain.StoreTx) error {
		calls++
		return domain.NewInsufficientStockError("test", 1, 2)
	})

	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, calls)
}

func TestTxRunnerStopsOnCancel(t *testing.T) {
	tx := &conflictingTransactor{}
	runner := NewTxRunner(tx, RetryConfig{MaxAttempts: 5, Backoff: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := runner.Run(ctx, "test", func(ctx context.Context, tx domain.StoreTx) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, tx.calls)
}

func TestCreateMovementReportsCommitFailed(t *testing.T) {
	f := newFixture(t)
	runner := NewTxRunner(&conflictingTransactor{}, RetryConfig{MaxAttempts: 2, Backoff: time.Millisecond})
	h := NewCreateMovementHandler(runner, f.clock, nil)

	_, err := h.Handle(context.Background(), CreateMovementCommand{ItemID: "A", Type: "STOCK_IN", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrCommitFailed)
}
