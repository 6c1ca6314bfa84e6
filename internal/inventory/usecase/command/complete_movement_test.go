package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

func TestCompleteMovementAppliesEffectOnce(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", 10, domain.LocationFront, 0)
	ctx := context.Background()

	m := f.mustCreate(t, CreateMovementCommand{ItemID: "A", Type: "STOCK_IN", Quantity: 5, Status: "PENDING"})
	require.Equal(t, int64(10), f.item(t, "A").Quantity)

	done, err := f.complete.Handle(ctx, CompleteMovementCommand{MovementID: m.ID, ActorID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, done.Status)
	assert.Equal(t, int64(15), f.item(t, "A").Quantity)
	assert.Equal(t, "u2", f.item(t, "A").UpdatedBy)

	_, err = f.complete.Handle(ctx, CompleteMovementCommand{MovementID: m.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(15), f.item(t, "A").Quantity)

	// deleting a completed movement undoes it
	require.NoError(t, f.delete.Handle(ctx, DeleteMovementCommand{MovementID: m.ID}))
	assert.Equal(t, int64(10), f.item(t, "A").Quantity)
}

func TestDeletePendingMovementLeavesBalance(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", 10, domain.LocationFront, 0)

	m := f.mustCreate(t, CreateMovementCommand{ItemID: "A", Type: "STOCK_SOLD", Quantity: 5, Status: "PENDING"})
	require.NoError(t, f.delete.Handle(context.Background(), DeleteMovementCommand{MovementID: m.ID}))
	assert.Equal(t, int64(10), f.item(t, "A").Quantity)
}
