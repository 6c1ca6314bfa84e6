package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

func TestUpdateMovementReappliesEffect(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", 100, domain.LocationFront, 0)
	ctx := context.Background()

	m := f.mustCreate(t, CreateMovementCommand{ItemID: "A", Type: "STOCK_SOLD", Quantity: 30, ActorID: "u1"})
	require.Equal(t, int64(70), f.item(t, "A").Quantity)

	updated, err := f.update.Handle(ctx, UpdateMovementCommand{MovementID: m.ID, Type: "STOCK_IN", Quantity: 20, Notes: "miscounted"})
	require.NoError(t, err)
	assert.Equal(t, domain.MovementStockIn, updated.Type)
	assert.Equal(t, "u1", updated.ActorID)
	assert.Equal(t, "miscounted", updated.Notes)
	assert.True(t, updated.Timestamp.Equal(m.Timestamp))

	assert.Equal(t, int64(120), f.item(t, "A").Quantity)
	assert.Equal(t, 1, f.movementCount(t))
}

// Undoing a STOCK_IN may dip below zero transiently; only the combined result counts.
func TestUpdateMovementValidatesCombinedEffect(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", 0, domain.LocationFront, 0)
	ctx := context.Background()

	in := f.mustCreate(t, CreateMovementCommand{ItemID: "A", Type: "STOCK_IN", Quantity: 50})
	f.mustCreate(t, CreateMovementCommand{ItemID: "A", Type: "STOCK_SOLD", Quantity: 40})
	require.Equal(t, int64(10), f.item(t, "A").Quantity)

	_, err := f.update.Handle(ctx, UpdateMovementCommand{MovementID: in.ID, Type: "STOCK_IN", Quantity: 45})
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.item(t, "A").Quantity)

	_, err = f.update.Handle(ctx, UpdateMovementCommand{MovementID: in.ID, Type: "STOCK_IN", Quantity: 30})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(5), f.item(t, "A").Quantity)

	stored, err := f.store.MovementByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(45), stored.Quantity)
}

// Updating equals deleting and recreating with the new fields on the same item.
func TestUpdateMovementComposeLaw(t *testing.T) {
	ctx := context.Background()
	newFields := UpdateMovementCommand{Type: "STOCK_SOLD", Quantity: 15}

	viaUpdate := newFixture(t)
	viaUpdate.seed(t, "A", 60, domain.LocationFront, 0)
	m := viaUpdate.mustCreate(t, CreateMovementCommand{ItemID: "A", Type: "STOCK_IN", Quantity: 25})
	newFields.MovementID = m.ID
	_, err := viaUpdate.update.Handle(ctx, newFields)
	require.NoError(t, err)

	viaDelete := newFixture(t)
	viaDelete.seed(t, "A", 60, domain.LocationFront, 0)
	m = viaDelete.mustCreate(t, CreateMovementCommand{ItemID: "A", Type: "STOCK_IN", Quantity: 25})
	require.NoError(t, viaDelete.delete.Handle(ctx, DeleteMovementCommand{MovementID: m.ID}))
	viaDelete.mustCreate(t, CreateMovementCommand{ItemID: "A", Type: newFields.Type, Quantity: newFields.Quantity})

	a, b := viaUpdate.item(t, "A"), viaDelete.item(t, "A")
	assert.Equal(t, b.Quantity, a.Quantity)
	assert.Equal(t, b.Location, a.Location)
	assert.Equal(t, int64(45), a.Quantity)
}

func TestUpdateTransferReversesLocation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", 80, domain.LocationFront, 0)
	ctx := context.Background()

	tr := f.mustCreate(t, CreateMovementCommand{ItemID: "A", Type: "TRANSFER", Quantity: 80, SourceLocation: "FRONT", DestLocation: "BACK"})
	require.Equal(t, domain.LocationBack, f.item(t, "A").Location)

	// turning the transfer into a sale puts the item back where it was
	_, err := f.update.Handle(ctx, UpdateMovementCommand{MovementID: tr.ID, Type: "STOCK_SOLD", Quantity: 5})
	require.NoError(t, err)

	item := f.item(t, "A")
	assert.Equal(t, domain.LocationFront, item.Location)
	assert.Equal(t, int64(75), item.Quantity)

	stored, err := f.store.MovementByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LocationFront, stored.SourceLocation)
	assert.Empty(t, stored.DestLocation)
}

func TestUpdateTransferAfterLaterRelocationFails(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", 10, domain.LocationFront, 0)
	ctx := context.Background()

	first := f.mustCreate(t, CreateMovementCommand{ItemID: "A", Type: "TRANSFER", Quantity: 10, SourceLocation: "FRONT", DestLocation: "BACK"})
	f.mustCreate(t, CreateMovementCommand{ItemID: "A", Type: "TRANSFER", Quantity: 10, SourceLocation: "BACK", DestLocation: "FRONT"})

	_, err := f.update.Handle(ctx, UpdateMovementCommand{MovementID: first.ID, Type: "TRANSFER", Quantity: 5, SourceLocation: "FRONT", DestLocation: "BACK"})
	require.ErrorIs(t, err, domain.ErrValidation)

	err = f.delete.Handle(ctx, DeleteMovementCommand{MovementID: first.ID})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.LocationFront, f.item(t, "A").Location)
}

func TestUpdateMovementErrors(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", 10, domain.LocationFront, 0)
	ctx := context.Background()
	m := f.mustCreate(t, CreateMovementCommand{ItemID: "A", Type: "STOCK_IN", Quantity: 1})

	_, err := f.update.Handle(ctx, UpdateMovementCommand{MovementID: "missing", Type: "STOCK_IN", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.update.Handle(ctx, UpdateMovementCommand{MovementID: m.ID, Type: "LOSS", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidMovementType)

	_, err = f.update.Handle(ctx, UpdateMovementCommand{MovementID: m.ID, Type: "STOCK_IN", Quantity: -3})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
