package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completed(f MovementFields) *MovementRecord {
	m := &MovementRecord{ID: "m1", ItemID: "a", Status: StatusCompleted}
	m.Apply(f)
	return m
}

func TestEffectStockInAndSold(t *testing.T) {
	item := &InventoryItem{ID: "a", Quantity: 100, Location: LocationFront}

	in := EffectOf(completed(MovementFields{Type: MovementStockIn, Quantity: 50}))
	require.NoError(t, in.ApplyTo("test", item))
	assert.Equal(t, int64(150), item.Quantity)

	sold := EffectOf(completed(MovementFields{Type: MovementStockSold, Quantity: 150}))
	require.NoError(t, sold.ApplyTo("test", item))
	assert.Equal(t, int64(0), item.Quantity)

	err := sold.ApplyTo("test", item)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, int64(0), item.Quantity)
}

func TestEffectRejectsQuantityOverflow(t *testing.T) {
	item := &InventoryItem{ID: "a", Quantity: math.MaxInt64 - 10, Location: LocationFront}

	in := EffectOf(completed(MovementFields{Type: MovementStockIn, Quantity: 11}))
	err := in.ApplyTo("test", item)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, int64(math.MaxInt64-10), item.Quantity)

	fits := EffectOf(completed(MovementFields{Type: MovementStockIn, Quantity: 10}))
	require.NoError(t, fits.ApplyTo("test", item))
	assert.Equal(t, int64(math.MaxInt64), item.Quantity)

	low := &InventoryItem{ID: "b", Quantity: math.MinInt64 + 1}
	assert.ErrorIs(t, Effect{Delta: -2}.ApplyTo("test", low), ErrValidation)
	assert.Equal(t, int64(math.MinInt64+1), low.Quantity)
}

func TestEffectTransferKeepsQuantity(t *testing.T) {
	item := &InventoryItem{ID: "a", Quantity: 500, Location: LocationFront}
	e := EffectOf(completed(MovementFields{
		Type:           MovementTransfer,
		Quantity:       50,
		SourceLocation: LocationFront,
		DestLocation:   LocationBack,
	}))

	require.NoError(t, e.ApplyTo("test", item))
	assert.Equal(t, LocationBack, item.Location)
	assert.Equal(t, int64(500), item.Quantity)

	// applying again fails because the item is no longer at the source
	err := e.ApplyTo("test", item)
	assert.True(t, errors.Is(err, ErrValidation))

	require.NoError(t, e.Reverse().ApplyTo("test", item))
	assert.Equal(t, LocationFront, item.Location)
	assert.Equal(t, int64(500), item.Quantity)
}

func TestEffectTransferExceedingStock(t *testing.T) {
	item := &InventoryItem{ID: "a", Quantity: 10, Location: LocationFront}
	e := EffectOfFields(MovementFields{
		Type:           MovementTransfer,
		Quantity:       11,
		SourceLocation: LocationFront,
		DestLocation:   LocationBack,
	})
	err := e.ApplyTo("test", item)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
}

func TestEffectReverseRoundTrip(t *testing.T) {
	for _, f := range []MovementFields{
		{Type: MovementStockIn, Quantity: 7},
		{Type: MovementStockSold, Quantity: 3},
		{Type: MovementTransfer, Quantity: 5, SourceLocation: LocationFront, DestLocation: LocationBack},
	} {
		item := &InventoryItem{ID: "a", Quantity: 20, Location: LocationFront}
		e := EffectOfFields(f)
		require.NoError(t, e.ApplyTo("test", item))
		require.NoError(t, e.Reverse().ApplyTo("test", item))
		assert.Equal(t, int64(20), item.Quantity, f.Type)
		assert.Equal(t, LocationFront, item.Location, f.Type)
	}
}

func TestPendingMovementHasNoEffect(t *testing.T) {
	m := completed(MovementFields{Type: MovementStockIn, Quantity: 5})
	m.Status = StatusPending
	assert.True(t, EffectOf(m).IsZero())
}

func TestCheckBalance(t *testing.T) {
	assert.NoError(t, CheckBalance("test", &InventoryItem{Quantity: 0}))
	assert.ErrorIs(t, CheckBalance("test", &InventoryItem{Quantity: -1}), ErrInsufficientStock)
}

func TestMovementFieldsValidate(t *testing.T) {
	cases := []struct {
		name string
		f    MovementFields
		kind error
	}{
		{"unknown type", MovementFields{Type: "RETURN", Quantity: 1}, ErrInvalidMovementType},
		{"zero quantity", MovementFields{Type: MovementStockIn}, ErrValidation},
		{"transfer without dest", MovementFields{Type: MovementTransfer, Quantity: 1, SourceLocation: LocationFront}, ErrValidation},
		{"transfer same location", MovementFields{Type: MovementTransfer, Quantity: 1, SourceLocation: LocationBack, DestLocation: LocationBack}, ErrValidation},
		{"dest on stock in", MovementFields{Type: MovementStockIn, Quantity: 1, DestLocation: LocationBack}, ErrValidation},
		{"bad source", MovementFields{Type: MovementStockSold, Quantity: 1, SourceLocation: "SHELF"}, ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.f.Validate(), tc.kind)
		})
	}

	assert.NoError(t, MovementFields{Type: MovementStockSold, Quantity: 1, SourceLocation: LocationFront}.Validate())
}
