package domain

import "math"

// Effect is the change a committed movement makes to its item.
// Guard is the minimum on-hand quantity required before the change.
type Effect struct {
	Delta int64
	From  Location
	To    Location
	Guard int64
}

// EffectOf derives the store effect of m. Pending movements have none.
func EffectOf(m *MovementRecord) Effect {
	if !m.Completed() {
		return Effect{}
	}
	return effectOf(m.Fields())
}

func effectOf(f MovementFields) Effect {
	switch f.Type {
	case MovementStockIn:
		return Effect{Delta: f.Quantity}
	case MovementStockSold:
		return Effect{Delta: -f.Quantity, Guard: f.Quantity}
	case MovementTransfer:
		return Effect{From: f.SourceLocation, To: f.DestLocation, Guard: f.Quantity}
	}
	return Effect{}
}

// EffectOfFields derives the effect a completed movement with fields f would have
func EffectOfFields(f MovementFields) Effect {
	return effectOf(f)
}

// Reverse returns the effect that undoes e
func (e Effect) Reverse() Effect {
	return Effect{Delta: -e.Delta, From: e.To, To: e.From}
}

// IsZero reports whether e leaves the item untouched
func (e Effect) IsZero() bool {
	return e == Effect{}
}

// ApplyTo mutates item by e. A negative result is not checked here;
// callers validate the final state with CheckBalance. A result outside
// int64 is rejected.
func (e Effect) ApplyTo(op string, item *InventoryItem) error {
	if overflows(item.Quantity, e.Delta) {
		return NewValidationError(op, "quantity of item "+item.ID+" would overflow")
	}
	if e.From != "" {
		if item.Location != e.From {
			return NewValidationError(op, "item "+item.ID+" is at "+string(item.Location)+", not "+string(e.From))
		}
		item.Location = e.To
	}
	if e.Guard > 0 && item.Quantity < e.Guard {
		return NewInsufficientStockError(op, item.Quantity, e.Guard)
	}
	item.Quantity += e.Delta
	return nil
}

func overflows(q, delta int64) bool {
	if delta > 0 {
		return q > math.MaxInt64-delta
	}
	return q < math.MinInt64-delta
}

// CheckBalance rejects a negative final quantity
func CheckBalance(op string, item *InventoryItem) error {
	if item.Quantity < 0 {
		return &Error{
			Kind:    ErrInsufficientStock,
			Op:      op,
			Message: "resulting quantity would be negative",
		}
	}
	return nil
}
