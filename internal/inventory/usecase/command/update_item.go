package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// UpdateItemCommand changes descriptive attributes of an item. Quantity and
// location only change through movements. Nil fields are left untouched.
type UpdateItemCommand struct {
	ID        string
	Name      *string
	Threshold *int64
	UnitPrice *decimal.Decimal
	ActorID   string
}

// UpdateItemHandler handles update item command
type UpdateItemHandler struct {
	runner *TxRunner
	clock  domain.Clock
}

// NewUpdateItemHandler creates a new update item handler
func NewUpdateItemHandler(runner *TxRunner, clock domain.Clock) *UpdateItemHandler {
	return &UpdateItemHandler{runner: runner, clock: clock}
}

// Handle executes the update item command
func (h *UpdateItemHandler) Handle(ctx context.Context, cmd UpdateItemCommand) (*domain.InventoryItem, error) {
	if cmd.ID == "" {
		return nil, domain.NewValidationError("update item", "id is required")
	}

	var updated domain.InventoryItem
	err := h.runner.Run(ctx, "update item", func(ctx context.Context, tx domain.StoreTx) error {
		item, err := tx.GetItem(ctx, cmd.ID)
		if err != nil {
			return err
		}

		if cmd.Name != nil {
			item.Name = *cmd.Name
		}
		if cmd.Threshold != nil {
			item.Threshold = *cmd.Threshold
		}
		if cmd.UnitPrice != nil {
			item.UnitPrice = *cmd.UnitPrice
		}
		if err := item.Validate(); err != nil {
			return err
		}
		stamp(item, h.clock.Now(), cmd.ActorID)

		if err := tx.SaveItem(ctx, item); err != nil {
			return err
		}
		updated = *item
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	return &updated, nil
}
