package kafka

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/usecase/command"
)

// PurchaseActor is recorded as the actor of movements created from orders
const PurchaseActor = "kafka:" + TopicProductPurchased

// MovementRecorder creates movements
type MovementRecorder interface {
	Handle(ctx context.Context, cmd command.CreateMovementCommand) (*domain.MovementRecord, error)
}

// NewPurchaseHandler turns each purchase into a STOCK_SOLD movement. A
// redelivered event records a second movement.
func NewPurchaseHandler(recorder MovementRecorder) EventHandler {
	return func(ctx context.Context, event ProductPurchasedEvent) error {
		if event.ItemID == "" || event.Quantity <= 0 {
			return domain.NewValidationError("handle purchase", "item_id and a positive quantity are required")
		}

		notes := fmt.Sprintf("order %s (event %s)", event.OrderID, event.EventID)
		_, err := recorder.Handle(ctx, command.CreateMovementCommand{
			ItemID:   event.ItemID,
			Type:     string(domain.MovementStockSold),
			Quantity: event.Quantity,
			Notes:    notes,
			ActorID:  PurchaseActor,
		})
		if err != nil {
			return fmt.Errorf("failed to record sale for event %s: %w", event.EventID, err)
		}
		return nil
	}
}
