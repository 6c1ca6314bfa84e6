package command

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

// DeleteMovementCommand removes a movement and undoes its effect
type DeleteMovementCommand struct {
	MovementID string
	ActorID    string
}

// DeleteMovementHandler handles delete movement command
type DeleteMovementHandler struct {
	runner    *TxRunner
	clock     domain.Clock
	publisher MovementPublisher
}

// NewDeleteMovementHandler creates a new delete movement handler
func NewDeleteMovementHandler(runner *TxRunner, clock domain.Clock, publisher MovementPublisher) *DeleteMovementHandler {
	return &DeleteMovementHandler{runner: runner, clock: clock, publisher: publisher}
}

// Handle executes the delete movement command
func (h *DeleteMovementHandler) Handle(ctx context.Context, cmd DeleteMovementCommand) (err error) {
	ctx, span := tracer.Start(ctx, "command.DeleteMovement",
		trace.WithAttributes(attribute.String("movement.id", cmd.MovementID)),
	)
	var removed domain.MovementRecord
	defer func() {
		movementsTotal.WithLabelValues("delete", typeLabel(string(removed.Type)), outcome(err)).Inc()
		endSpan(span, err)
	}()

	if cmd.MovementID == "" {
		return domain.NewValidationError("delete movement", "movement id is required")
	}

	err = h.runner.Run(ctx, "delete movement", func(ctx context.Context, tx domain.StoreTx) error {
		m, err := tx.GetMovement(ctx, cmd.MovementID)
		if err != nil {
			return err
		}
		item, err := tx.GetItem(ctx, m.ItemID)
		if err != nil {
			return err
		}

		if err := applyEffects("delete movement", item, domain.EffectOf(m).Reverse()); err != nil {
			return err
		}
		stamp(item, h.clock.Now(), cmd.ActorID)

		if err := tx.SaveItem(ctx, item); err != nil {
			return err
		}
		if err := tx.DeleteMovement(ctx, m.ID); err != nil {
			return err
		}
		removed = *m
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete movement: %w", err)
	}

	logger.Info(ctx).
		Str("movement_id", removed.ID).
		Str("item_id", removed.ItemID).
		Str("type", string(removed.Type)).
		Msg("Movement deleted")

	publishMovement(ctx, h.publisher, EventMovementDeleted, removed)
	return nil
}
