package command

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

// CompleteMovementCommand moves a PENDING movement to COMPLETED
type CompleteMovementCommand struct {
	MovementID string
	ActorID    string
}

// CompleteMovementHandler applies a pending movement's effect together with its status change
type CompleteMovementHandler struct {
	runner    *TxRunner
	clock     domain.Clock
	publisher MovementPublisher
}

// NewCompleteMovementHandler creates a new complete movement handler
func NewCompleteMovementHandler(runner *TxRunner, clock domain.Clock, publisher MovementPublisher) *CompleteMovementHandler {
	return &CompleteMovementHandler{runner: runner, clock: clock, publisher: publisher}
}

// Handle executes the complete movement command. Completing an already
// completed movement is a no-op.
func (h *CompleteMovementHandler) Handle(ctx context.Context, cmd CompleteMovementCommand) (_ *domain.MovementRecord, err error) {
	ctx, span := tracer.Start(ctx, "command.CompleteMovement",
		trace.WithAttributes(attribute.String("movement.id", cmd.MovementID)),
	)
	var record domain.MovementRecord
	defer func() {
		movementsTotal.WithLabelValues("complete", typeLabel(string(record.Type)), outcome(err)).Inc()
		endSpan(span, err)
	}()

	if cmd.MovementID == "" {
		return nil, domain.NewValidationError("complete movement", "movement id is required")
	}

	changed := false
	err = h.runner.Run(ctx, "complete movement", func(ctx context.Context, tx domain.StoreTx) error {
		m, err := tx.GetMovement(ctx, cmd.MovementID)
		if err != nil {
			return err
		}
		if m.Completed() {
			record, changed = *m, false
			return nil
		}
		item, err := tx.GetItem(ctx, m.ItemID)
		if err != nil {
			return err
		}

		m.Status = domain.StatusCompleted
		if err := applyEffects("complete movement", item, domain.EffectOf(m)); err != nil {
			return err
		}

		now := h.clock.Now()
		stamp(item, now, cmd.ActorID)
		m.UpdatedAt = now

		if err := tx.SaveItem(ctx, item); err != nil {
			return err
		}
		if err := tx.UpdateMovement(ctx, m); err != nil {
			return err
		}
		record, changed = *m, true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete movement: %w", err)
	}

	if changed {
		logger.Info(ctx).
			Str("movement_id", record.ID).
			Str("item_id", record.ItemID).
			Msg("Movement completed")
		publishMovement(ctx, h.publisher, EventMovementCompleted, record)
	}
	return &record, nil
}
