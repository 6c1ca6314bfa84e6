package command

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

// UpdateMovementCommand rewrites a committed movement. The target item cannot change.
type UpdateMovementCommand struct {
	MovementID     string
	Type           string
	Quantity       int64
	SourceLocation string
	DestLocation   string
	Notes          string
	ActorID        string
}

// UpdateMovementHandler reverses a movement's old effect and applies the new one in one commit
type UpdateMovementHandler struct {
	runner    *TxRunner
	clock     domain.Clock
	publisher MovementPublisher
}

// NewUpdateMovementHandler creates a new update movement handler
func NewUpdateMovementHandler(runner *TxRunner, clock domain.Clock, publisher MovementPublisher) *UpdateMovementHandler {
	return &UpdateMovementHandler{runner: runner, clock: clock, publisher: publisher}
}

// Handle executes the update movement command
func (h *UpdateMovementHandler) Handle(ctx context.Context, cmd UpdateMovementCommand) (_ *domain.MovementRecord, err error) {
	ctx, span := tracer.Start(ctx, "command.UpdateMovement",
		trace.WithAttributes(
			attribute.String("movement.id", cmd.MovementID),
			attribute.String("movement.type", cmd.Type),
		),
	)
	defer func() {
		movementsTotal.WithLabelValues("update", typeLabel(cmd.Type), outcome(err)).Inc()
		endSpan(span, err)
	}()

	if cmd.MovementID == "" {
		return nil, domain.NewValidationError("update movement", "movement id is required")
	}
	typ, err := domain.ParseMovementType(cmd.Type)
	if err != nil {
		return nil, err
	}
	fields := domain.MovementFields{
		Type:           typ,
		Quantity:       cmd.Quantity,
		SourceLocation: domain.Location(cmd.SourceLocation),
		DestLocation:   domain.Location(cmd.DestLocation),
		Notes:          cmd.Notes,
		ActorID:        cmd.ActorID,
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	var record domain.MovementRecord
	err = h.runner.Run(ctx, "update movement", func(ctx context.Context, tx domain.StoreTx) error {
		m, err := tx.GetMovement(ctx, cmd.MovementID)
		if err != nil {
			return err
		}
		item, err := tx.GetItem(ctx, m.ItemID)
		if err != nil {
			return err
		}

		oldEffect := domain.EffectOf(m)

		f := fields
		if f.ActorID == "" {
			f.ActorID = m.ActorID
		}
		if f.SourceLocation == "" {
			// where the item sits once the old effect is undone
			reverted := *item
			if err := oldEffect.Reverse().ApplyTo("update movement", &reverted); err != nil {
				return err
			}
			f.SourceLocation = reverted.Location
		}
		m.Apply(f)

		if err := applyEffects("update movement", item, oldEffect.Reverse(), domain.EffectOf(m)); err != nil {
			return err
		}

		now := h.clock.Now()
		stamp(item, now, f.ActorID)
		m.UpdatedAt = now

		if err := tx.SaveItem(ctx, item); err != nil {
			return err
		}
		if err := tx.UpdateMovement(ctx, m); err != nil {
			return err
		}
		record = *m
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update movement: %w", err)
	}

	logger.Info(ctx).
		Str("movement_id", record.ID).
		Str("item_id", record.ItemID).
		Str("type", string(record.Type)).
		Int64("quantity", record.Quantity).
		Msg("Movement updated")

	publishMovement(ctx, h.publisher, EventMovementUpdated, record)
	return &record, nil
}
