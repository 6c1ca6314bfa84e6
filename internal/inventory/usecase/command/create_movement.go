package command

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

// CreateMovementCommand represents the command to record a stock movement
type CreateMovementCommand struct {
	ItemID         string
	Type           string
	Quantity       int64
	SourceLocation string
	DestLocation   string
	Notes          string
	ActorID        string
	// Status defaults to COMPLETED; PENDING records without touching the item
	Status string
}

func (c CreateMovementCommand) fields() (domain.MovementFields, domain.MovementStatus, error) {
	typ, err := domain.ParseMovementType(c.Type)
	if err != nil {
		return domain.MovementFields{}, "", err
	}
	if c.ItemID == "" {
		return domain.MovementFields{}, "", domain.NewValidationError("create movement", "item_id is required")
	}

	status := domain.StatusCompleted
	if c.Status != "" {
		status = domain.MovementStatus(c.Status)
		if !status.Valid() {
			return domain.MovementFields{}, "", domain.NewValidationError("create movement", "status must be PENDING or COMPLETED")
		}
	}

	f := domain.MovementFields{
		Type:           typ,
		Quantity:       c.Quantity,
		SourceLocation: domain.Location(c.SourceLocation),
		DestLocation:   domain.Location(c.DestLocation),
		Notes:          c.Notes,
		ActorID:        c.ActorID,
	}
	return f, status, f.Validate()
}

// CreateMovementHandler applies a movement to its item and appends it to the ledger
type CreateMovementHandler struct {
	runner    *TxRunner
	clock     domain.Clock
	publisher MovementPublisher
}

// NewCreateMovementHandler creates a new create movement handler. publisher may be nil.
func NewCreateMovementHandler(runner *TxRunner, clock domain.Clock, publisher MovementPublisher) *CreateMovementHandler {
	return &CreateMovementHandler{runner: runner, clock: clock, publisher: publisher}
}

// Handle executes the create movement command
func (h *CreateMovementHandler) Handle(ctx context.Context, cmd CreateMovementCommand) (_ *domain.MovementRecord, err error) {
	ctx, span := tracer.Start(ctx, "command.CreateMovement",
		trace.WithAttributes(
			attribute.String("inventory.id", cmd.ItemID),
			attribute.String("movement.type", cmd.Type),
			attribute.Int64("movement.quantity", cmd.Quantity),
		),
	)
	defer func() {
		movementsTotal.WithLabelValues("create", typeLabel(cmd.Type), outcome(err)).Inc()
		endSpan(span, err)
	}()

	fields, status, err := cmd.fields()
	if err != nil {
		return nil, err
	}

	var record domain.MovementRecord
	err = h.runner.Run(ctx, "create movement", func(ctx context.Context, tx domain.StoreTx) error {
		item, err := tx.GetItem(ctx, cmd.ItemID)
		if err != nil {
			return err
		}

		f := fields
		if f.SourceLocation == "" {
			f.SourceLocation = item.Location
		}

		now := h.clock.Now()
		m := domain.MovementRecord{
			ID:        newMovementID(),
			ItemID:    item.ID,
			Status:    status,
			Timestamp: now,
			UpdatedAt: now,
		}
		m.Apply(f)

		if err := applyEffects("create movement", item, domain.EffectOf(&m)); err != nil {
			return err
		}
		stamp(item, now, cmd.ActorID)

		if err := tx.SaveItem(ctx, item); err != nil {
			return err
		}
		if err := tx.InsertMovement(ctx, &m); err != nil {
			return err
		}
		record = m
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create movement: %w", err)
	}

	span.SetAttributes(attribute.String("movement.id", record.ID))
	logger.Info(ctx).
		Str("movement_id", record.ID).
		Str("item_id", record.ItemID).
		Str("type", string(record.Type)).
		Int64("quantity", record.Quantity).
		Str("status", string(record.Status)).
		Msg("Movement recorded")

	publishMovement(ctx, h.publisher, EventMovementRecorded, record)
	return &record, nil
}
