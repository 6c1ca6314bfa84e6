package command

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

var tracer = otel.Tracer("inventory-command")

// Movement event names
const (
	EventMovementRecorded  = "movement.recorded"
	EventMovementUpdated   = "movement.updated"
	EventMovementDeleted   = "movement.deleted"
	EventMovementCompleted = "movement.completed"
)

// MovementPublisher announces committed movements
type MovementPublisher interface {
	PublishMovement(ctx context.Context, event string, m domain.MovementRecord) error
}

// publishMovement is best-effort: the movement is already committed
func publishMovement(ctx context.Context, p MovementPublisher, event string, m domain.MovementRecord) {
	if p == nil {
		return
	}
	if err := p.PublishMovement(ctx, event, m); err != nil {
		logger.Error(ctx).
			Err(err).
			Str("event", event).
			Str("movement_id", m.ID).
			Msg("Failed to publish movement event")
	}
}

// newMovementID returns a time-ordered id
func newMovementID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func stamp(item *domain.InventoryItem, now time.Time, actorID string) {
	item.LastUpdated = now
	if actorID != "" {
		item.UpdatedBy = actorID
	}
}

// applyEffects runs effects on a working copy of item and validates the
// final balance; item is only modified when every step succeeds.
func applyEffects(op string, item *domain.InventoryItem, effects ...domain.Effect) error {
	work := *item
	for _, e := range effects {
		if err := e.ApplyTo(op, &work); err != nil {
			return err
		}
	}
	if err := domain.CheckBalance(op, &work); err != nil {
		return err
	}
	*item = work
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func domainKind(err error) string {
	switch domain.KindOf(err) {
	case domain.ErrValidation:
		return "validation"
	case domain.ErrInsufficientStock:
		return "insufficient_stock"
	case domain.ErrNotFound:
		return "not_found"
	case domain.ErrInvalidMovementType:
		return "invalid_type"
	case domain.ErrCommitFailed:
		return "commit_failed"
	case domain.ErrConcurrencyConflict:
		return "conflict"
	}
	return ""
}

func typeLabel(t string) string {
	if typ, err := domain.ParseMovementType(t); err == nil {
		return string(typ)
	}
	return "unknown"
}
