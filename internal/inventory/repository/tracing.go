package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// InventoryRepositoryWithTracing wraps an InventoryRepository with spans
type InventoryRepositoryWithTracing struct {
	next domain.InventoryRepository
}

func NewInventoryRepositoryWithTracing(next domain.InventoryRepository) *InventoryRepositoryWithTracing {
	return &InventoryRepositoryWithTracing{next: next}
}

func (r *InventoryRepositoryWithTracing) Create(ctx context.Context, item *domain.InventoryItem) error {
	ctx, span := tracer.Start(ctx, "repository.CreateItem",
		trace.WithAttributes(
			attribute.String("inventory.id", item.ID),
			attribute.Int64("inventory.quantity", item.Quantity),
			attribute.String("inventory.location", string(item.Location)),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, item)
	recordError(span, err)
	return err
}

func (r *InventoryRepositoryWithTracing) FindByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	ctx, span := tracer.Start(ctx, "repository.FindItemByID",
		trace.WithAttributes(attribute.String("inventory.id", id)),
	)
	defer span.End()

	item, err := r.next.FindByID(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("inventory.quantity", item.Quantity),
		attribute.Int64("inventory.version", item.Version),
	)
	return item, nil
}

func (r *InventoryRepositoryWithTracing) FindAll(ctx context.Context, location domain.Location) ([]domain.InventoryItem, error) {
	ctx, span := tracer.Start(ctx, "repository.FindAllItems",
		trace.WithAttributes(attribute.String("query.location", string(location))),
	)
	defer span.End()

	items, err := r.next.FindAll(ctx, location)
	recordError(span, err)
	span.SetAttributes(attribute.Int("result.count", len(items)))
	return items, err
}

func (r *InventoryRepositoryWithTracing) FindLowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	ctx, span := tracer.Start(ctx, "repository.FindLowStock")
	defer span.End()

	items, err := r.next.FindLowStock(ctx)
	recordError(span, err)
	span.SetAttributes(attribute.Int("result.count", len(items)))
	return items, err
}

func (r *InventoryRepositoryWithTracing) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "repository.DeleteItem",
		trace.WithAttributes(attribute.String("inventory.id", id)),
	)
	defer span.End()

	err := r.next.Delete(ctx, id)
	recordError(span, err)
	return err
}

// MovementRepositoryWithTracing wraps a MovementRepository with spans
type MovementRepositoryWithTracing struct {
	next domain.MovementRepository
}

func NewMovementRepositoryWithTracing(next domain.MovementRepository) *MovementRepositoryWithTracing {
	return &MovementRepositoryWithTracing{next: next}
}

func (r *MovementRepositoryWithTracing) FindByID(ctx context.Context, id string) (*domain.MovementRecord, error) {
	ctx, span := tracer.Start(ctx, "repository.FindMovementByID",
		trace.WithAttributes(attribute.String("movement.id", id)),
	)
	defer span.End()

	m, err := r.next.FindByID(ctx, id)
	recordError(span, err)
	return m, err
}

func (r *MovementRepositoryWithTracing) List(ctx context.Context, filter domain.MovementFilter) ([]domain.MovementRecord, error) {
	attrs := []attribute.KeyValue{
		attribute.Int("query.limit", filter.Limit),
		attribute.Bool("query.has_cursor", filter.After != nil),
	}
	if filter.ItemID != "" {
		attrs = append(attrs, attribute.String("query.item_id", filter.ItemID))
	}
	ctx, span := tracer.Start(ctx, "repository.ListMovements", trace.WithAttributes(attrs...))
	defer span.End()

	records, err := r.next.List(ctx, filter)
	recordError(span, err)
	span.SetAttributes(attribute.Int("result.count", len(records)))
	return records, err
}

// TransactorWithTracing wraps each coordinator transaction in a span
type TransactorWithTracing struct {
	next domain.Transactor
}

func NewTransactorWithTracing(next domain.Transactor) *TransactorWithTracing {
	return &TransactorWithTracing{next: next}
}

func (t *TransactorWithTracing) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.StoreTx) error) error {
	ctx, span := tracer.Start(ctx, "repository.Transaction")
	defer span.End()

	err := t.next.WithinTx(ctx, fn)
	if domain.Retryable(err) {
		span.SetAttributes(attribute.Bool("tx.conflict", true))
	}
	recordError(span, err)
	return err
}

func recordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
