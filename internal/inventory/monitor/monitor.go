package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

var tracer = otel.Tracer("low-stock-monitor")

// Config holds monitor configuration
type Config struct {
	Interval    time.Duration // time between scheduled scans
	DedupWindow time.Duration // how long an announced item stays quiet; 0 announces every scan
}

// DefaultConfig matches the daily schedule of the stock report
func DefaultConfig() Config {
	return Config{
		Interval:    24 * time.Hour,
		DedupWindow: 24 * time.Hour,
	}
}

// Monitor scans the store for items at or under their threshold and sends
// one batch per scan to the sink
type Monitor struct {
	items domain.InventoryRepository
	sink  domain.NotificationSink
	dedup Deduper
	clock domain.Clock
	cfg   Config
}

// New creates a monitor. A nil dedup announces every low item on every scan.
func New(items domain.InventoryRepository, sink domain.NotificationSink, dedup Deduper, clock domain.Clock, cfg Config) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if dedup == nil || cfg.DedupWindow <= 0 {
		dedup = NoDedup{}
	}
	return &Monitor{items: items, sink: sink, dedup: dedup, clock: clock, cfg: cfg}
}

// Run scans every Interval until ctx is cancelled
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	logger.Logger.Info().
		Dur("interval", m.cfg.Interval).
		Dur("dedup_window", m.cfg.DedupWindow).
		Msg("Low stock monitor started")

	for {
		select {
		case <-ctx.Done():
			logger.Logger.Info().Msg("Low stock monitor stopped")
			return nil
		case <-ticker.C:
			if _, err := m.Scan(ctx); err != nil {
				logger.Error(ctx).Err(err).Msg("Low stock scan failed")
			}
		}
	}
}

// Scan checks every item once. It returns the batch that was sent, or nil
// when nothing new is low.
func (m *Monitor) Scan(ctx context.Context) (*domain.LowStockNotification, error) {
	ctx, span := tracer.Start(ctx, "monitor.Scan")
	defer span.End()

	items, err := m.items.FindAll(ctx, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		scansTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	var low []domain.InventoryItem
	var recovered []string
	for _, item := range items {
		if item.IsLowStock() {
			low = append(low, item)
		} else {
			recovered = append(recovered, item.ID)
		}
	}
	lowStockItems.Set(float64(len(low)))

	if len(recovered) > 0 {
		if err := m.dedup.Clear(ctx, recovered...); err != nil {
			logger.Warn(ctx).Err(err).Msg("Failed to clear low stock marks")
		}
	}

	var fresh []domain.InventoryItem
	for _, item := range low {
		first, err := m.dedup.Mark(ctx, item.ID)
		if err != nil {
			// announce rather than stay silent when the dedup store is down
			logger.Warn(ctx).Err(err).Str("item_id", item.ID).Msg("Low stock dedup unavailable")
			first = true
		}
		if first {
			fresh = append(fresh, item)
		}
	}

	span.SetAttributes(
		attribute.Int("low_stock.items", len(low)),
		attribute.Int("low_stock.new", len(fresh)),
	)

	if len(fresh) == 0 {
		scansTotal.WithLabelValues("quiet").Inc()
		return nil, nil
	}

	n := domain.LowStockNotification{
		ID:        uuid.NewString(),
		Type:      domain.NotificationTypeLowStock,
		Timestamp: m.clock.Now(),
	}
	ids := make([]string, 0, len(fresh))
	for _, item := range fresh {
		n.Items = append(n.Items, domain.NewLowStockEntry(item))
		ids = append(ids, item.ID)
	}

	if err := m.sink.Notify(ctx, n); err != nil {
		// let the next scan try again
		if cerr := m.dedup.Clear(ctx, ids...); cerr != nil {
			logger.Warn(ctx).Err(cerr).Msg("Failed to release low stock marks")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		scansTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to deliver low stock notification: %w", err)
	}

	scansTotal.WithLabelValues("notified").Inc()
	logger.Info(ctx).
		Str("notification_id", n.ID).
		Strs("item_ids", ids).
		Msg("Low stock notification sent")

	return &n, nil
}
