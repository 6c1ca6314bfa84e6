package monitor

import (
	"context"
	"errors"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

// LogSink writes each batch to the service log
type LogSink struct{}

func (LogSink) Notify(ctx context.Context, n domain.LowStockNotification) error {
	for _, entry := range n.Items {
		logger.Warn(ctx).
			Str("notification_id", n.ID).
			Str("item_id", entry.ItemID).
			Str("name", entry.Name).
			Int64("quantity", entry.Quantity).
			Int64("threshold", entry.Threshold).
			Str("location", string(entry.Location)).
			Msg("Item is low on stock")
	}
	return nil
}

// MultiSink delivers to every sink, even when an earlier one fails
type MultiSink []domain.NotificationSink

func (m MultiSink) Notify(ctx context.Context, n domain.LowStockNotification) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
