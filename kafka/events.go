package kafka

import (
	"time"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// ProductPurchasedEvent is emitted by the storefront when an order is paid.
// Each one becomes a STOCK_SOLD movement.
type ProductPurchasedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	OrderID   string    `json:"order_id"`
	ItemID    string    `json:"item_id"`
	Quantity  int64     `json:"quantity"`
	BuyerID   string    `json:"buyer_id"`
	Timestamp time.Time `json:"timestamp"`
}

// MovementEvent announces a committed movement
type MovementEvent struct {
	EventID   string                `json:"event_id"`
	EventType string                `json:"event_type"`
	Movement  domain.MovementRecord `json:"movement"`
	Timestamp time.Time             `json:"timestamp"`
}

// LowStockEvent carries one low-stock batch
type LowStockEvent struct {
	EventID      string                      `json:"event_id"`
	EventType    string                      `json:"event_type"`
	Notification domain.LowStockNotification `json:"notification"`
	Timestamp    time.Time                   `json:"timestamp"`
}

// Event types
const (
	EventTypeProductPurchased = "product.purchased"
	EventTypeLowStock         = "stock.low"
	EventTypeChange           = "stock.changed"
)

// Kafka topics
const (
	TopicProductPurchased = "product-purchased"
	TopicMovements        = "stock-movements"
	TopicLowStock         = "stock-low"
	TopicChanges          = "stock-changes"
)
