package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// NotificationTypeLowStock marks low-stock batches
const NotificationTypeLowStock = "low_stock"

// LowStockEntry is one item listed in a low-stock batch
type LowStockEntry struct {
	ItemID    string   `json:"id"`
	Name      string   `json:"name"`
	Quantity  int64    `json:"quantity"`
	Threshold int64    `json:"threshold"`
	Location  Location `json:"location"`
}

// NewLowStockEntry snapshots item
func NewLowStockEntry(item InventoryItem) LowStockEntry {
	return LowStockEntry{
		ItemID:    item.ID,
		Name:      item.Name,
		Quantity:  item.Quantity,
		Threshold: item.Threshold,
		Location:  item.Location,
	}
}

// LowStockEntries is stored as a JSON column
type LowStockEntries []LowStockEntry

// Value implements driver.Valuer
func (e LowStockEntries) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan implements sql.Scanner
func (e *LowStockEntries) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*e = nil
		return nil
	default:
		return errors.New("unsupported type for low stock entries")
	}
	return json.Unmarshal(raw, e)
}

// LowStockNotification is one batch raised by the monitor
type LowStockNotification struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Type      string          `json:"type" gorm:"type:varchar(32);not null;index"`
	Items     LowStockEntries `json:"items" gorm:"type:jsonb"`
	Timestamp time.Time       `json:"timestamp" gorm:"not null;index"`
	Read      bool            `json:"read" gorm:"not null;default:false"`
}

// TableName specifies the table name
func (LowStockNotification) TableName() string {
	return "notifications"
}
