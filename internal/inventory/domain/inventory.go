package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Location is the single place an item's balance is held
type Location string

const (
	LocationFront Location = "FRONT"
	LocationBack  Location = "BACK"
)

// Valid reports whether l is a known location
func (l Location) Valid() bool {
	return l == LocationFront || l == LocationBack
}

// InventoryItem represents the current balance of a stocked item
type InventoryItem struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string          `json:"name" gorm:"not null"`
	Quantity    int64           `json:"quantity" gorm:"not null;default:0"`
	Location    Location        `json:"location" gorm:"type:varchar(8);not null;index"`
	Threshold   int64           `json:"threshold" gorm:"not null;default:0"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null;default:0"`
	Version     int64           `json:"version" gorm:"not null;default:1"`
	LastUpdated time.Time       `json:"last_updated"`
	UpdatedBy   string          `json:"updated_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// IsLowStock reports whether the balance is at or under the threshold
func (i *InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.Threshold
}

// Validate checks the schema-level constraints of an item
func (i *InventoryItem) Validate() error {
	if i.Name == "" {
		return NewValidationError("validate item", "name is required")
	}
	if !i.Location.Valid() {
		return NewValidationError("validate item", "location must be FRONT or BACK")
	}
	if i.Quantity < 0 {
		return NewValidationError("validate item", "quantity cannot be negative")
	}
	if i.Threshold < 0 {
		return NewValidationError("validate item", "threshold cannot be negative")
	}
	if i.UnitPrice.IsNegative() {
		return NewValidationError("validate item", "unit_price cannot be negative")
	}
	return nil
}
