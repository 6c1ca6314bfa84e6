package domain

import "time"

// MovementType is the kind of stock event
type MovementType string

const (
	MovementStockIn   MovementType = "STOCK_IN"
	MovementStockSold MovementType = "STOCK_SOLD"
	MovementTransfer  MovementType = "TRANSFER"
)

// ParseMovementType converts a type literal, rejecting unknown values
func ParseMovementType(s string) (MovementType, error) {
	switch t := MovementType(s); t {
	case MovementStockIn, MovementStockSold, MovementTransfer:
		return t, nil
	}
	return "", &Error{Kind: ErrInvalidMovementType, Op: "parse movement type", Message: "unknown movement type " + s}
}

// MovementStatus tracks whether a movement has taken effect
type MovementStatus string

const (
	StatusPending   MovementStatus = "PENDING"
	StatusCompleted MovementStatus = "COMPLETED"
)

// Valid reports whether s is a known status
func (s MovementStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// MovementRecord is one entry of the movement ledger
type MovementRecord struct {
	ID             string         `json:"id" gorm:"primaryKey;type:varchar(36);index:idx_movements_order,priority:2,sort:desc"`
	ItemID         string         `json:"item_id" gorm:"type:varchar(36);not null;index"`
	Type           MovementType   `json:"type" gorm:"type:varchar(16);not null"`
	Quantity       int64          `json:"quantity" gorm:"not null"`
	SourceLocation Location       `json:"source_location" gorm:"type:varchar(8)"`
	DestLocation   Location       `json:"dest_location,omitempty" gorm:"type:varchar(8)"`
	Notes          string         `json:"notes"`
	ActorID        string         `json:"actor_id"`
	Status         MovementStatus `json:"status" gorm:"type:varchar(16);not null;default:'COMPLETED'"`
	Timestamp      time.Time      `json:"timestamp" gorm:"not null;index:idx_movements_order,priority:1,sort:desc"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName specifies the table name
func (MovementRecord) TableName() string {
	return "movements"
}

// Completed reports whether the movement affects the store
func (m *MovementRecord) Completed() bool {
	return m.Status == StatusCompleted
}

// MovementFields are the caller-supplied fields of a movement
type MovementFields struct {
	Type           MovementType
	Quantity       int64
	SourceLocation Location
	DestLocation   Location
	Notes          string
	ActorID        string
}

// Validate checks the required fields and ranges of a movement
func (f MovementFields) Validate() error {
	if _, err := ParseMovementType(string(f.Type)); err != nil {
		return err
	}
	if f.Quantity <= 0 {
		return NewValidationError("validate movement", "quantity must be positive")
	}
	if f.SourceLocation != "" && !f.SourceLocation.Valid() {
		return NewValidationError("validate movement", "source_location must be FRONT or BACK")
	}
	if f.Type == MovementTransfer {
		if !f.SourceLocation.Valid() || !f.DestLocation.Valid() {
			return NewValidationError("validate movement", "transfer requires source_location and dest_location")
		}
		if f.SourceLocation == f.DestLocation {
			return NewValidationError("validate movement", "dest_location must differ from source_location")
		}
	} else if f.DestLocation != "" {
		return NewValidationError("validate movement", "dest_location is only allowed for TRANSFER")
	}
	return nil
}

// Fields returns the caller-supplied fields of a committed record
func (m *MovementRecord) Fields() MovementFields {
	return MovementFields{
		Type:           m.Type,
		Quantity:       m.Quantity,
		SourceLocation: m.SourceLocation,
		DestLocation:   m.DestLocation,
		Notes:          m.Notes,
		ActorID:        m.ActorID,
	}
}

// Apply overwrites the record's mutable fields
func (m *MovementRecord) Apply(f MovementFields) {
	m.Type = f.Type
	m.Quantity = f.Quantity
	m.SourceLocation = f.SourceLocation
	m.DestLocation = f.DestLocation
	m.Notes = f.Notes
	m.ActorID = f.ActorID
}
