package domain

import (
	"context"
	"time"
)

// InventoryRepository defines the contract for item data access outside transactions
type InventoryRepository interface {
	Create(ctx context.Context, item *InventoryItem) error
	FindByID(ctx context.Context, id string) (*InventoryItem, error)
	// FindAll lists items ordered by name; an empty location lists every item.
	FindAll(ctx context.Context, location Location) ([]InventoryItem, error)
	FindLowStock(ctx context.Context) ([]InventoryItem, error)
	Delete(ctx context.Context, id string) error
}

// MovementFilter selects ledger records in ledger order
type MovementFilter struct {
	After  *Cursor
	ItemID string
	Start  time.Time
	End    time.Time
	// Limit of zero means no limit
	Limit int
}

// MovementRepository defines the read side of the movement ledger
type MovementRepository interface {
	FindByID(ctx context.Context, id string) (*MovementRecord, error)
	List(ctx context.Context, filter MovementFilter) ([]MovementRecord, error)
}

// StoreTx is the view of the store inside one atomic transaction.
// SaveItem compares item.Version against the stored version and fails with
// ErrConcurrencyConflict when another writer committed first.
type StoreTx interface {
	GetItem(ctx context.Context, id string) (*InventoryItem, error)
	SaveItem(ctx context.Context, item *InventoryItem) error
	GetMovement(ctx context.Context, id string) (*MovementRecord, error)
	InsertMovement(ctx context.Context, m *MovementRecord) error
	UpdateMovement(ctx context.Context, m *MovementRecord) error
	DeleteMovement(ctx context.Context, id string) error
}

// Transactor runs fn atomically. Either every write fn made lands or none does.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx StoreTx) error) error
}

// ChangeWatcher streams committed changes until ctx is done
type ChangeWatcher interface {
	Watch(ctx context.Context) (<-chan Change, error)
}

// NotificationSink receives low-stock batches
type NotificationSink interface {
	Notify(ctx context.Context, n LowStockNotification) error
}

// Clock is the timestamp source for commits
type Clock interface {
	Now() time.Time
}
