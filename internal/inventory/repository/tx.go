package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// ChangeChannel is the LISTEN/NOTIFY channel committed changes are published on
const ChangeChannel = "inventory_changes"

// serialization_failure and deadlock_detected
var conflictCodes = map[string]bool{"40001": true, "40P01": true}

// GormTransactor runs coordinator transactions on PostgreSQL
type GormTransactor struct {
	db    *gorm.DB
	clock domain.Clock
}

func NewGormTransactor(db *gorm.DB, clock domain.Clock) *GormTransactor {
	return &GormTransactor{db: db, clock: clock}
}

// WithinTx runs fn in one database transaction. Notifications queued by the
// writes are delivered by PostgreSQL only once the transaction commits.
func (t *GormTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.StoreTx) error) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormStoreTx{db: tx, clock: t.clock})
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && conflictCodes[pgErr.Code] {
		return &domain.Error{Kind: domain.ErrConcurrencyConflict, Op: "commit", Err: err}
	}
	return err
}

type gormStoreTx struct {
	db    *gorm.DB
	clock domain.Clock
}

func (s *gormStoreTx) GetItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("get item", "item", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read item: %w", err)
	}
	return &item, nil
}

// SaveItem writes item only if nobody bumped its version since it was read
func (s *gormStoreTx) SaveItem(ctx context.Context, item *domain.InventoryItem) error {
	res := s.db.WithContext(ctx).
		Model(&domain.InventoryItem{}).
		Where("id = ? AND version = ?", item.ID, item.Version).
		Updates(map[string]interface{}{
			"name":         item.Name,
			"quantity":     item.Quantity,
			"location":     item.Location,
			"threshold":    item.Threshold,
			"unit_price":   item.UnitPrice,
			"last_updated": item.LastUpdated,
			"updated_by":   item.UpdatedBy,
			"version":      gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to save item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewConflictError("save item", item.ID)
	}
	item.Version++

	return notifyChange(s.db, domain.Change{
		Kind:    domain.ChangeItem,
		Op:      domain.OpUpsert,
		ItemID:  item.ID,
		Version: item.Version,
		At:      item.LastUpdated,
	})
}

// GetMovement locks the row until the transaction ends, so the effect being
// reversed is the one still stored at commit
func (s *gormStoreTx) GetMovement(ctx context.Context, id string) (*domain.MovementRecord, error) {
	var m domain.MovementRecord
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("get movement", "movement", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read movement: %w", err)
	}
	return &m, nil
}

func (s *gormStoreTx) InsertMovement(ctx context.Context, m *domain.MovementRecord) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}
	return s.movementChanged(m.ItemID, m.ID, domain.OpUpsert)
}

func (s *gormStoreTx) UpdateMovement(ctx context.Context, m *domain.MovementRecord) error {
	res := s.db.WithContext(ctx).Model(m).Select("*").Omit("id").Updates(m)
	if res.Error != nil {
		return fmt.Errorf("failed to update movement: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("update movement", "movement", m.ID)
	}
	return s.movementChanged(m.ItemID, m.ID, domain.OpUpsert)
}

func (s *gormStoreTx) DeleteMovement(ctx context.Context, id string) error {
	var m domain.MovementRecord
	res := s.db.WithContext(ctx).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "item_id"}}}).
		Where("id = ?", id).
		Delete(&m)
	if res.Error != nil {
		return fmt.Errorf("failed to delete movement: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("delete movement", "movement", id)
	}
	return s.movementChanged(m.ItemID, id, domain.OpDelete)
}

func (s *gormStoreTx) movementChanged(itemID, movementID string, op domain.ChangeOp) error {
	return notifyChange(s.db, domain.Change{
		Kind:       domain.ChangeMovement,
		Op:         op,
		ItemID:     itemID,
		MovementID: movementID,
		At:         s.clock.Now(),
	})
}

// notifyChange queues c on ChangeChannel inside the current transaction
func notifyChange(db *gorm.DB, c domain.Change) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}
	if err := db.Exec("SELECT pg_notify(?, ?)", ChangeChannel, string(payload)).Error; err != nil {
		return fmt.Errorf("failed to notify change: %w", err)
	}
	return nil
}
