package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// GormInventoryRepository stores items in PostgreSQL
type GormInventoryRepository struct {
	db    *gorm.DB
	clock domain.Clock
}

func NewGormInventoryRepository(db *gorm.DB, clock domain.Clock) *GormInventoryRepository {
	return &GormInventoryRepository{db: db, clock: clock}
}

// AutoMigrate creates or updates every table of the ledger
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.InventoryItem{},
		&domain.MovementRecord{},
		&domain.LowStockNotification{},
	)
}

func (r *GormInventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	now := r.clock.Now()
	item.Version = 1
	item.CreatedAt = now
	item.LastUpdated = now

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.NewValidationError("create item", "item "+item.ID+" already exists")
			}
			return err
		}
		return notifyChange(tx, domain.Change{
			Kind:    domain.ChangeItem,
			Op:      domain.OpUpsert,
			ItemID:  item.ID,
			Version: item.Version,
			At:      now,
		})
	})
}

func (r *GormInventoryRepository) FindByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("find item", "item", id)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormInventoryRepository) FindAll(ctx context.Context, location domain.Location) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	q := r.db.WithContext(ctx).Order("name ASC, id ASC")
	if location != "" {
		q = q.Where("location = ?", location)
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *GormInventoryRepository) FindLowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	err := r.db.WithContext(ctx).
		Where("quantity <= threshold").
		Order("quantity ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *GormInventoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.InventoryItem{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete item: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NewNotFoundError("delete item", "item", id)
		}
		return notifyChange(tx, domain.Change{
			Kind:   domain.ChangeItem,
			Op:     domain.OpDelete,
			ItemID: id,
			At:     r.clock.Now(),
		})
	})
}
