package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// GormMovementRepository reads the movement ledger from PostgreSQL
type GormMovementRepository struct {
	db *gorm.DB
}

func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

func (r *GormMovementRepository) FindByID(ctx context.Context, id string) (*domain.MovementRecord, error) {
	var m domain.MovementRecord
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("find movement", "movement", id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns records in ledger order, strictly after filter.After when set
func (r *GormMovementRepository) List(ctx context.Context, filter domain.MovementFilter) ([]domain.MovementRecord, error) {
	q := r.db.WithContext(ctx).Order("timestamp DESC, id DESC")

	if filter.After != nil {
		q = q.Where("(timestamp, id) < (?, ?)", filter.After.Timestamp, filter.After.ID)
	}
	if filter.ItemID != "" {
		q = q.Where("item_id = ?", filter.ItemID)
	}
	if !filter.Start.IsZero() {
		q = q.Where("timestamp >= ?", filter.Start)
	}
	if !filter.End.IsZero() {
		q = q.Where("timestamp <= ?", filter.End)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var records []domain.MovementRecord
	err := q.Find(&records).Error
	return records, err
}
