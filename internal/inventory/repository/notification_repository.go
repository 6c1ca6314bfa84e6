package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// GormNotificationRepository persists low-stock batches to the notifications table
type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Notify implements domain.NotificationSink
func (r *GormNotificationRepository) Notify(ctx context.Context, n domain.LowStockNotification) error {
	if err := r.db.WithContext(ctx).Create(&n).Error; err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

// FindUnread lists unread notifications, newest first
func (r *GormNotificationRepository) FindUnread(ctx context.Context, limit int) ([]domain.LowStockNotification, error) {
	var out []domain.LowStockNotification
	err := r.db.WithContext(ctx).
		Where("read = ?", false).
		Order("timestamp DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// MarkRead flags a notification as read
func (r *GormNotificationRepository) MarkRead(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.LowStockNotification{}).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("mark notification read", "notification", id)
	}
	return nil
}
